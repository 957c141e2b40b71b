package stream

import "context"

// Provider is the streaming service that owns live inputs and their recordings.
type Provider interface {
	CreateLiveInput(ctx context.Context, params LiveInputParams) (*LiveInput, error)
	ListRecordings(ctx context.Context, liveInputID string) ([]Recording, error)
	SetLiveInputEnabled(ctx context.Context, liveInputID string, enabled bool) error
	DeleteLiveInput(ctx context.Context, liveInputID string) error
	GetProviderName() string
}

// LiveInputParams describes the live input to create.
type LiveInputParams struct {
	Name          string
	AutoRecording bool
}

// LiveInput is a provisioned ingest endpoint. PublishURL and PlaybackURL are
// empty when the provider omitted them.
type LiveInput struct {
	UID         string
	PublishURL  string
	PlaybackURL string
	StreamKey   string
}

// Recording is a finished artifact of a live input.
type Recording struct {
	UID string
}

// ProviderError represents a failed call to a streaming provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

const (
	// ErrCodeUnavailable means the provider could not be reached.
	ErrCodeUnavailable = "unavailable"
	// ErrCodeRejected means the provider answered with an explicit error.
	ErrCodeRejected = "rejected"
	// ErrCodeInvalidResponse means the provider answered with something unreadable.
	ErrCodeInvalidResponse = "invalid_response"
)
