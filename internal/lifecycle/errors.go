package lifecycle

import "fmt"

// Kind classifies lifecycle failures.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindProviderUnavailable   Kind = "provider_unavailable"
	KindProviderRejected      Kind = "provider_rejected"
	KindProviderMisconfigured Kind = "provider_misconfigured"
	KindStoreFailure          Kind = "store_failure"
	KindInvalidTransition     Kind = "invalid_transition"
)

// Error is returned by every controller operation that fails. Message is
// safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrProviderUnavailable   = &Error{Kind: KindProviderUnavailable}
	ErrProviderRejected      = &Error{Kind: KindProviderRejected}
	ErrProviderMisconfigured = &Error{Kind: KindProviderMisconfigured}
	ErrStoreFailure          = &Error{Kind: KindStoreFailure}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition}
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
