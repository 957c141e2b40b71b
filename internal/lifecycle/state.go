package lifecycle

import "github.com/irah1999/cloud-flair/internal/models"

// NeedsProvisioning reports whether join must create a live input: the
// interview is pending, or it is ongoing but an earlier attempt never stored
// both stream URLs.
//
// The ongoing branch can create a second live input at the provider for the
// same interview, because live inputs are only tied to it by name. That is an
// accepted cost of recovering from a crash between the provider call and the
// store write.
func NeedsProvisioning(iv *models.Interview) bool {
	switch iv.Status {
	case models.StatusPending:
		return true
	case models.StatusOngoing:
		return !iv.HasStreamURLs()
	case models.StatusCompleted:
		return false
	default:
		return false
	}
}

// Begin is the transition applied when a live input is attached.
func Begin(s models.Status) (models.Status, error) {
	switch s {
	case models.StatusPending, models.StatusOngoing:
		return models.StatusOngoing, nil
	case models.StatusCompleted:
		return s, newError(KindInvalidTransition, "interview already completed", nil)
	default:
		return s, newError(KindInvalidTransition, "unknown interview status "+string(s), nil)
	}
}

// Complete is the terminal transition. It accepts every state, including
// pending: submitting an interview that never streamed is allowed and simply
// yields a completed row without a recording.
func Complete(models.Status) models.Status {
	return models.StatusCompleted
}

// Reconcilable reports whether a recording lookup makes sense.
func Reconcilable(iv *models.Interview) bool {
	return iv.Status == models.StatusCompleted && iv.LiveInputID != ""
}

// LiveInputName is the provider-side name for an interview's live input.
func LiveInputName(code string) string {
	return "Interview-" + code
}
