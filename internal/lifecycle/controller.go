package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/irah1999/cloud-flair/internal/metrics"
	"github.com/irah1999/cloud-flair/internal/models"
	"github.com/irah1999/cloud-flair/internal/repositories"
	"github.com/irah1999/cloud-flair/internal/stream"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	msgMisconfigured = "Stream created but WHIP/WHEP URLs are missing. Please ensure Stream is enabled on your account."
	msgUnavailable   = "Failed to reach the streaming provider. Please try joining again."
	msgSubmitFailed  = "Failed to save the interview result. Your answers may not have been recorded."
)

// Store is the persistence the controller needs.
type Store interface {
	FindByCode(code string) (*models.Interview, error)
	FindByID(id uint) (*models.Interview, error)
	ApplyProvisioning(id uint, expected models.Status, p repositories.Provisioning) (bool, error)
	Complete(id uint, c repositories.Completion) error
	SetRecordingID(id uint, recordingID string) (bool, error)
	ListAwaitingRecording(since time.Time, limit int) ([]models.Interview, error)
}

// Options tunes controller behavior. The zero value is usable.
type Options struct {
	// Locker serializes provisioning across processes. Defaults to LocalLocker.
	Locker Locker
	// DisconnectOnSubmit disables the live input when an interview is submitted,
	// dropping any publisher that did not hang up.
	DisconnectOnSubmit bool
	// Now is the clock used for started_at and completed_at.
	Now func() time.Time
	// ProvisionTimeout bounds one shared provisioning run. It is detached from
	// the caller that started the run so waiting callers are not cut short.
	// Defaults to 30s.
	ProvisionTimeout time.Duration
}

// Controller drives interviews through pending, ongoing and completed, and
// owns every call to the streaming provider.
type Controller struct {
	store    Store
	provider stream.Provider
	logger   *zap.Logger
	locker   Locker
	flight   singleflight.Group

	disconnectOnSubmit bool
	provisionTimeout   time.Duration
	now                func() time.Time
}

func NewController(store Store, provider stream.Provider, logger *zap.Logger, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:              store,
		provider:           provider,
		logger:             logger,
		locker:             opts.Locker,
		disconnectOnSubmit: opts.DisconnectOnSubmit,
		provisionTimeout:   opts.ProvisionTimeout,
		now:                opts.Now,
	}
	if c.locker == nil {
		c.locker = LocalLocker{}
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.provisionTimeout <= 0 {
		c.provisionTimeout = 30 * time.Second
	}
	return c
}

// Join returns the interview for code, creating its live input first when the
// interview has none that is usable.
func (c *Controller) Join(ctx context.Context, code string) (*models.Interview, error) {
	iv, err := c.findByCode(code)
	if err != nil {
		return nil, err
	}
	if !NeedsProvisioning(iv) {
		return iv, nil
	}

	// The run outlives whichever caller started it; each caller only stops waiting.
	ch := c.flight.DoChan(code, func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.provisionTimeout)
		defer cancel()
		return c.provisionLocked(pctx, code)
	})

	select {
	case <-ctx.Done():
		return nil, newError(KindProviderUnavailable, msgUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("joined in-flight provisioning", zap.String("code", code))
		}
		out := *res.Val.(*models.Interview)
		return &out, nil
	}
}

func (c *Controller) provisionLocked(ctx context.Context, code string) (*models.Interview, error) {
	release, err := c.locker.Acquire(ctx, code)
	if err != nil {
		c.logger.Warn("could not acquire provisioning lock", zap.String("code", code), zap.Error(err))
		return nil, newError(KindStoreFailure, "Interview is being prepared, please try again.", err)
	}
	defer release()

	// Another process may have finished while we waited for the lock.
	iv, err := c.findByCode(code)
	if err != nil {
		return nil, err
	}
	if !NeedsProvisioning(iv) {
		return iv, nil
	}
	return c.provision(ctx, iv)
}

func (c *Controller) provision(ctx context.Context, iv *models.Interview) (*models.Interview, error) {
	next, err := Begin(iv.Status)
	if err != nil {
		return nil, err
	}

	log := c.logger.With(zap.String("code", iv.InterviewCode), zap.Uint("interview_id", iv.ID), zap.String("from", string(iv.Status)))

	input, err := c.provider.CreateLiveInput(ctx, stream.LiveInputParams{
		Name:          LiveInputName(iv.InterviewCode),
		AutoRecording: true,
	})
	if err != nil {
		return nil, c.providerFailure(log, err)
	}
	log = log.With(zap.String("live_input_id", input.UID))

	if input.PublishURL == "" || input.PlaybackURL == "" {
		metrics.RecordProvisioning(metrics.ProvisionMisconfigured)
		log.Error("live input created without WebRTC endpoints")
		c.discardLiveInput(ctx, log, input.UID)
		return nil, newError(KindProviderMisconfigured, msgMisconfigured, nil)
	}

	startedAt := c.now()
	if iv.StartedAt != nil {
		startedAt = *iv.StartedAt
	}

	applied, err := c.store.ApplyProvisioning(iv.ID, iv.Status, repositories.Provisioning{
		Status:      next,
		StartedAt:   startedAt,
		LiveInputID: input.UID,
		PublishURL:  input.PublishURL,
		PlaybackURL: input.PlaybackURL,
		StreamKey:   input.StreamKey,
	})
	if err != nil {
		// The write may or may not have landed, so the live input is kept.
		metrics.RecordProvisioning(metrics.ProvisionStoreFailed)
		log.Error("failed to persist live input", zap.Error(err))
		return nil, newError(KindStoreFailure, "Failed to save stream details. Please try joining again.", err)
	}
	if !applied {
		metrics.RecordProvisioning(metrics.ProvisionLostRace)
		log.Warn("interview changed during provisioning, discarding live input")
		c.discardLiveInput(ctx, log, input.UID)
	} else {
		metrics.RecordProvisioning(metrics.ProvisionSucceeded)
		log.Info("interview started", zap.String("to", string(next)))
	}

	return c.findByID(iv.ID)
}

func (c *Controller) providerFailure(log *zap.Logger, err error) error {
	var perr *stream.ProviderError
	if errors.As(err, &perr) && perr.Code != stream.ErrCodeUnavailable {
		metrics.RecordProvisioning(metrics.ProvisionRejected)
		log.Error("provider rejected live input", zap.Error(err))
		return newError(KindProviderRejected, "Failed to initialize live stream. Error: "+perr.Message, err)
	}

	metrics.RecordProvisioning(metrics.ProvisionUnavailable)
	log.Error("provider unavailable", zap.Error(err))
	return newError(KindProviderUnavailable, msgUnavailable, err)
}

// discardLiveInput removes a live input that no interview row refers to.
func (c *Controller) discardLiveInput(ctx context.Context, log *zap.Logger, uid string) {
	if uid == "" {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.provider.DeleteLiveInput(dctx, uid); err != nil {
		log.Warn("failed to delete orphaned live input", zap.Error(err))
	}
}

// Submit finalizes an interview with the candidate's answers and score.
// Submitting twice rewrites the same fields, including completed_at.
func (c *Controller) Submit(ctx context.Context, id uint, answers json.RawMessage, score int) error {
	iv, err := c.findByID(id)
	if err != nil {
		return err
	}
	log := c.logger.With(zap.Uint("interview_id", id), zap.String("code", iv.InterviewCode), zap.String("from", string(iv.Status)))

	if c.disconnectOnSubmit && iv.LiveInputID != "" {
		if err := c.provider.SetLiveInputEnabled(ctx, iv.LiveInputID, false); err != nil {
			log.Warn("failed to disable live input", zap.String("live_input_id", iv.LiveInputID), zap.Error(err))
		}
	}

	if iv.Status == models.StatusPending {
		log.Warn("submitting an interview that never started")
	}

	err = c.store.Complete(iv.ID, repositories.Completion{
		Status:      Complete(iv.Status),
		AnswersJSON: encodeAnswers(answers),
		Score:       score,
		CompletedAt: c.now(),
	})
	if errors.Is(err, repositories.ErrInterviewNotFound) {
		return newError(KindNotFound, "Interview not found.", err)
	}
	if err != nil {
		log.Error("failed to save submission", zap.Error(err))
		return newError(KindStoreFailure, msgSubmitFailed, err)
	}

	log.Info("interview submitted", zap.Int("score", score))
	return nil
}

func encodeAnswers(answers json.RawMessage) string {
	if len(answers) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, answers); err != nil {
		return string(answers)
	}
	return buf.String()
}

// Details returns the interview for code. Completed interviews get their
// recording looked up and stored; a missing recording is not an error.
func (c *Controller) Details(ctx context.Context, code string) (*models.Interview, error) {
	iv, err := c.findByCode(code)
	if err != nil {
		return nil, err
	}
	c.reconcile(ctx, iv)
	return iv, nil
}

// ReconcilePending backfills recordings for completed interviews that still
// lack one. It returns how many rows were updated.
func (c *Controller) ReconcilePending(ctx context.Context, since time.Time, limit int) (int, error) {
	pending, err := c.store.ListAwaitingRecording(since, limit)
	if err != nil {
		return 0, err
	}

	backfilled := 0
	for i := range pending {
		if ctx.Err() != nil {
			return backfilled, ctx.Err()
		}
		if c.reconcile(ctx, &pending[i]) == metrics.ReconcileBackfilled {
			backfilled++
		}
	}
	return backfilled, nil
}

// reconcile copies the provider's first recording into iv and the store.
func (c *Controller) reconcile(ctx context.Context, iv *models.Interview) string {
	if !Reconcilable(iv) {
		return ""
	}
	log := c.logger.With(zap.String("code", iv.InterviewCode), zap.String("live_input_id", iv.LiveInputID))

	outcome := metrics.ReconcileFailed
	defer func() { metrics.RecordReconciliation(outcome) }()

	recordings, err := c.provider.ListRecordings(ctx, iv.LiveInputID)
	if err != nil {
		log.Warn("recording lookup failed", zap.Error(err))
		return outcome
	}
	if len(recordings) == 0 || recordings[0].UID == "" {
		outcome = metrics.ReconcileNotReady
		return outcome
	}

	latest := recordings[0].UID
	if latest == iv.RecordingID {
		outcome = metrics.ReconcileUnchanged
		return outcome
	}

	ok, err := c.store.SetRecordingID(iv.ID, latest)
	if err != nil {
		log.Warn("failed to store recording id", zap.String("recording_id", latest), zap.Error(err))
		return outcome
	}
	if !ok {
		outcome = metrics.ReconcileUnchanged
		return outcome
	}

	iv.RecordingID = latest
	outcome = metrics.ReconcileBackfilled
	log.Info("recording backfilled", zap.String("recording_id", latest))
	return outcome
}

func (c *Controller) findByCode(code string) (*models.Interview, error) {
	iv, err := c.store.FindByCode(code)
	return iv, c.lookupError(err, "Interview code not found.")
}

func (c *Controller) findByID(id uint) (*models.Interview, error) {
	iv, err := c.store.FindByID(id)
	return iv, c.lookupError(err, "Interview not found.")
}

func (c *Controller) lookupError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrInterviewNotFound) {
		return newError(KindNotFound, notFound, err)
	}
	c.logger.Error("interview lookup failed", zap.Error(err))
	return newError(KindStoreFailure, "Failed to load interview.", err)
}
