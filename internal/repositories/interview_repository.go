package repositories

import (
	"errors"
	"time"

	"github.com/irah1999/cloud-flair/internal/models"

	"gorm.io/gorm"
)

var ErrInterviewNotFound = errors.New("interview not found")

// Provisioning is the set of columns written when a live input is attached.
type Provisioning struct {
	Status      models.Status
	StartedAt   time.Time
	LiveInputID string
	PublishURL  string
	PlaybackURL string
	StreamKey   string
}

type InterviewRepository struct {
	DB *gorm.DB
}

func (r *InterviewRepository) Create(interview *models.Interview) error {
	if interview.Status == "" {
		interview.Status = models.StatusPending
	}
	return r.DB.Create(interview).Error
}

func (r *InterviewRepository) FindByCode(code string) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.Where("interview_code = ?", code).First(&interview).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *InterviewRepository) FindByID(id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.First(&interview, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

// ApplyProvisioning writes the live input columns only while the row is still
// in the expected state: pending, or ongoing with a missing stream URL. It
// reports false when another writer got there first.
func (r *InterviewRepository) ApplyProvisioning(id uint, expected models.Status, p Provisioning) (bool, error) {
	query := r.DB.Model(&models.Interview{}).Where("id = ? AND status = ?", id, expected)
	if expected == models.StatusOngoing {
		query = query.Where("(live_stream_url IS NULL OR live_stream_url = '' OR playback_url IS NULL OR playback_url = '')")
	}

	result := query.Updates(map[string]any{
		"status":          p.Status,
		"started_at":      p.StartedAt,
		"cloudflare_uid":  p.LiveInputID,
		"live_stream_url": p.PublishURL,
		"playback_url":    p.PlaybackURL,
		"stream_key":      p.StreamKey,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Completion is the set of columns written when an interview is submitted.
type Completion struct {
	Status      models.Status
	AnswersJSON string
	Score       int
	CompletedAt time.Time
}

// Complete stores the final answers and score. It does not look at the
// current status.
func (r *InterviewRepository) Complete(id uint, c Completion) error {
	result := r.DB.Model(&models.Interview{}).Where("id = ?", id).Updates(map[string]any{
		"status":       c.Status,
		"answers_json": c.AnswersJSON,
		"score":        c.Score,
		"completed_at": c.CompletedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// SetRecordingID stores the recording of a completed interview. Rows in any
// other state are left alone and false is returned.
func (r *InterviewRepository) SetRecordingID(id uint, recordingID string) (bool, error) {
	result := r.DB.Model(&models.Interview{}).
		Where("id = ? AND status = ?", id, models.StatusCompleted).
		Update("recording_uid", recordingID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListAwaitingRecording returns completed interviews with a live input but no
// recording yet, oldest completion first.
func (r *InterviewRepository) ListAwaitingRecording(since time.Time, limit int) ([]models.Interview, error) {
	interviews := []models.Interview{}
	query := r.DB.
		Where("status = ?", models.StatusCompleted).
		Where("cloudflare_uid IS NOT NULL AND cloudflare_uid <> ''").
		Where("recording_uid IS NULL OR recording_uid = ''").
		Where("completed_at >= ?", since).
		Order("completed_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&interviews).Error
	return interviews, err
}
