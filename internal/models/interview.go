package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusOngoing, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown interview status %q", s)
	}
}

// Interview is a single candidate session. Rows are seeded ahead of time and
// mutated in place by the lifecycle controller; they are never deleted.
type Interview struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CandidateName  string     `gorm:"not null" json:"candidate_name"`
	CandidateEmail string     `gorm:"not null" json:"candidate_email"`
	InterviewCode  string     `gorm:"uniqueIndex;not null" json:"interview_code"`
	Status         Status     `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	QuestionsJSON  string     `gorm:"type:text" json:"questions_json"`
	AnswersJSON    string     `gorm:"type:text" json:"answers_json,omitempty"`
	Score          int        `gorm:"default:0" json:"score"`
	LiveInputID    string     `gorm:"column:cloudflare_uid" json:"cloudflare_uid,omitempty"`
	PublishURL     string     `gorm:"column:live_stream_url;type:text" json:"live_stream_url,omitempty"`
	PlaybackURL    string     `gorm:"column:playback_url;type:text" json:"playback_url,omitempty"`
	StreamKey      string     `json:"stream_key,omitempty"`
	RecordingID    string     `gorm:"column:recording_uid" json:"recording_uid,omitempty"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasStreamURLs reports whether both the publish and playback endpoints are recorded.
func (iv *Interview) HasStreamURLs() bool {
	return iv.PublishURL != "" && iv.PlaybackURL != ""
}

// Question is one entry of the quiz stored in questions_json.
type Question struct {
	ID       int      `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	Options  []string `json:"options" yaml:"options"`
	Answer   string   `json:"answer" yaml:"answer"`
}
