package models

import (
	"encoding/json"
	"strings"
)

// JoinRequest is the body of POST /api/join.
type JoinRequest struct {
	Code string `json:"code"`
}

func (r *JoinRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return NewValidationError("code is required")
	}
	return nil
}

// SubmitRequest is the body of POST /api/submit. Answers are kept raw and
// persisted opaquely.
type SubmitRequest struct {
	ID      uint            `json:"id"`
	Answers json.RawMessage `json:"answers"`
	Score   int             `json:"score"`
}

func (r *SubmitRequest) Validate() error {
	if r.ID == 0 {
		return NewValidationError("id is required")
	}
	return nil
}
