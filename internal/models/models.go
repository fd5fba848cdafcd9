// Package models contains the JSON shapes of the control API.
package models

import (
	"time"

	"site_blocker/internal/session"
)

// StatusDTO mirrors the BlockingSession record. Times are unix milliseconds
// and durations are milliseconds; unset values are null.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type StatusDTO struct {
	IsBlocking         bool   `json:"isBlocking"`
	BlockingEndTime    *int64 `json:"blockingEndTime"`
	BlockingDuration   *int64 `json:"blockingDuration"`
	BlockingElapsed    int64  `json:"blockingElapsed"`
	TempUnblockActive  bool   `json:"tempUnblockActive"`
	TempUnblockEndTime *int64 `json:"tempUnblockEndTime"`
	SessionID          string `json:"sessionId,omitempty"`
	State              string `json:"state"`
}

// NewStatusDTO converts a session record for the wire.
func NewStatusDTO(s session.BlockingSession) StatusDTO {
	dto := StatusDTO{
		IsBlocking:         s.IsBlocking,
		BlockingEndTime:    unixMillis(s.BlockingEndTime),
		BlockingElapsed:    s.BlockingElapsed.Milliseconds(),
		TempUnblockActive:  s.TempUnblockActive,
		TempUnblockEndTime: unixMillis(s.TempUnblockEndTime),
		SessionID:          s.SessionID,
		State:              string(s.State()),
	}
	if s.BlockingDuration != nil {
		ms := s.BlockingDuration.Milliseconds()
		dto.BlockingDuration = &ms
	}
	return dto
}

// MessageRequest is the action-style command envelope.
type MessageRequest struct {
	Action  string   `json:"action" binding:"required"`
	Minutes *float64 `json:"minutes"`
}

// Message actions.
const (
	ActionStartBlocking = "startBlocking"
	ActionTempUnblock   = "tempUnblock"
	ActionResume        = "resume"
	ActionGetStatus     = "getStatus"
)

// MinutesRequest carries the length of a session or pause.
type MinutesRequest struct {
	Minutes *float64 `json:"minutes"`
}

// AckResponse acknowledges a command.
type AckResponse struct {
	Success bool      `json:"success"`
	Status  StatusDTO `json:"status"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func unixMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
