package app

import (
	"time"
)

// Operation tracks the CLI command a NotesApp was created for. It is logged
// when the app closes.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time
}

// NewOperation creates an operation that started at now. The id is derived
// from the start time and tags every log line written by the run.
func NewOperation(name, parameters string, now time.Time) *Operation {
	return &Operation{
		ID:         now.UTC().Format("20060102T150405Z"),
		Name:       name,
		Parameters: parameters,
		Status:     "success",
		StartedAt:  now,
	}
}

// Track marks the operation failed when err is non-nil, and returns err.
func (op *Operation) Track(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

// Failed reports whether any tracked step failed.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
