package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name       string
		operation  string
		parameters string
	}{
		{
			name:       "with parameters",
			operation:  "edit",
			parameters: "id-1",
		},
		{
			name:       "empty parameters",
			operation:  "list",
			parameters: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.operation, tt.parameters, now)

			if op.Name != tt.operation {
				t.Errorf("Name = %q, want %q", op.Name, tt.operation)
			}
			if op.Parameters != tt.parameters {
				t.Errorf("Parameters = %q, want %q", op.Parameters, tt.parameters)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if op.ID != "20240615T143045Z" {
				t.Errorf("ID = %q, want %q", op.ID, "20240615T143045Z")
			}
		})
	}
}

func TestOperation_Track(t *testing.T) {
	tests := []struct {
		name       string
		errs       []error
		wantFailed bool
	}{
		{name: "no steps", wantFailed: false},
		{name: "only successes", errs: []error{nil, nil}, wantFailed: false},
		{name: "one failure", errs: []error{nil, errors.New("boom")}, wantFailed: true},
		{name: "failure then success stays failed", errs: []error{errors.New("boom"), nil}, wantFailed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("edit", "", time.Now())
			for _, err := range tt.errs {
				if got := op.Track(err); got != err {
					t.Errorf("Track() returned %v, want %v", got, err)
				}
			}
			if got := op.Failed(); got != tt.wantFailed {
				t.Errorf("Failed() = %v, want %v", got, tt.wantFailed)
			}
		})
	}
}
