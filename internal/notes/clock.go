package notes

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so repository behavior is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the current wall-clock time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator produces identifiers for new records.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
