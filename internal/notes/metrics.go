package notes

import "time"

// Metrics receives operational measurements from the repository and the read cache.
type Metrics interface {
	// ObserveOperation records one completed repository operation.
	// err is nil on success.
	ObserveOperation(op string, elapsed time.Duration, err error)
	CacheHit()
	CacheMiss()
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, time.Duration, error) {}
func (NopMetrics) CacheHit()                                     {}
func (NopMetrics) CacheMiss()                                    {}
