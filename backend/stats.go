package backend

import (
	"fmt"
	"sync/atomic"
	"time"
)

// QueryStats holds execution counters for one backend.
type QueryStats struct {
	// TotalQueries is the number of FetchAll/FetchOne/LastInsertID calls.
	TotalQueries atomic.Int64
	// TotalExecs is the number of statements run through Execute or ExecuteMany.
	TotalExecs atomic.Int64
	// TotalDuration is the time spent in the driver, in nanoseconds.
	TotalDuration atomic.Int64
	// SlowQueries counts statements above the slow threshold.
	SlowQueries atomic.Int64
	// Errors counts failed statements.
	Errors atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *QueryStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset sets all counters to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the average time per statement.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}
