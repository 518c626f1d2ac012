package dispatch

import "sync/atomic"

// Stats counts processed notifications. The counters only ever increase,
// are safe for concurrent use, and feed nothing but the status surface.
type Stats struct {
	total           atomic.Uint64
	withSnapshot    atomic.Uint64
	withoutSnapshot atomic.Uint64
}

// Record counts one inbound event. Events whose snapshot selection reached
// a provider count as withSnapshot regardless of whether the attempt
// succeeded; everything else counts as withoutSnapshot.
func (s *Stats) Record(snapshotUsed bool) {
	s.total.Add(1)
	if snapshotUsed {
		s.withSnapshot.Add(1)
	} else {
		s.withoutSnapshot.Add(1)
	}
}

// StatsSnapshot is a point-in-time read of the counters.
type StatsSnapshot struct {
	Total           uint64 `json:"total"`
	WithSnapshot    uint64 `json:"withSnapshot"`
	WithoutSnapshot uint64 `json:"withoutSnapshot"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Total:           s.total.Load(),
		WithSnapshot:    s.withSnapshot.Load(),
		WithoutSnapshot: s.withoutSnapshot.Load(),
	}
}
