package reminder

import (
	"sync/atomic"
	"time"
)

// ScanState is the small piece of runtime state shared between the
// scheduler, the health endpoint and the admin status command.
type ScanState struct {
	lastCheck atomic.Int64 // unix nanoseconds, 0 = never
	pending   atomic.Int64
}

// NewScanState returns an empty state.
func NewScanState() *ScanState {
	return &ScanState{}
}

// MarkChecked records the time of the latest scheduled run.
func (s *ScanState) MarkChecked(t time.Time) {
	s.lastCheck.Store(t.UnixNano())
}

// LastCheck returns the latest scheduled run, if any.
func (s *ScanState) LastCheck() (time.Time, bool) {
	ns := s.lastCheck.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// PendingWarnings returns the number of armed warnings that have not fired.
func (s *ScanState) PendingWarnings() int {
	return int(s.pending.Load())
}

func (s *ScanState) setPending(n int) {
	s.pending.Store(int64(n))
}
