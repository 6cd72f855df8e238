package ui

import "sync/atomic"

// Stats are the run totals printed after a download.
type Stats struct {
	TotalChapters  atomic.Int64
	DoneChapters   atomic.Int64
	FailedChapters atomic.Int64
	TotalBytes     atomic.Int64
	WrittenBytes   atomic.Int64
}

// Pending counts chapters an interrupted run never finished.
func (s *Stats) Pending() int64 {
	return s.TotalChapters.Load() - s.DoneChapters.Load() - s.FailedChapters.Load()
}

func (s *Stats) Complete() bool {
	return s.DoneChapters.Load() == s.TotalChapters.Load()
}
