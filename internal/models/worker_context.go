package models

import "time"

// WorkerContext is the in-memory state owned by one pool worker for its
// entire lifetime: a token, its current browser handle bookkeeping, and
// the ephemeral profile directory recycled alongside the browser.
type WorkerContext struct {
	Token          string
	Index          int
	ProfileDir     string
	URLsProcessed  int
	BrowserReady   bool
	CreatedAt      time.Time
	LastRecycledAt time.Time
}

// NeedsRecycle reports whether the worker has crossed the per-driver URL
// budget. Resource-pressure recycling is decided by the caller (the pool),
// which also consults ResourceGuard — this method only covers the URL
// counter half of the recycle policy.
func (w *WorkerContext) NeedsRecycle(urlsPerDriverCleanup int) bool {
	return w.URLsProcessed >= urlsPerDriverCleanup
}

// Stats is the snapshot handed to the WorkerPool progress callback after
// each completed job.
type Stats struct {
	Submitted          int
	Succeeded          int
	Failed             int
	TotalProductsFound int
	TotalSavedToDB     int
}
