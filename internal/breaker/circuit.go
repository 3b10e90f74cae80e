// Package breaker implements the process-wide circuit breaker: a run of
// Errno11-class failures pauses every worker and recycles every browser
// session rather than retrying individual URLs.
package breaker

import (
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// errno11Markers match the "Resource temporarily unavailable" family of
// OS-level failures chromedp/go-rod surface when fork() starts failing
// under process pressure — the signal that per-URL retry cannot fix
// anything, and the only remedy is reducing concurrency.
var errno11Markers = []string{
	"resource temporarily unavailable",
	"errno 11",
	"cannot allocate memory",
	"too many open files",
}

// Breaker tracks consecutive Errno11-class failures across every worker
// and computes a shared pause deadline once the threshold trips.
type Breaker struct {
	mu              sync.Mutex
	threshold       int
	consecutive     int
	pausedUntil     time.Time
	logger          arbor.ILogger
	onTrip          func()
}

// New constructs a Breaker. onTrip is called synchronously by every
// RecordFailure that leaves the consecutive count at or above the
// threshold — callers use it to recycle every browser session.
func New(threshold int, logger arbor.ILogger, onTrip func()) *Breaker {
	return &Breaker{threshold: threshold, logger: logger, onTrip: onTrip}
}

// IsErrno11 reports whether err's message matches the Errno11 marker set.
func IsErrno11(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range errno11Markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// RecordFailure registers one Errno11-class failure and trips the
// breaker if the consecutive count reaches the threshold. The pause
// duration grows with how many consecutive failures preceded the trip:
// 60 + 20*count seconds.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutive++
	if b.consecutive >= b.threshold {
		pause := time.Duration(60+20*b.consecutive) * time.Second
		b.pausedUntil = time.Now().Add(pause)
		b.logger.Warn().
			Int("consecutive_errors", b.consecutive).
			Dur("pause", pause).
			Msg("circuit breaker tripped, pausing all workers")
		if b.onTrip != nil {
			b.onTrip()
		}
	}
}

// RecordSuccess resets the consecutive failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive = 0
}

// PausedUntil returns the current pause deadline, the zero time if the
// breaker is not tripped.
func (b *Breaker) PausedUntil() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pausedUntil
}

// Wait blocks the caller until any active pause has elapsed.
func (b *Breaker) Wait() {
	deadline := b.PausedUntil()
	if deadline.IsZero() {
		return
	}
	if remaining := time.Until(deadline); remaining > 0 {
		time.Sleep(remaining)
	}
}
