// Package retry implements the per-URL retry state machine:
// pending|retrying -> claimed -> completed|failed|retrying.
package retry

import "github.com/ternarybob/scoutpool/internal/models"

// Controller decides the next processing_status and retry_count for a
// claimed URL given the outcome of one attempt.
type Controller struct {
	MaxRetries int
}

// NewController constructs a Controller bound to the configured
// MAX_RETRIES ceiling.
func NewController(maxRetries int) *Controller {
	return &Controller{MaxRetries: maxRetries}
}

// Outcome is the result Decide computes for one attempt.
type Outcome struct {
	Status     models.ProcessingStatus
	RetryCount int
}

// Decide applies the retry policy: a successful attempt (even with zero
// products found, which is not itself a failure — see NoResults in
// extraction) always completes. A failed attempt increments retry_count
// and moves to retrying while retry_count is still within MaxRetries,
// otherwise moves to failed permanently.
func (c *Controller) Decide(currentRetryCount int, success bool) Outcome {
	if success {
		return Outcome{Status: models.StatusCompleted, RetryCount: currentRetryCount}
	}

	nextCount := currentRetryCount + 1
	if nextCount <= c.MaxRetries {
		return Outcome{Status: models.StatusRetrying, RetryCount: nextCount}
	}
	return Outcome{Status: models.StatusFailed, RetryCount: nextCount}
}

// BackoffSeconds implements the linear per-URL backoff for
// non-circuit-breaker errors: 5 + 2*retry_count seconds.
func BackoffSeconds(retryCount int) int {
	return 5 + 2*retryCount
}
