package retry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/scoutpool/internal/models"
)

func TestController_Decide_Success(t *testing.T) {
	c := NewController(3)
	outcome := c.Decide(2, true)
	assert.Equal(t, models.StatusCompleted, outcome.Status)
	assert.Equal(t, 2, outcome.RetryCount)
}

func TestController_Decide_FailureWithinLimit(t *testing.T) {
	c := NewController(3)
	outcome := c.Decide(0, false)
	assert.Equal(t, models.StatusRetrying, outcome.Status)
	assert.Equal(t, 1, outcome.RetryCount)
}

func TestController_Decide_FailureExhaustsRetries(t *testing.T) {
	c := NewController(3)
	outcome := c.Decide(3, false)
	assert.Equal(t, models.StatusFailed, outcome.Status)
	assert.Equal(t, 4, outcome.RetryCount)
}

func TestController_Decide_LastAllowedRetry(t *testing.T) {
	c := NewController(3)
	outcome := c.Decide(2, false)
	assert.Equal(t, models.StatusRetrying, outcome.Status)
	assert.Equal(t, 3, outcome.RetryCount)
}

func TestBackoffSeconds(t *testing.T) {
	assert.Equal(t, 5, BackoffSeconds(0))
	assert.Equal(t, 7, BackoffSeconds(1))
	assert.Equal(t, 11, BackoffSeconds(3))
}
