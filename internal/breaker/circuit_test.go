package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/scoutpool/internal/common"
)

func TestIsErrno11(t *testing.T) {
	assert.True(t, IsErrno11(errors.New("fork/exec: resource temporarily unavailable")))
	assert.True(t, IsErrno11(errors.New("EAGAIN: Errno 11")))
	assert.True(t, IsErrno11(errors.New("too many open files")))
	assert.False(t, IsErrno11(errors.New("context deadline exceeded")))
	assert.False(t, IsErrno11(nil))
}

func TestBreaker_TripsAtThreshold(t *testing.T) {
	logger := common.GetLogger()
	tripped := false
	b := New(2, logger, func() { tripped = true })

	b.RecordFailure()
	assert.False(t, tripped)
	assert.True(t, b.PausedUntil().IsZero())

	before := time.Now()
	b.RecordFailure()
	assert.True(t, tripped)

	deadline := b.PausedUntil()
	assert.False(t, deadline.IsZero())
	// threshold reached at consecutive=2: pause = 60+20*2 = 100s
	assert.True(t, deadline.After(before.Add(99*time.Second)))
	assert.True(t, deadline.Before(before.Add(110*time.Second)))
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	logger := common.GetLogger()
	tripped := false
	b := New(3, logger, func() { tripped = true })

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.False(t, tripped)
}

func TestBreaker_WaitReturnsImmediatelyWhenNotPaused(t *testing.T) {
	logger := common.GetLogger()
	b := New(5, logger, nil)
	start := time.Now()
	b.Wait()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
