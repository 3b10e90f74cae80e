package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/scoutpool/internal/common"
)

func TestRunOnSchedule_EmptyExprRunsOnce(t *testing.T) {
	calls := 0
	err := RunOnSchedule(context.Background(), "", common.GetLogger(), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunOnSchedule_RunsImmediatelyThenWaitsForCancel(t *testing.T) {
	calls := 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := RunOnSchedule(ctx, "@every 1h", common.GetLogger(), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
