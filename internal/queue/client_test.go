package queue

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scoutpool/internal/common"
	"github.com/ternarybob/scoutpool/internal/models"
	"github.com/ternarybob/scoutpool/internal/storage/sqlite"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.Open(path, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, err := New(context.Background(), db.Conn(), "test_queue", common.GetLogger())
	require.NoError(t, err)
	return client
}

func TestEnqueueAndClaim(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id, err := c.Enqueue(ctx, "https://a.example.com/p/1", "electronics")
	require.NoError(t, err)
	assert.NotZero(t, id)

	batch, err := c.Claim(ctx, 10, "worker-1", []string{"pending", "retrying"}, 0)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "https://a.example.com/p/1", batch[0].Record.URL)
	assert.Equal(t, models.StatusClaimed, batch[0].Record.ProcessingStatus)
}

func TestClaim_ExclusiveAcrossConcurrentWorkers(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	const numURLs = 20
	for i := 0; i < numURLs; i++ {
		_, err := c.Enqueue(ctx, "https://a.example.com/p/x", "")
		require.NoError(t, err)
	}

	var (
		mu      sync.Mutex
		claimed []ClaimedRecord
		wg      sync.WaitGroup
	)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				batch, err := c.Claim(ctx, 1, workerIDFor(workerID), []string{"pending", "retrying"}, 0)
				if err != nil || len(batch) == 0 {
					return
				}
				mu.Lock()
				claimed = append(claimed, batch...)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, claimed, numURLs)
	seen := make(map[int64]bool)
	for _, rec := range claimed {
		assert.False(t, seen[rec.Record.ID], "row %d claimed more than once", rec.Record.ID)
		seen[rec.Record.ID] = true
	}
}

func TestResolveOffset_SkipsFirstNRows(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := c.Enqueue(ctx, "https://a.example.com/p/x", "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	minID, err := c.ResolveOffset(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, ids[3], minID)
}

func TestResolveOffset_ZeroSkipsNothing(t *testing.T) {
	c := newTestClient(t)
	minID, err := c.ResolveOffset(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), minID)
}

func TestResolveOffset_PastEndSkipsEverything(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, err := c.Enqueue(ctx, "https://a.example.com/p/1", "")
	require.NoError(t, err)

	minID, err := c.ResolveOffset(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), minID)
}

func workerIDFor(n int) string {
	return "worker-" + string(rune('a'+n))
}

func TestAck_CompletedClearsClaim(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Enqueue(ctx, "https://a.example.com/p/1", "")
	require.NoError(t, err)

	batch, err := c.Claim(ctx, 10, "worker-1", []string{"pending", "retrying"}, 0)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	success := true
	err = c.Ack(ctx, batch[0], AckFields{
		Status:        models.StatusCompleted,
		Success:       &success,
		ProductsFound: 3,
		ProductsSaved: 3,
		LastStrategy:  "scoped_dom",
	})
	require.NoError(t, err)

	again, err := c.Claim(ctx, 10, "worker-2", []string{"pending", "retrying", "completed"}, 0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAck_RetryingRepublishesForLaterClaim(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Enqueue(ctx, "https://a.example.com/p/1", "")
	require.NoError(t, err)

	batch, err := c.Claim(ctx, 10, "worker-1", []string{"pending", "retrying"}, 0)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	failed := false
	err = c.Ack(ctx, batch[0], AckFields{
		Status:       models.StatusRetrying,
		Success:      &failed,
		ErrorMessage: "navigation timeout",
		RetryCount:   1,
	})
	require.NoError(t, err)

	again, err := c.Claim(ctx, 10, "worker-2", []string{"pending", "retrying"}, 0)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 1, again[0].Record.RetryCount)
}
