// internal/cache/redis_test.go
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog(t *testing.T) *ActionLog {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb, err := NewClient(context.Background(), Options{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewActionLog(rdb)
}

func TestPublishGameActionRoundTrip(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()
	gameID := uuid.New()
	t.Cleanup(func() { l.rdb.Del(ctx, StreamKey(gameID)) })

	for i := 1; i <= 3; i++ {
		require.NoError(t, l.PublishGameAction(ctx, GameActionRecord{
			ID:            uuid.New(),
			GameID:        gameID,
			ActionIndex:   i,
			ActorSlot:     "P1",
			ActionType:    "piece_place",
			ActionPayload: map[string]interface{}{"destination": []int{0, i}},
			Timestamp:     time.Now().UnixMilli(),
		}))
	}

	got, err := l.Actions(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, i+1, rec.ActionIndex, "stream preserves order")
		assert.Equal(t, gameID, rec.GameID)
	}
}

func TestSnapshotCache(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()
	t.Cleanup(func() { l.rdb.Del(ctx, snapshotKey) })

	l.rdb.Del(ctx, snapshotKey)
	body, err := l.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, body, "missing snapshot is not an error")

	require.NoError(t, l.StoreSnapshot(ctx, []byte(`{"phase":"placement"}`)))
	body, err = l.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"placement"}`, string(body))
}

func TestStreamKey(t *testing.T) {
	id := uuid.MustParse("6f1c2e0a-6a4e-4b7e-9f53-0d8d2b1f7c11")
	assert.Equal(t, "seega:actions:6f1c2e0a-6a4e-4b7e-9f53-0d8d2b1f7c11", StreamKey(id))
}
