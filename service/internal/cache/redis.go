// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey     = "seega:snapshot"
	actionStreamFmt = "seega:actions:%s"
	// defaultStreamLen caps each match's action stream; XADD trims approximately.
	defaultStreamLen = 5000
)

// GameActionRecord is one accepted transition, published for replay and audit.
type GameActionRecord struct {
	ID            uuid.UUID              `json:"id"`
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // Nil for server events (reset).
	ActorSlot     string                 `json:"actorSlot,omitempty"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Timestamp     int64                  `json:"timestamp"` // Unix milliseconds.
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// ActionLog appends game actions to per-match Redis streams and keeps the
// latest snapshot for late readers.
type ActionLog struct {
	rdb       *redis.Client
	streamLen int64
}

// NewActionLog wraps an existing client.
func NewActionLog(rdb *redis.Client) *ActionLog {
	return &ActionLog{rdb: rdb, streamLen: defaultStreamLen}
}

// StreamKey returns the stream holding a match's actions.
func StreamKey(gameID uuid.UUID) string { return fmt.Sprintf(actionStreamFmt, gameID) }

// PublishGameAction appends rec to its match stream.
func (l *ActionLog) PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}
	err = l.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(rec.GameID),
		MaxLen: l.streamLen,
		Approx: true,
		Values: map[string]interface{}{
			"index":  rec.ActionIndex,
			"type":   rec.ActionType,
			"record": body,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", StreamKey(rec.GameID), err)
	}
	return nil
}

// Actions reads back every record of a match in order.
func (l *ActionLog) Actions(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	entries, err := l.rdb.XRange(ctx, StreamKey(gameID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("xrange %s: %w", StreamKey(gameID), err)
	}
	out := make([]GameActionRecord, 0, len(entries))
	for _, e := range entries {
		raw, ok := e.Values["record"].(string)
		if !ok {
			continue
		}
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", e.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// StoreSnapshot replaces the cached latest snapshot.
func (l *ActionLog) StoreSnapshot(ctx context.Context, body []byte) error {
	if err := l.rdb.Set(ctx, snapshotKey, body, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", snapshotKey, err)
	}
	return nil
}

// LatestSnapshot returns the cached snapshot, or nil if none was stored.
func (l *ActionLog) LatestSnapshot(ctx context.Context) ([]byte, error) {
	body, err := l.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", snapshotKey, err)
	}
	return body, nil
}
