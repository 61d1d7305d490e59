package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syncstream/server/internal/repository/snapshot"
)

type repo struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRepo(rc *redis.Client, ttl time.Duration) *repo {
	return &repo{rc: rc, ttl: ttl}
}

func (r repo) getRoomKey(code string) string {
	return "room:" + code
}

func (r repo) Upsert(ctx context.Context, snap *snapshot.RoomSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return r.rc.Set(ctx, r.getRoomKey(snap.Code), data, r.ttl).Err()
}

func (r repo) Get(ctx context.Context, code string) (snapshot.RoomSnapshot, error) {
	data, err := r.rc.Get(ctx, r.getRoomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snapshot.RoomSnapshot{}, snapshot.ErrSnapshotNotFound
		}
		return snapshot.RoomSnapshot{}, err
	}

	var snap snapshot.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot.RoomSnapshot{}, err
	}

	return snap, nil
}

func (r repo) Delete(ctx context.Context, code string) error {
	return r.rc.Del(ctx, r.getRoomKey(code)).Err()
}
