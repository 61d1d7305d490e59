package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncstream/server/internal/repository/snapshot"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRepo(rc, time.Hour), mr
}

func TestUpsertAndGet(t *testing.T) {
	r, mr := newTestRepo(t)
	ctx := context.Background()

	snap := snapshot.RoomSnapshot{
		Code:        "ABC123",
		HostConnId:  "host",
		VideoId:     "dQw4w9WgXcQ",
		CurrentTime: 42.5,
		IsPlaying:   true,
		Members:     []snapshot.MemberEntry{{Username: "alice", IsHost: true}},
		Queue:       []snapshot.QueueSnapshot{{VideoId: "v0", Title: "first", Position: 0}},
		UpdatedAt:   time.Now().UnixMilli(),
	}
	require.NoError(t, r.Upsert(ctx, &snap))

	got, err := r.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// snapshots expire on their own
	ttl := mr.TTL("room:ABC123")
	assert.Equal(t, time.Hour, ttl)
}

func TestGetMissing(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.Get(context.Background(), "ZZZZZZ")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}

func TestDelete(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &snapshot.RoomSnapshot{Code: "ABC123"}))
	require.NoError(t, r.Delete(ctx, "ABC123"))

	_, err := r.Get(ctx, "ABC123")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)

	// deleting an absent snapshot is not an error
	require.NoError(t, r.Delete(ctx, "ABC123"))
}
