package room

import (
	"context"

	"github.com/syncstream/server/internal/repository/snapshot"
)

// GetRoomSnapshot serves the diagnostics endpoint from the snapshot cache
// so inspection never contends with the live room table.
func (s service) GetRoomSnapshot(ctx context.Context, code string) (snapshot.RoomSnapshot, error) {
	snap, err := s.snapshots.Get(ctx, code)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to get room snapshot", "room_code", code, "error", err)
		return snapshot.RoomSnapshot{}, err
	}

	return snap, nil
}
