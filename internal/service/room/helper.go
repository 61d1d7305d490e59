package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/syncstream/server/internal/repository/mirror"
	roomRepo "github.com/syncstream/server/internal/repository/room"
	"github.com/syncstream/server/internal/repository/snapshot"
)

// getConnsByIds resolves connection ids to live connections, skipping ids
// that are no longer registered. A member that disconnects mid-operation
// simply does not receive the broadcast.
func (s service) getConnsByIds(ctx context.Context, connIds []string, excluding string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(connIds))
	for _, connId := range connIds {
		if connId == excluding {
			continue
		}

		conn, err := s.connRepo.GetConn(connId)
		if err != nil {
			s.logger.DebugContext(ctx, "skipping unregistered connection", "conn_id", connId)
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

func toMembers(members []roomRepo.Member) []Member {
	return lo.Map(members, func(m roomRepo.Member, _ int) Member {
		return Member{Username: m.Username, IsHost: m.IsHost}
	})
}

func toQueue(queue []roomRepo.QueueItem) []QueueItem {
	return lo.Map(queue, func(item roomRepo.QueueItem, _ int) QueueItem {
		return QueueItem{VideoId: item.VideoId, Title: item.Title, Position: item.Position}
	})
}

func toPlayerState(player roomRepo.Player) PlayerState {
	return PlayerState{
		VideoId:        player.VideoId,
		CurrentTime:    player.CurrentTime,
		IsPlaying:      player.IsPlaying,
		BackgroundPlay: player.BackgroundPlay,
	}
}

// cacheSnapshot publishes the room's current state to the snapshot cache.
// Best effort: a raced teardown or a cache failure is logged and ignored.
func (s service) cacheSnapshot(ctx context.Context, code string) {
	state, err := s.roomRepo.GetRoom(code)
	if err != nil {
		return
	}

	snap := snapshot.RoomSnapshot{
		Code:           state.Code,
		HostConnId:     state.HostId,
		VideoId:        state.Player.VideoId,
		CurrentTime:    state.Player.CurrentTime,
		IsPlaying:      state.Player.IsPlaying,
		BackgroundPlay: state.Player.BackgroundPlay,
		Members: lo.Map(state.Members, func(m roomRepo.Member, _ int) snapshot.MemberEntry {
			return snapshot.MemberEntry{Username: m.Username, IsHost: m.IsHost}
		}),
		Queue: lo.Map(state.Queue, func(item roomRepo.QueueItem, _ int) snapshot.QueueSnapshot {
			return snapshot.QueueSnapshot{VideoId: item.VideoId, Title: item.Title, Position: item.Position}
		}),
		UpdatedAt: time.Now().UnixMilli(),
	}

	if err := s.snapshots.Upsert(ctx, &snap); err != nil {
		s.logger.WarnContext(ctx, "failed to cache room snapshot", "room_code", code, "error", err)
	}
}

func (s service) mirrorQueue(ctx context.Context, code string, queue []roomRepo.QueueItem) {
	entries := lo.Map(queue, func(item roomRepo.QueueItem, _ int) mirror.QueueEntry {
		return mirror.QueueEntry{VideoId: item.VideoId, Title: item.Title, Position: item.Position}
	})

	if err := s.mirror.RewriteQueue(ctx, code, entries); err != nil {
		s.logger.WarnContext(ctx, "failed to mirror queue", "room_code", code, "error", err)
	}
}

func (s service) mirrorPlayback(ctx context.Context, code string, player roomRepo.Player) {
	if err := s.mirror.UpdatePlayback(ctx, &mirror.UpdatePlaybackParams{
		RoomCode:       code,
		VideoId:        player.VideoId,
		CurrentTime:    player.CurrentTime,
		IsPlaying:      player.IsPlaying,
		BackgroundPlay: player.BackgroundPlay,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to mirror playback", "room_code", code, "error", err)
	}
}
