package room

import (
	"context"

	"github.com/gorilla/websocket"

	roomRepo "github.com/syncstream/server/internal/repository/room"
)

type LoadVideoParams struct {
	SenderId    string
	VideoId     string
	CurrentTime float64
}

type PlayerResponse struct {
	Code   string
	Player PlayerState
	Conns  []*websocket.Conn
}

// LoadVideo replaces the room's current video. Playback starts paused at
// the given position (or zero).
func (s service) LoadVideo(ctx context.Context, params *LoadVideoParams) (PlayerResponse, error) {
	result, err := s.roomRepo.SetVideo(&roomRepo.SetVideoParams{
		SenderId:    params.SenderId,
		VideoId:     params.VideoId,
		CurrentTime: params.CurrentTime,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "load video rejected", "error", err)
		return PlayerResponse{}, err
	}

	s.mirrorPlayback(ctx, result.Code, result.Player)
	s.cacheSnapshot(ctx, result.Code)

	return PlayerResponse{
		Code:   result.Code,
		Player: toPlayerState(result.Player),
		Conns:  s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}

type UpdatePlayerStateParams struct {
	SenderId    string
	CurrentTime float64
	IsPlaying   bool
}

func (s service) UpdatePlayerState(ctx context.Context, params *UpdatePlayerStateParams) (PlayerResponse, error) {
	result, err := s.roomRepo.SetPlaying(&roomRepo.SetPlayingParams{
		SenderId:    params.SenderId,
		CurrentTime: params.CurrentTime,
		IsPlaying:   params.IsPlaying,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "player state update rejected", "error", err)
		return PlayerResponse{}, err
	}

	s.mirrorPlayback(ctx, result.Code, result.Player)
	s.cacheSnapshot(ctx, result.Code)

	return PlayerResponse{
		Code:   result.Code,
		Player: toPlayerState(result.Player),
		Conns:  s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}

type HeartbeatParams struct {
	SenderId    string
	CurrentTime float64
}

type HeartbeatResponse struct {
	Code        string
	CurrentTime float64
	IsPlaying   bool
	Conns       []*websocket.Conn
}

// Heartbeat advances the room clock to the host's position and returns the
// connections of every other member so they can drift-correct. The host is
// excluded; it must not correct against itself. Heartbeats are not
// mirrored to the relational store.
func (s service) Heartbeat(ctx context.Context, params *HeartbeatParams) (HeartbeatResponse, error) {
	result, err := s.roomRepo.UpdateCurrentTime(&roomRepo.UpdateCurrentTimeParams{
		SenderId:    params.SenderId,
		CurrentTime: params.CurrentTime,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "heartbeat rejected", "error", err)
		return HeartbeatResponse{}, err
	}

	s.cacheSnapshot(ctx, result.Code)

	return HeartbeatResponse{
		Code:        result.Code,
		CurrentTime: result.Player.CurrentTime,
		IsPlaying:   result.Player.IsPlaying,
		Conns:       s.getConnsByIds(ctx, result.MemberIds, params.SenderId),
	}, nil
}

type ToggleBackgroundPlayParams struct {
	SenderId string
	Enabled  bool
}

type ToggleBackgroundPlayResponse struct {
	Code    string
	Enabled bool
	Conns   []*websocket.Conn
}

func (s service) ToggleBackgroundPlay(ctx context.Context, params *ToggleBackgroundPlayParams) (ToggleBackgroundPlayResponse, error) {
	result, err := s.roomRepo.SetBackgroundPlay(&roomRepo.SetBackgroundPlayParams{
		SenderId: params.SenderId,
		Enabled:  params.Enabled,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "background play toggle rejected", "error", err)
		return ToggleBackgroundPlayResponse{}, err
	}

	s.mirrorPlayback(ctx, result.Code, result.Player)
	s.cacheSnapshot(ctx, result.Code)

	return ToggleBackgroundPlayResponse{
		Code:    result.Code,
		Enabled: result.Player.BackgroundPlay,
		Conns:   s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}
