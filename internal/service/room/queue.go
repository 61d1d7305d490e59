package room

import (
	"context"

	"github.com/gorilla/websocket"

	roomRepo "github.com/syncstream/server/internal/repository/room"
)

type AddToQueueParams struct {
	SenderId string
	VideoId  string
	Title    string
}

type QueueResponse struct {
	Code  string
	Queue []QueueItem
	Conns []*websocket.Conn
}

func (s service) AddToQueue(ctx context.Context, params *AddToQueueParams) (QueueResponse, error) {
	result, err := s.roomRepo.AppendQueueItem(&roomRepo.AppendQueueItemParams{
		SenderId: params.SenderId,
		VideoId:  params.VideoId,
		Title:    params.Title,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "add to queue rejected", "error", err)
		return QueueResponse{}, err
	}

	s.mirrorQueue(ctx, result.Code, result.Queue)
	s.cacheSnapshot(ctx, result.Code)

	return QueueResponse{
		Code:  result.Code,
		Queue: toQueue(result.Queue),
		Conns: s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}

type RemoveFromQueueParams struct {
	SenderId string
	Position int
}

func (s service) RemoveFromQueue(ctx context.Context, params *RemoveFromQueueParams) (QueueResponse, error) {
	result, err := s.roomRepo.RemoveQueueItem(&roomRepo.RemoveQueueItemParams{
		SenderId: params.SenderId,
		Position: params.Position,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "remove from queue rejected", "error", err)
		return QueueResponse{}, err
	}

	s.mirrorQueue(ctx, result.Code, result.Queue)
	s.cacheSnapshot(ctx, result.Code)

	return QueueResponse{
		Code:  result.Code,
		Queue: toQueue(result.Queue),
		Conns: s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}

type PlayNextResponse struct {
	Code   string
	Player PlayerState
	Queue  []QueueItem
	Conns  []*websocket.Conn
}

// PlayNext pops the front of the queue and makes it the current video,
// playing from the start. Serves both the explicit play-next request and
// the video-ended auto-advance; an empty queue returns ErrEmptyQueue and
// changes nothing.
func (s service) PlayNext(ctx context.Context, senderId string) (PlayNextResponse, error) {
	result, err := s.roomRepo.PopNextVideo(senderId)
	if err != nil {
		s.logger.DebugContext(ctx, "play next rejected", "error", err)
		return PlayNextResponse{}, err
	}

	s.mirrorPlayback(ctx, result.Code, result.Player)
	s.mirrorQueue(ctx, result.Code, result.Queue)
	s.cacheSnapshot(ctx, result.Code)

	return PlayNextResponse{
		Code:   result.Code,
		Player: toPlayerState(result.Player),
		Queue:  toQueue(result.Queue),
		Conns:  s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}
