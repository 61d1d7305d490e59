package room

import (
	"context"

	"github.com/gorilla/websocket"
)

type RelayGameEventResponse struct {
	Code     string
	Username string
	Conns    []*websocket.Conn
}

// RelayGameEvent resolves the sender's room for the mini-game pass-through
// events. Any member may emit; the payload is forwarded opaquely to every
// other member, with no validation of game identity or move legality and
// no stored state.
func (s service) RelayGameEvent(ctx context.Context, senderId string) (RelayGameEventResponse, error) {
	result, err := s.roomRepo.GetMemberRoom(senderId)
	if err != nil {
		s.logger.DebugContext(ctx, "game event from connection without a room", "error", err)
		return RelayGameEventResponse{}, err
	}

	return RelayGameEventResponse{
		Code:     result.Code,
		Username: result.Username,
		Conns:    s.getConnsByIds(ctx, result.MemberIds, senderId),
	}, nil
}
