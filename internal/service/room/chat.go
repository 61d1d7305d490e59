package room

import (
	"context"
	"strings"

	"github.com/gorilla/websocket"
)

type SendMessageParams struct {
	SenderId string
	Message  string
}

type SendMessageResponse struct {
	Code     string
	Username string
	Message  string
	Conns    []*websocket.Conn
}

// SendMessage relays a chat message to the whole room, sender included.
// Nothing is stored; blank messages are dropped.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	message := strings.TrimSpace(params.Message)
	if message == "" {
		return SendMessageResponse{}, ErrEmptyMessage
	}

	result, err := s.roomRepo.GetMemberRoom(params.SenderId)
	if err != nil {
		s.logger.DebugContext(ctx, "message from connection without a room", "error", err)
		return SendMessageResponse{}, err
	}

	return SendMessageResponse{
		Code:     result.Code,
		Username: result.Username,
		Message:  message,
		Conns:    s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}
