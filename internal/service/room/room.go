package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/repository/mirror"
	roomRepo "github.com/syncstream/server/internal/repository/room"
)

type CreateRoomParams struct {
	ConnId   string
	Username string
}

type CreateRoomResponse struct {
	Code    string
	Members []Member
	Queue   []QueueItem
	Conns   []*websocket.Conn
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	result, err := s.roomRepo.CreateRoom(&roomRepo.CreateRoomParams{
		ConnId:   params.ConnId,
		Username: params.Username,
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to create room", "error", err)
		return CreateRoomResponse{}, err
	}

	if err := s.mirror.InsertRoom(ctx, &mirror.InsertRoomParams{
		Code:       result.Code,
		HostConnId: params.ConnId,
		Username:   params.Username,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to mirror room creation", "room_code", result.Code, "error", err)
	}
	s.cacheSnapshot(ctx, result.Code)

	return CreateRoomResponse{
		Code:    result.Code,
		Members: toMembers(result.Members),
		Queue:   []QueueItem{},
		Conns:   s.getConnsByIds(ctx, []string{params.ConnId}, ""),
	}, nil
}

type JoinRoomParams struct {
	ConnId   string
	Code     string
	Username string
}

type JoinRoomResponse struct {
	Code    string
	State   PlayerState
	Members []Member
	Queue   []QueueItem
	Conns   []*websocket.Conn
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	result, err := s.roomRepo.AddMember(&roomRepo.AddMemberParams{
		Code:     params.Code,
		ConnId:   params.ConnId,
		Username: params.Username,
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to join room", "room_code", params.Code, "error", err)
		return JoinRoomResponse{}, err
	}

	if err := s.mirror.InsertMember(ctx, &mirror.InsertMemberParams{
		ConnId:   params.ConnId,
		RoomCode: params.Code,
		Username: params.Username,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to mirror member join", "room_code", params.Code, "error", err)
	}
	s.cacheSnapshot(ctx, params.Code)

	return JoinRoomResponse{
		Code:    params.Code,
		State:   toPlayerState(result.Player),
		Members: toMembers(result.Members),
		Queue:   toQueue(result.Queue),
		Conns:   s.getConnsByIds(ctx, result.MemberIds, ""),
	}, nil
}

type DisconnectMemberResponse struct {
	Code          string
	Username      string
	WasHost       bool
	PromotedConn  *websocket.Conn
	Members       []Member
	Conns         []*websocket.Conn
	IsRoomDeleted bool
}

// DisconnectMember removes the connection from its room, running host
// failover and room teardown as needed. It must complete before any
// further event for the room is useful, so it runs synchronously in the
// connection's read goroutine.
func (s service) DisconnectMember(ctx context.Context, connId string) (DisconnectMemberResponse, error) {
	if _, err := s.connRepo.RemoveByConnId(connId); err != nil {
		s.logger.DebugContext(ctx, "connection was not registered", "conn_id", connId)
	}

	result, err := s.roomRepo.RemoveMember(connId)
	if err != nil {
		return DisconnectMemberResponse{}, err
	}

	if err := s.mirror.DeleteMember(ctx, connId); err != nil {
		s.logger.WarnContext(ctx, "failed to mirror member removal", "room_code", result.Code, "error", err)
	}

	resp := DisconnectMemberResponse{
		Code:          result.Code,
		Username:      result.Username,
		WasHost:       result.WasHost,
		IsRoomDeleted: result.IsRoomDeleted,
	}

	if result.IsRoomDeleted {
		if err := s.mirror.DeleteRoom(ctx, result.Code); err != nil {
			s.logger.WarnContext(ctx, "failed to mirror room teardown", "room_code", result.Code, "error", err)
		}
		if err := s.snapshots.Delete(ctx, result.Code); err != nil {
			s.logger.WarnContext(ctx, "failed to delete room snapshot", "room_code", result.Code, "error", err)
		}

		return resp, nil
	}

	if result.NewHostId != "" {
		if err := s.mirror.SetHost(ctx, &mirror.SetHostParams{
			RoomCode: result.Code,
			ConnId:   result.NewHostId,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to mirror host failover", "room_code", result.Code, "error", err)
		}

		promotedConn, err := s.connRepo.GetConn(result.NewHostId)
		if err != nil {
			s.logger.InfoContext(ctx, "promoted host has no live connection", "conn_id", result.NewHostId)
		} else {
			resp.PromotedConn = promotedConn
		}
	}

	s.cacheSnapshot(ctx, result.Code)

	resp.Members = toMembers(result.Members)
	resp.Conns = s.getConnsByIds(ctx, result.MemberIds, "")
	return resp, nil
}

type ConnectMemberParams struct {
	Conn   *websocket.Conn
	ConnId string
}

func (s service) ConnectMember(ctx context.Context, params *ConnectMemberParams) error {
	if err := s.connRepo.Add(params.Conn, params.ConnId); err != nil {
		s.logger.InfoContext(ctx, "failed to register connection", "error", err)
		return err
	}

	return nil
}
