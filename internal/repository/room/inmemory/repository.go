package inmemory

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/syncstream/server/internal/repository/room"
)

const roomCodeLength = 6

type iGenerator interface {
	GenerateRandomString(length int) string
}

type roomState struct {
	code        string
	hostId      string
	player      room.Player
	queue       []room.QueueItem
	members     map[string]*room.Member
	memberOrder []string
}

// repo is the authoritative room table. A single mutex serializes every
// mutation so host checks, queue renumbering and host failover are atomic
// with respect to each other.
type repo struct {
	mu        sync.RWMutex
	rooms     map[string]*roomState
	connIndex map[string]string
	generator iGenerator
	logger    *slog.Logger
}

func NewRepo(generator iGenerator, logger *slog.Logger) *repo {
	return &repo{
		rooms:     make(map[string]*roomState),
		connIndex: make(map[string]string),
		generator: generator,
		logger:    logger,
	}
}

func (r *roomState) isHost(connId string) bool {
	return r.hostId == connId
}

func (r *roomState) membersList() []room.Member {
	members := make([]room.Member, 0, len(r.memberOrder))
	for _, connId := range r.memberOrder {
		members = append(members, *r.members[connId])
	}

	return members
}

func (r *roomState) memberIds() []string {
	return slices.Clone(r.memberOrder)
}

func (r *roomState) queueCopy() []room.QueueItem {
	return slices.Clone(r.queue)
}

// hostRoom resolves the sender's room and verifies host authority. Callers
// must hold the lock.
func (r *repo) hostRoom(senderId string) (*roomState, error) {
	code, ok := r.connIndex[senderId]
	if !ok {
		return nil, room.ErrMemberNotFound
	}

	rm := r.rooms[code]
	if !rm.isHost(senderId) {
		return nil, room.ErrPermissionDenied
	}

	return rm, nil
}

func (r *repo) CreateRoom(params *room.CreateRoomParams) (room.CreateRoomResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connIndex[params.ConnId]; ok {
		return room.CreateRoomResult{}, room.ErrAlreadyInRoom
	}

	var code string
	for {
		code = r.generator.GenerateRandomString(roomCodeLength)
		if _, taken := r.rooms[code]; !taken {
			break
		}
	}

	rm := &roomState{
		code:        code,
		hostId:      params.ConnId,
		queue:       []room.QueueItem{},
		members:     map[string]*room.Member{params.ConnId: {Username: params.Username, IsHost: true}},
		memberOrder: []string{params.ConnId},
	}
	r.rooms[code] = rm
	r.connIndex[params.ConnId] = code

	r.logger.Debug("room created", "code", code, "host_id", params.ConnId)
	return room.CreateRoomResult{
		Code:    code,
		Members: rm.membersList(),
	}, nil
}

func (r *repo) AddMember(params *room.AddMemberParams) (room.AddMemberResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connIndex[params.ConnId]; ok {
		return room.AddMemberResult{}, room.ErrAlreadyInRoom
	}

	rm, ok := r.rooms[params.Code]
	if !ok {
		return room.AddMemberResult{}, room.ErrRoomNotFound
	}

	rm.members[params.ConnId] = &room.Member{Username: params.Username}
	rm.memberOrder = append(rm.memberOrder, params.ConnId)
	r.connIndex[params.ConnId] = params.Code

	return room.AddMemberResult{
		Player:    rm.player,
		Queue:     rm.queueCopy(),
		Members:   rm.membersList(),
		MemberIds: rm.memberIds(),
	}, nil
}

// RemoveMember removes the connection from whichever room it belongs to.
// If the departing member held host authority and members remain, the
// first member in insertion order is promoted before the lock is released,
// so no other operation can observe a hostless room. The room is destroyed
// the instant its last member leaves.
func (r *repo) RemoveMember(connId string) (room.RemoveMemberResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.connIndex[connId]
	if !ok {
		return room.RemoveMemberResult{}, room.ErrMemberNotFound
	}

	rm := r.rooms[code]
	member := rm.members[connId]
	wasHost := rm.isHost(connId)

	delete(rm.members, connId)
	rm.memberOrder = slices.DeleteFunc(rm.memberOrder, func(id string) bool { return id == connId })
	delete(r.connIndex, connId)

	result := room.RemoveMemberResult{
		Code:     code,
		Username: member.Username,
		WasHost:  wasHost,
	}

	if len(rm.memberOrder) == 0 {
		delete(r.rooms, code)
		result.IsRoomDeleted = true
		r.logger.Debug("room deleted", "code", code)
		return result, nil
	}

	if wasHost {
		newHostId := rm.memberOrder[0]
		rm.hostId = newHostId
		rm.members[newHostId].IsHost = true
		result.NewHostId = newHostId
		r.logger.Debug("host promoted", "code", code, "new_host_id", newHostId)
	}

	result.Members = rm.membersList()
	result.MemberIds = rm.memberIds()
	return result, nil
}

func (r *repo) GetMemberRoom(connId string) (room.MemberRoomResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.connIndex[connId]
	if !ok {
		return room.MemberRoomResult{}, room.ErrMemberNotFound
	}

	rm := r.rooms[code]
	return room.MemberRoomResult{
		Code:      code,
		Username:  rm.members[connId].Username,
		IsHost:    rm.isHost(connId),
		MemberIds: rm.memberIds(),
	}, nil
}

func (r *repo) GetRoom(code string) (room.RoomState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[code]
	if !ok {
		return room.RoomState{}, room.ErrRoomNotFound
	}

	return room.RoomState{
		Code:      rm.code,
		HostId:    rm.hostId,
		Player:    rm.player,
		Members:   rm.membersList(),
		MemberIds: rm.memberIds(),
		Queue:     rm.queueCopy(),
	}, nil
}

func (r *repo) SetVideo(params *room.SetVideoParams) (room.PlayerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(params.SenderId)
	if err != nil {
		return room.PlayerResult{}, err
	}

	rm.player.VideoId = params.VideoId
	rm.player.CurrentTime = max(params.CurrentTime, 0)
	rm.player.IsPlaying = false

	return room.PlayerResult{Code: rm.code, Player: rm.player, MemberIds: rm.memberIds()}, nil
}

func (r *repo) SetPlaying(params *room.SetPlayingParams) (room.PlayerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(params.SenderId)
	if err != nil {
		return room.PlayerResult{}, err
	}

	rm.player.CurrentTime = max(params.CurrentTime, 0)
	rm.player.IsPlaying = params.IsPlaying

	return room.PlayerResult{Code: rm.code, Player: rm.player, MemberIds: rm.memberIds()}, nil
}

// UpdateCurrentTime advances the playback clock without touching the
// play/pause state. Used by the host heartbeat.
func (r *repo) UpdateCurrentTime(params *room.UpdateCurrentTimeParams) (room.PlayerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(params.SenderId)
	if err != nil {
		return room.PlayerResult{}, err
	}

	rm.player.CurrentTime = max(params.CurrentTime, 0)

	return room.PlayerResult{Code: rm.code, Player: rm.player, MemberIds: rm.memberIds()}, nil
}

func (r *repo) SetBackgroundPlay(params *room.SetBackgroundPlayParams) (room.PlayerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(params.SenderId)
	if err != nil {
		return room.PlayerResult{}, err
	}

	rm.player.BackgroundPlay = params.Enabled

	return room.PlayerResult{Code: rm.code, Player: rm.player, MemberIds: rm.memberIds()}, nil
}

func (r *repo) AppendQueueItem(params *room.AppendQueueItemParams) (room.QueueResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(params.SenderId)
	if err != nil {
		return room.QueueResult{}, err
	}

	rm.queue = append(rm.queue, room.QueueItem{
		VideoId:  params.VideoId,
		Title:    params.Title,
		Position: len(rm.queue),
	})

	return room.QueueResult{Code: rm.code, Queue: rm.queueCopy(), MemberIds: rm.memberIds()}, nil
}

func (r *repo) RemoveQueueItem(params *room.RemoveQueueItemParams) (room.QueueResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(params.SenderId)
	if err != nil {
		return room.QueueResult{}, err
	}

	rm.queue = slices.DeleteFunc(rm.queue, func(item room.QueueItem) bool {
		return item.Position == params.Position
	})
	reindex(rm.queue)

	return room.QueueResult{Code: rm.code, Queue: rm.queueCopy(), MemberIds: rm.memberIds()}, nil
}

func (r *repo) PopNextVideo(senderId string) (room.PopNextVideoResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.hostRoom(senderId)
	if err != nil {
		return room.PopNextVideoResult{}, err
	}

	if len(rm.queue) == 0 {
		return room.PopNextVideoResult{}, room.ErrEmptyQueue
	}

	next := rm.queue[0]
	rm.queue = rm.queue[1:]
	reindex(rm.queue)

	rm.player.VideoId = next.VideoId
	rm.player.CurrentTime = 0
	rm.player.IsPlaying = true

	return room.PopNextVideoResult{
		Code:      rm.code,
		Player:    rm.player,
		Queue:     rm.queueCopy(),
		MemberIds: rm.memberIds(),
	}, nil
}

// reindex restores the dense zero-based position invariant after a queue
// mutation.
func reindex(queue []room.QueueItem) {
	for i := range queue {
		queue[i].Position = i
	}
}
