package room

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmptyQueue       = errors.New("queue is empty")
	ErrAlreadyInRoom    = errors.New("connection is already in a room")
)
