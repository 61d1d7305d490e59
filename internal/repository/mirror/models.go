package mirror

import "time"

// Rows mirrored to the relational store. The store is a best-effort copy
// for crash diagnostics and history; the in-memory room table stays
// authoritative while the process is alive.

type Room struct {
	Code           string `gorm:"primaryKey;size:6"`
	HostConnId     string
	VideoId        string
	CurrentTime    float64
	IsPlaying      bool
	BackgroundPlay bool
	CreatedAt      time.Time
}

type RoomMember struct {
	ConnId   string `gorm:"primaryKey"`
	RoomCode string `gorm:"index"`
	Username string
	IsHost   bool
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

type QueueItem struct {
	Id       uint   `gorm:"primaryKey"`
	RoomCode string `gorm:"index"`
	VideoId  string
	Title    string
	Position int
}

// Models lists every mirrored table for migration.
func Models() []any {
	return []any{&Room{}, &RoomMember{}, &QueueItem{}}
}
