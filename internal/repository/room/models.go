package room

type Member struct {
	Username string
	IsHost   bool
}

type QueueItem struct {
	VideoId  string
	Title    string
	Position int
}

// Player is the room's shared playback clock.
type Player struct {
	VideoId        string
	CurrentTime    float64
	IsPlaying      bool
	BackgroundPlay bool
}

// RoomState is a point-in-time copy of a room, safe to use outside the
// store's lock.
type RoomState struct {
	Code      string
	HostId    string
	Player    Player
	Members   []Member
	MemberIds []string
	Queue     []QueueItem
}
