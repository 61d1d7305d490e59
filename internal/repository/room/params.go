package room

type CreateRoomParams struct {
	ConnId   string
	Username string
}

type CreateRoomResult struct {
	Code    string
	Members []Member
}

type AddMemberParams struct {
	Code     string
	ConnId   string
	Username string
}

type AddMemberResult struct {
	Player    Player
	Queue     []QueueItem
	Members   []Member
	MemberIds []string
}

type RemoveMemberResult struct {
	Code          string
	Username      string
	WasHost       bool
	NewHostId     string
	Members       []Member
	MemberIds     []string
	IsRoomDeleted bool
}

// MemberRoomResult resolves a connection to its room for unprivileged
// operations (chat, game relay).
type MemberRoomResult struct {
	Code      string
	Username  string
	IsHost    bool
	MemberIds []string
}

type SetVideoParams struct {
	SenderId    string
	VideoId     string
	CurrentTime float64
}

type SetPlayingParams struct {
	SenderId    string
	CurrentTime float64
	IsPlaying   bool
}

type UpdateCurrentTimeParams struct {
	SenderId    string
	CurrentTime float64
}

type SetBackgroundPlayParams struct {
	SenderId string
	Enabled  bool
}

// PlayerResult is returned by every playback-clock mutation.
type PlayerResult struct {
	Code      string
	Player    Player
	MemberIds []string
}

type AppendQueueItemParams struct {
	SenderId string
	VideoId  string
	Title    string
}

type RemoveQueueItemParams struct {
	SenderId string
	Position int
}

type QueueResult struct {
	Code      string
	Queue     []QueueItem
	MemberIds []string
}

type PopNextVideoResult struct {
	Code      string
	Player    Player
	Queue     []QueueItem
	MemberIds []string
}
