package mirror

type InsertRoomParams struct {
	Code       string
	HostConnId string
	Username   string
}

type InsertMemberParams struct {
	ConnId   string
	RoomCode string
	Username string
	IsHost   bool
}

type SetHostParams struct {
	RoomCode string
	ConnId   string
}

type UpdatePlaybackParams struct {
	RoomCode       string
	VideoId        string
	CurrentTime    float64
	IsPlaying      bool
	BackgroundPlay bool
}

type QueueEntry struct {
	VideoId  string
	Title    string
	Position int
}
