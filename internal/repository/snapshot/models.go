package snapshot

// RoomSnapshot is the JSON document cached per room for out-of-process
// diagnostics. Advisory only: never consulted for authority decisions.
type RoomSnapshot struct {
	Code           string          `json:"code"`
	HostConnId     string          `json:"host_conn_id"`
	VideoId        string          `json:"video_id"`
	CurrentTime    float64         `json:"current_time"`
	IsPlaying      bool            `json:"is_playing"`
	BackgroundPlay bool            `json:"background_play"`
	Members        []MemberEntry   `json:"members"`
	Queue          []QueueSnapshot `json:"queue"`
	UpdatedAt      int64           `json:"updated_at"`
}

type MemberEntry struct {
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
}

type QueueSnapshot struct {
	VideoId  string `json:"video_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}
