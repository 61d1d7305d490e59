package room

// Wire-facing models. JSON keys match the payload format the web client
// speaks; member entries use snake_case, everything else camelCase.

type Member struct {
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
}

type QueueItem struct {
	VideoId  string `json:"videoId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type PlayerState struct {
	VideoId        string  `json:"videoId"`
	CurrentTime    float64 `json:"currentTime"`
	IsPlaying      bool    `json:"isPlaying"`
	BackgroundPlay bool    `json:"backgroundPlay"`
}
