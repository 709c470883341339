package models

// Player is the room-membership row: which user sits in which game. The live
// in-match state (money, position, jail) is owned by platform/game.
type Player struct {
	User_id  string
	Game_id  string
	Username string
	Avatar   string
}

type PlayerDto struct {
	Username   string   `json:"username"`
	Avatar     string   `json:"avatar"`
	Balance    int      `json:"balance"`
	Pos        int      `json:"pos"`
	Properties []string `json:"properties"`
	Jail       bool     `json:"jail"`
	Active     bool     `json:"active"`
}
