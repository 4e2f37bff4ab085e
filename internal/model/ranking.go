package model

// Standing is one line of a finished room's ranking
type Standing struct {
	PlayerID      PlayerID `json:"player_id"`
	DisplayName   string   `json:"display_name"`
	Place         int      `json:"place"` // 1-based
	Points        int      `json:"points"`
	Won           bool     `json:"won"`
	PassiveIncome int64    `json:"passive_income"`
	Balance       int64    `json:"balance"`
}
