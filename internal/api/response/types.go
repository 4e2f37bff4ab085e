package response

import (
	"time"

	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []model.RoomSummary `json:"rooms"`
}

// RoomConfig represents room settings
type RoomConfig struct {
	MaxPlayers          int   `json:"max_players"`
	TurnDurationSeconds int   `json:"turn_duration_seconds"`
	GameDurationSeconds int   `json:"game_duration_seconds"`
	StartingBalance     int64 `json:"starting_balance"`
	ManualStart         bool  `json:"manual_start"`
	WinPassiveIncome    int64 `json:"win_passive_income"`
}

// Member is the public view of a room member. Ledger history is only
// served to its owner.
type Member struct {
	PlayerID      string    `json:"player_id"`
	DisplayName   string    `json:"display_name"`
	IsReady       bool      `json:"is_ready"`
	IsCreator     bool      `json:"is_creator"`
	Balance       int64     `json:"balance"`
	PassiveIncome int64     `json:"passive_income"`
	Credit        int64     `json:"credit"`
	HasWon        bool      `json:"has_won"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Room is the full view of a room
type Room struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Phase           string           `json:"phase"`
	HasPassword     bool             `json:"has_password"`
	CreatorID       string           `json:"creator_id,omitempty"`
	Config          RoomConfig       `json:"config"`
	Members         []Member         `json:"members"`
	TurnOrder       []string         `json:"turn_order,omitempty"`
	CurrentIndex    int              `json:"current_index"`
	CurrentPlayerID string           `json:"current_player_id,omitempty"`
	TurnDeadline    *time.Time       `json:"turn_deadline,omitempty"`
	GameDeadline    *time.Time       `json:"game_deadline,omitempty"`
	LastRoll        int              `json:"last_roll,omitempty"`
	Ranking         []model.Standing `json:"ranking,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	members := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, Member{
			PlayerID:      string(m.ID),
			DisplayName:   m.DisplayName,
			IsReady:       m.IsReady,
			IsCreator:     m.ID == r.CreatorID,
			Balance:       m.Balance,
			PassiveIncome: m.PassiveIncome,
			Credit:        m.Credit,
			HasWon:        m.HasWon,
			JoinedAt:      m.JoinedAt,
		})
	}

	var order []string
	for _, id := range r.TurnOrder {
		order = append(order, string(id))
	}

	return Room{
		ID:          string(r.ID),
		Name:        r.Name,
		Phase:       string(r.Phase),
		HasPassword: r.HasPassword(),
		CreatorID:   string(r.CreatorID),
		Config: RoomConfig{
			MaxPlayers:          r.Config.MaxPlayers,
			TurnDurationSeconds: r.Config.TurnDurationSeconds,
			GameDurationSeconds: r.Config.GameDurationSeconds,
			StartingBalance:     r.Config.StartingBalance,
			ManualStart:         r.Config.ManualStart,
			WinPassiveIncome:    r.Config.WinPassiveIncome,
		},
		Members:         members,
		TurnOrder:       order,
		CurrentIndex:    r.CurrentIndex,
		CurrentPlayerID: string(r.CurrentPlayerID()),
		TurnDeadline:    optionalTime(r.TurnDeadline),
		GameDeadline:    optionalTime(r.GameDeadline),
		LastRoll:        r.LastRoll,
		Ranking:         r.Ranking,
		CreatedAt:       r.CreatedAt,
	}
}

// Account is a member's own balance sheet
type Account struct {
	Balance       int64               `json:"balance"`
	Credit        int64               `json:"credit"`
	PassiveIncome int64               `json:"passive_income"`
	History       []model.LedgerEntry `json:"history"`
}

// AccountFromMember converts the caller's member record
func AccountFromMember(m *model.Member) Account {
	history := m.History
	if history == nil {
		history = []model.LedgerEntry{}
	}
	return Account{
		Balance:       m.Balance,
		Credit:        m.Credit,
		PassiveIncome: m.PassiveIncome,
		History:       history,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
