package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents an authenticated identity
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member is a player's record inside a room: identity, money and readiness.
// Turn-order position is implicit in Room.TurnOrder.
type Member struct {
	ID            PlayerID
	DisplayName   string
	Balance       int64
	IsReady       bool
	PassiveIncome int64
	Credit        int64 // outstanding credit taken from the bank
	HasWon        bool
	JoinedAt      time.Time
	History       []LedgerEntry
}

// Clone returns a deep copy of the member
func (m Member) Clone() Member {
	c := m
	if m.History != nil {
		c.History = make([]LedgerEntry, len(m.History))
		copy(c.History, m.History)
	}
	return c
}
