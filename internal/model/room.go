package model

import "time"

// RoomID identifies a room
type RoomID string

// RoomPhase represents the current state of a room
type RoomPhase string

const (
	PhaseWaiting  RoomPhase = "waiting"  // Accepting joins
	PhasePlaying  RoomPhase = "playing"  // Game in progress
	PhaseFinished RoomPhase = "finished" // Terminal, kept until retention expires
)

// Room capacity bounds
const (
	MinPlayers = 2
	MaxPlayers = 10
)

// Upper bounds on room settings
const (
	MaxDurationSeconds = 7 * 24 * 60 * 60
	MaxConfigAmount    = 1_000_000_000_000
)

// RoomConfig holds the settings chosen when a room is created
type RoomConfig struct {
	MaxPlayers          int
	TurnDurationSeconds int
	GameDurationSeconds int
	StartingBalance     int64
	ManualStart         bool  // only the creator's start command begins the game
	WinPassiveIncome    int64 // 0 disables the passive income win condition
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:          4,
		TurnDurationSeconds: 120,
		GameDurationSeconds: 3 * 60 * 60,
		StartingBalance:     3000,
	}
}

// TurnDuration returns the per-turn budget
func (c RoomConfig) TurnDuration() time.Duration {
	return time.Duration(c.TurnDurationSeconds) * time.Second
}

// GameDuration returns the whole-match budget
func (c RoomConfig) GameDuration() time.Duration {
	return time.Duration(c.GameDurationSeconds) * time.Second
}

// Room is one game lobby and match instance
type Room struct {
	ID           RoomID
	Name         string
	PasswordHash string // bcrypt, empty when the room is open
	CreatorID    PlayerID
	Config       RoomConfig
	Members      []Member // join order
	Phase        RoomPhase

	// Set when the game starts
	TurnOrder    []PlayerID
	CurrentIndex int
	TurnDeadline time.Time
	GameDeadline time.Time
	LastRoll     int

	// Set when the game finishes
	Ranking []Standing

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	UpdatedAt  time.Time
}

// HasPassword reports whether joining requires a password
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// GetMember returns the member with the given player ID, or nil if not found
func (r *Room) GetMember(id PlayerID) *Member {
	for i := range r.Members {
		if r.Members[i].ID == id {
			return &r.Members[i]
		}
	}
	return nil
}

// GetMemberByName returns the member with the given display name, or nil if not found
func (r *Room) GetMemberByName(name string) *Member {
	for i := range r.Members {
		if r.Members[i].DisplayName == name {
			return &r.Members[i]
		}
	}
	return nil
}

// IsEmpty reports whether the room has no members
func (r *Room) IsEmpty() bool {
	return len(r.Members) == 0
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	return len(r.Members) >= r.Config.MaxPlayers
}

// AllReady reports whether at least two members are present and all are ready
func (r *Room) AllReady() bool {
	if len(r.Members) < MinPlayers {
		return false
	}
	for _, m := range r.Members {
		if !m.IsReady {
			return false
		}
	}
	return true
}

// CurrentPlayerID returns whose turn it is, or "" outside of play
func (r *Room) CurrentPlayerID() PlayerID {
	if r.Phase != PhasePlaying || len(r.TurnOrder) == 0 {
		return ""
	}
	return r.TurnOrder[r.CurrentIndex%len(r.TurnOrder)]
}

// Summary returns the read-only projection shown in room listings
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		Occupancy:   len(r.Members),
		MaxPlayers:  r.Config.MaxPlayers,
		Phase:       r.Phase,
		HasPassword: r.HasPassword(),
		CreatedAt:   r.CreatedAt,
	}
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	if r.Members != nil {
		c.Members = make([]Member, len(r.Members))
		for i, m := range r.Members {
			c.Members[i] = m.Clone()
		}
	}
	if r.TurnOrder != nil {
		c.TurnOrder = make([]PlayerID, len(r.TurnOrder))
		copy(c.TurnOrder, r.TurnOrder)
	}
	if r.Ranking != nil {
		c.Ranking = make([]Standing, len(r.Ranking))
		copy(c.Ranking, r.Ranking)
	}
	return &c
}

// RoomSummary is a lobby listing entry
type RoomSummary struct {
	ID          RoomID    `json:"id"`
	Name        string    `json:"name"`
	Occupancy   int       `json:"occupancy"`
	MaxPlayers  int       `json:"max_players"`
	Phase       RoomPhase `json:"phase"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}
