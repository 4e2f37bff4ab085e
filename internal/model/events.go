package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Directory events
	EventRoomListChanged EventType = "room_list_changed"
	EventRoomClosed      EventType = "room_closed"

	// Room events
	EventRoomStateChanged EventType = "room_state_changed"
	EventTurnChanged      EventType = "turn_changed"
	EventTurnAction       EventType = "turn_action"
	EventLedgerUpdated    EventType = "ledger_updated"
	EventGameFinished     EventType = "game_finished"
)

// Event is an outbound notification produced by the core
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RoomID    RoomID    `json:"room_id,omitempty"` // Empty for directory-wide events
	PlayerID  PlayerID  `json:"player_id,omitempty"`
	Payload   any       `json:"payload,omitempty"` // Type-specific data
}

// RoomStatePayload describes membership and phase after a change
type RoomStatePayload struct {
	Reason  string        `json:"reason"` // joined, left, ready, started, finished
	Phase   RoomPhase     `json:"phase"`
	Members []MemberState `json:"members"`
}

// MemberState is the public view of a member
type MemberState struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	IsReady     bool     `json:"is_ready"`
	IsCreator   bool     `json:"is_creator"`
}

// TurnChangedPayload contains data for turn changed events
type TurnChangedPayload struct {
	CurrentIndex    int       `json:"current_index"`
	CurrentPlayerID PlayerID  `json:"current_player_id"`
	TurnDeadline    time.Time `json:"turn_deadline"`
	Forced          bool      `json:"forced"` // true when the deadline elapsed
}

// TurnActionPayload contains data for turn action events
type TurnActionPayload struct {
	PlayerID PlayerID `json:"player_id"`
	Roll     int      `json:"roll"`
}

// LedgerUpdatedPayload carries the balance and history delta of each affected member
type LedgerUpdatedPayload struct {
	Changes []BalanceChange `json:"changes"`
}

// BalanceChange is one member's new balance and appended entries
type BalanceChange struct {
	PlayerID PlayerID      `json:"player_id"`
	Balance  int64         `json:"balance"`
	Entries  []LedgerEntry `json:"entries"`
}

// GameFinishedPayload contains the final ranking
type GameFinishedPayload struct {
	Ranking []Standing `json:"ranking"`
}

// MemberStates projects the room's members for notifications
func (r *Room) MemberStates() []MemberState {
	states := make([]MemberState, 0, len(r.Members))
	for _, m := range r.Members {
		states = append(states, MemberState{
			PlayerID:    m.ID,
			DisplayName: m.DisplayName,
			IsReady:     m.IsReady,
			IsCreator:   m.ID == r.CreatorID,
		})
	}
	return states
}
