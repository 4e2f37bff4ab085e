package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room. Zero numeric
// values take the server defaults.
type CreateRoomRequest struct {
	Name                string `json:"name"`
	Password            string `json:"password,omitempty"`
	MaxPlayers          int    `json:"max_players,omitempty"`
	TurnDurationSeconds int    `json:"turn_duration_seconds,omitempty"`
	GameDurationSeconds int    `json:"game_duration_seconds,omitempty"`
	StartingBalance     int64  `json:"starting_balance,omitempty"`
	ManualStart         bool   `json:"manual_start,omitempty"`
	WinPassiveIncome    int64  `json:"win_passive_income,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Password string `json:"password,omitempty"`
}

// ReadyRequest is the request body for toggling readiness; omitted means ready
type ReadyRequest struct {
	Ready *bool `json:"ready,omitempty"`
}

// TransferRequest is the request body for paying another player
type TransferRequest struct {
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

// AmountRequest is the request body for credit and repayment
type AmountRequest struct {
	Amount int64 `json:"amount"`
}
