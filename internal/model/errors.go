package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound   = errors.New("player not found")
	ErrDisplayNameTaken = errors.New("display name already taken in room")

	// Room errors
	ErrInvalidConfig      = errors.New("invalid room config")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrRoomAlreadyStarted = errors.New("room has already started")
	ErrWrongPassword      = errors.New("wrong room password")
	ErrNotCreator         = errors.New("player is not the room creator")
	ErrNotAllReady        = errors.New("not every player is ready")

	// Turn errors
	ErrNotYourTurn    = errors.New("not this player's turn")
	ErrGameNotStarted = errors.New("game has not started")
	ErrGameFinished   = errors.New("game is finished")

	// Ledger errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrInvalidOperation    = errors.New("invalid ledger operation")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
