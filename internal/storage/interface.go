package storage

import (
	"context"

	"github.com/mcoot/energyofmoney/internal/model"
)

// Storage defines the interface for data persistence.
//
// Room operations form the persistence collaborator used by the room
// directory. Implementations return copies: mutating a loaded room has no
// effect until it is saved. Transport failures are reported wrapped in
// model.ErrStorageUnavailable.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	LoadRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListActiveRooms(ctx context.Context) ([]*model.Room, error)
}
