// Package storagetest holds the behavior every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/storage"
)

// ContractSuite runs against any storage.Storage. Embed it in a backend
// suite and assign Storage in SetupTest.
type ContractSuite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// SampleRoom builds a playing room with two members and some history
func SampleRoom(id model.RoomID, createdAt time.Time) *model.Room {
	alice := model.PlayerID("p-alice")
	bob := model.PlayerID("p-bob")
	return &model.Room{
		ID:        id,
		Name:      "Room " + string(id),
		CreatorID: alice,
		Config:    model.DefaultRoomConfig(),
		Phase:     model.PhasePlaying,
		Members: []model.Member{
			{
				ID:          alice,
				DisplayName: "Alice",
				Balance:     2500,
				IsReady:     true,
				JoinedAt:    createdAt,
				History: []model.LedgerEntry{{
					ID:            "e-1",
					TransactionID: "tx-1",
					Kind:          model.OpTransfer,
					Amount:        500,
					From:          &alice,
					To:            &bob,
					Counterparty:  "Bob",
					BalanceAfter:  2500,
					Status:        model.StatusCompleted,
					CreatedAt:     createdAt,
				}},
			},
			{ID: bob, DisplayName: "Bob", Balance: 3500, IsReady: true, JoinedAt: createdAt},
		},
		TurnOrder:    []model.PlayerID{alice, bob},
		CurrentIndex: 1,
		TurnDeadline: createdAt.Add(2 * time.Minute),
		GameDeadline: createdAt.Add(3 * time.Hour),
		CreatedAt:    createdAt,
		StartedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// Player tests

func (s *ContractSuite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", CreatedAt: baseTime}

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
}

func (s *ContractSuite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ContractSuite) TestDeletePlayer() {
	_ = s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "player-1", DisplayName: "Alice"})

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "player-1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registered player tests

func (s *ContractSuite) TestSaveAndGetRegisteredPlayer() {
	_ = s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "player-1", DisplayName: "Alice"})
	rp := &model.RegisteredPlayer{
		PlayerID:     "player-1",
		Username:     "alice",
		PasswordHash: "hash",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	byID, err := s.Storage.GetRegisteredPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	byName, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), byName.PlayerID)
	s.Equal("hash", byName.PasswordHash)
}

func (s *ContractSuite) TestGetRegisteredPlayerByUsernameNotFound() {
	_, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Room tests

func (s *ContractSuite) TestSaveAndLoadRoom() {
	room := SampleRoom("ROOM1", baseTime)
	room.PasswordHash = "$2a$10$hash"

	s.Require().NoError(s.Storage.SaveRoom(s.Ctx, room))

	loaded, err := s.Storage.LoadRoom(s.Ctx, "ROOM1")
	s.Require().NoError(err)
	s.Equal(room.Name, loaded.Name)
	s.Equal(room.Phase, loaded.Phase)
	s.Equal(room.PasswordHash, loaded.PasswordHash)
	s.Equal(room.TurnOrder, loaded.TurnOrder)
	s.Equal(1, loaded.CurrentIndex)
	s.True(room.TurnDeadline.Equal(loaded.TurnDeadline))
	s.Require().Len(loaded.Members, 2)
	s.Equal(int64(2500), loaded.Members[0].Balance)
	s.Require().Len(loaded.Members[0].History, 1)
	entry := loaded.Members[0].History[0]
	s.Equal("tx-1", entry.TransactionID)
	s.Equal(model.StatusCompleted, entry.Status)
	s.Require().NotNil(entry.To)
	s.Equal(model.PlayerID("p-bob"), *entry.To)
}

func (s *ContractSuite) TestLoadRoomNotFound() {
	_, err := s.Storage.LoadRoom(s.Ctx, "MISSING")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ContractSuite) TestLoadedRoomIsACopy() {
	s.Require().NoError(s.Storage.SaveRoom(s.Ctx, SampleRoom("ROOM1", baseTime)))

	loaded, err := s.Storage.LoadRoom(s.Ctx, "ROOM1")
	s.Require().NoError(err)
	loaded.Members[0].Balance = 0
	loaded.Members = loaded.Members[:1]

	again, err := s.Storage.LoadRoom(s.Ctx, "ROOM1")
	s.Require().NoError(err)
	s.Len(again.Members, 2)
	s.Equal(int64(2500), again.Members[0].Balance)
}

func (s *ContractSuite) TestRoomExists() {
	exists, err := s.Storage.RoomExists(s.Ctx, "ROOM1")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.Storage.SaveRoom(s.Ctx, SampleRoom("ROOM1", baseTime))

	exists, err = s.Storage.RoomExists(s.Ctx, "ROOM1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *ContractSuite) TestDeleteRoomIsIdempotent() {
	_ = s.Storage.SaveRoom(s.Ctx, SampleRoom("ROOM1", baseTime))

	s.Require().NoError(s.Storage.DeleteRoom(s.Ctx, "ROOM1"))
	s.Require().NoError(s.Storage.DeleteRoom(s.Ctx, "ROOM1"))

	_, err := s.Storage.LoadRoom(s.Ctx, "ROOM1")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ContractSuite) TestListActiveRoomsOrderedByCreation() {
	_ = s.Storage.SaveRoom(s.Ctx, SampleRoom("LATER", baseTime.Add(time.Minute)))
	_ = s.Storage.SaveRoom(s.Ctx, SampleRoom("FIRST", baseTime))
	_ = s.Storage.SaveRoom(s.Ctx, SampleRoom("GONE", baseTime.Add(2*time.Minute)))
	_ = s.Storage.DeleteRoom(s.Ctx, "GONE")

	rooms, err := s.Storage.ListActiveRooms(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomID("FIRST"), rooms[0].ID)
	s.Equal(model.RoomID("LATER"), rooms[1].ID)
}

func (s *ContractSuite) TestSaveRoomOverwrites() {
	room := SampleRoom("ROOM1", baseTime)
	_ = s.Storage.SaveRoom(s.Ctx, room)

	room.Phase = model.PhaseFinished
	room.Ranking = []model.Standing{{PlayerID: "p-bob", DisplayName: "Bob", Place: 1, Points: 1}}
	s.Require().NoError(s.Storage.SaveRoom(s.Ctx, room))

	loaded, err := s.Storage.LoadRoom(s.Ctx, "ROOM1")
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, loaded.Phase)
	s.Require().Len(loaded.Ranking, 1)
	s.Equal(model.PlayerID("p-bob"), loaded.Ranking[0].PlayerID)
}
