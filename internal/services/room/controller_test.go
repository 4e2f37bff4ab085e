package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/energyofmoney/internal/dependencies/mocks"
	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/storage/memory"
	"github.com/mcoot/energyofmoney/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	recorder   *events.Recorder
	controller *Controller
	ctx        context.Context

	alice model.Player
	bob   model.Player
	carol model.Player
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.random = mocks.NewMockRandom()
	s.recorder = events.NewRecorder()

	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	s.controller = NewController(s.storage, s.clock, s.random, s.recorder, testutil.NopLogger(), cfg)
	s.ctx = context.Background()

	s.alice = testutil.Player("Alice")
	s.bob = testutil.Player("Bob")
	s.carol = testutil.Player("Carol")
}

func (s *ControllerSuite) createRoom(cfg model.RoomConfig) *model.Room {
	room, err := s.controller.CreateRoom(s.ctx, CreateRequest{Name: "Test", CreatorID: s.alice.ID, Config: cfg})
	s.Require().NoError(err)
	return room
}

func (s *ControllerSuite) join(id model.RoomID, players ...model.Player) {
	for _, p := range players {
		_, err := s.controller.JoinRoom(s.ctx, id, p, "")
		s.Require().NoError(err)
	}
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoomAppliesDefaults() {
	s.random.QueueString("ABCD2345")

	room := s.createRoom(model.RoomConfig{})

	s.Equal(model.RoomID("ABCD2345"), room.ID)
	s.Equal(model.PhaseWaiting, room.Phase)
	s.Equal(4, room.Config.MaxPlayers)
	s.Equal(120, room.Config.TurnDurationSeconds)
	s.Equal(10800, room.Config.GameDurationSeconds)
	s.Equal(int64(3000), room.Config.StartingBalance)
	s.Empty(room.Members)
	s.False(room.HasPassword())
	s.Len(s.recorder.OfType(model.EventRoomListChanged), 1)
}

func (s *ControllerSuite) TestCreateRoomRetriesTakenCode() {
	s.random.QueueString("TAKEN111", "TAKEN111", "FRESH222")
	first := s.createRoom(model.RoomConfig{})
	second := s.createRoom(model.RoomConfig{})

	s.Equal(model.RoomID("TAKEN111"), first.ID)
	s.Equal(model.RoomID("FRESH222"), second.ID)
}

func (s *ControllerSuite) TestCreateRoomRejectsBadConfig() {
	cases := []model.RoomConfig{
		{MaxPlayers: 1},
		{MaxPlayers: 11},
		{TurnDurationSeconds: -1},
		{GameDurationSeconds: -5},
		{StartingBalance: -1},
		{StartingBalance: model.MaxConfigAmount + 1},
		{WinPassiveIncome: model.MaxConfigAmount + 1},
		{TurnDurationSeconds: model.MaxDurationSeconds + 1},
		{GameDurationSeconds: 10_000_000_000},
	}
	for _, cfg := range cases {
		_, err := s.controller.CreateRoom(s.ctx, CreateRequest{Config: cfg})
		s.ErrorIs(err, model.ErrInvalidConfig, "config %+v", cfg)
	}

	rooms, err := s.controller.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *ControllerSuite) TestCreateRoomHashesPassword() {
	room, err := s.controller.CreateRoom(s.ctx, CreateRequest{Password: "secret"})
	s.Require().NoError(err)

	s.True(room.HasPassword())
	s.NotEqual("secret", room.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte("secret")))
}

// ListRooms / RemoveRoom tests

func (s *ControllerSuite) TestListRoomsReturnsSummaries() {
	first := s.createRoom(model.RoomConfig{MaxPlayers: 2})
	s.clock.Advance(time.Second)
	second, err := s.controller.CreateRoom(s.ctx, CreateRequest{Name: "Locked", Password: "pw"})
	s.Require().NoError(err)
	s.join(first.ID, s.alice)

	summaries, err := s.controller.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	s.Equal(first.ID, summaries[0].ID)
	s.Equal(1, summaries[0].Occupancy)
	s.Equal(2, summaries[0].MaxPlayers)
	s.False(summaries[0].HasPassword)

	s.Equal(second.ID, summaries[1].ID)
	s.Equal("Locked", summaries[1].Name)
	s.True(summaries[1].HasPassword)
	s.Equal(model.PhaseWaiting, summaries[1].Phase)
}

func (s *ControllerSuite) TestRemoveRoomIsIdempotent() {
	room := s.createRoom(model.RoomConfig{})
	s.recorder.Reset()

	s.Require().NoError(s.controller.RemoveRoom(s.ctx, room.ID))
	s.Require().NoError(s.controller.RemoveRoom(s.ctx, room.ID))
	s.Require().NoError(s.controller.RemoveRoom(s.ctx, "NEVER"))

	_, err := s.controller.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Len(s.recorder.OfType(model.EventRoomClosed), 1)
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoomAddsMemberWithStartingBalance() {
	room := s.createRoom(model.RoomConfig{StartingBalance: 1234})

	updated, err := s.controller.JoinRoom(s.ctx, room.ID, s.alice, "")
	s.Require().NoError(err)

	s.Require().Len(updated.Members, 1)
	s.Equal(s.alice.ID, updated.Members[0].ID)
	s.Equal(int64(1234), updated.Members[0].Balance)
	s.False(updated.Members[0].IsReady)
}

func (s *ControllerSuite) TestJoinRoomUnknownRoom() {
	_, err := s.controller.JoinRoom(s.ctx, "MISSING", s.alice, "")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinRoomCapacity() {
	room := s.createRoom(model.RoomConfig{MaxPlayers: 3})

	s.join(room.ID, s.alice, s.bob)
	// capacity-1 members present: one more join succeeds
	_, err := s.controller.JoinRoom(s.ctx, room.ID, s.carol, "")
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, testutil.Player("Dave"), "")
	s.ErrorIs(err, model.ErrRoomFull)

	loaded, _ := s.controller.GetRoom(s.ctx, room.ID)
	s.Len(loaded.Members, 3)
}

func (s *ControllerSuite) TestJoinRoomWrongPassword() {
	room, err := s.controller.CreateRoom(s.ctx, CreateRequest{Password: "secret"})
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, s.alice, "guess")
	s.ErrorIs(err, model.ErrWrongPassword)

	loaded, _ := s.controller.GetRoom(s.ctx, room.ID)
	s.Empty(loaded.Members)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, s.alice, "secret")
	s.NoError(err)
}

func (s *ControllerSuite) TestJoinFullRoomChecksPasswordFirst() {
	room, err := s.controller.CreateRoom(s.ctx, CreateRequest{Password: "secret", Config: model.RoomConfig{MaxPlayers: 2}})
	s.Require().NoError(err)
	for _, p := range []model.Player{s.alice, s.bob} {
		_, err := s.controller.JoinRoom(s.ctx, room.ID, p, "secret")
		s.Require().NoError(err)
	}

	_, err = s.controller.JoinRoom(s.ctx, room.ID, s.carol, "nope")
	s.ErrorIs(err, model.ErrWrongPassword)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, s.carol, "secret")
	s.ErrorIs(err, model.ErrRoomFull)
}

func (s *ControllerSuite) TestMaximumDurationsKeepDeadlinesAhead() {
	room := s.createRoom(model.RoomConfig{
		MaxPlayers:          2,
		TurnDurationSeconds: model.MaxDurationSeconds,
		GameDurationSeconds: model.MaxDurationSeconds,
	})
	s.join(room.ID, s.alice, s.bob)
	_, err := s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	s.Require().NoError(err)
	updated, err := s.controller.SetReady(s.ctx, room.ID, s.bob.ID, true)
	s.Require().NoError(err)

	s.Equal(model.PhasePlaying, updated.Phase)
	s.True(updated.GameDeadline.After(testutil.Epoch))
	s.True(updated.TurnDeadline.After(testutil.Epoch))
}

func (s *ControllerSuite) TestRejoinUpdatesExistingRecord() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice)

	renamed := s.alice
	renamed.DisplayName = "Alicia"
	updated, err := s.controller.JoinRoom(s.ctx, room.ID, renamed, "")
	s.Require().NoError(err)

	s.Require().Len(updated.Members, 1)
	s.Equal("Alicia", updated.Members[0].DisplayName)
}

func (s *ControllerSuite) TestJoinRoomRejectsTakenDisplayName() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice)

	impostor := model.Player{ID: "p-other", DisplayName: "Alice"}
	_, err := s.controller.JoinRoom(s.ctx, room.ID, impostor, "")
	s.ErrorIs(err, model.ErrDisplayNameTaken)
}

func (s *ControllerSuite) TestConcurrentJoinsNeverExceedCapacity() {
	room := s.createRoom(model.RoomConfig{MaxPlayers: 5})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := model.Player{ID: model.PlayerID(string(rune('a' + i))), DisplayName: string(rune('A' + i))}
			_, _ = s.controller.JoinRoom(s.ctx, room.ID, p, "")
		}(i)
	}
	wg.Wait()

	loaded, err := s.controller.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Len(loaded.Members, 5)
	s.Equal(0, s.controller.locks.size())
}

// Start tests

func (s *ControllerSuite) TestAllReadyStartsGame() {
	room := s.createRoom(model.RoomConfig{MaxPlayers: 2, TurnDurationSeconds: 30, GameDurationSeconds: 600})
	s.join(room.ID, s.alice, s.bob)

	_, err := s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	s.Require().NoError(err)
	updated, err := s.controller.SetReady(s.ctx, room.ID, s.bob.ID, true)
	s.Require().NoError(err)

	s.Equal(model.PhasePlaying, updated.Phase)
	s.Equal([]model.PlayerID{s.alice.ID, s.bob.ID}, updated.TurnOrder)
	s.Equal(0, updated.CurrentIndex)
	s.Equal(s.alice.ID, updated.CurrentPlayerID())
	s.Equal(testutil.Epoch.Add(30*time.Second), updated.TurnDeadline)
	s.Equal(testutil.Epoch.Add(600*time.Second), updated.GameDeadline)
	s.Len(s.recorder.OfType(model.EventTurnChanged), 1)
}

func (s *ControllerSuite) TestSingleReadyPlayerDoesNotStart() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice)

	updated, err := s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, updated.Phase)
}

func (s *ControllerSuite) TestJoinAfterStartRejected() {
	room := s.startedRoom(s.alice, s.bob)

	_, err := s.controller.JoinRoom(s.ctx, room.ID, s.carol, "")
	s.ErrorIs(err, model.ErrRoomAlreadyStarted)

	_, err = s.controller.SetReady(s.ctx, room.ID, s.alice.ID, false)
	s.ErrorIs(err, model.ErrRoomAlreadyStarted)
}

func (s *ControllerSuite) TestManualStartRequiresCreatorAndReady() {
	room := s.createRoom(model.RoomConfig{ManualStart: true})
	s.join(room.ID, s.alice, s.bob)

	_, err := s.controller.StartGame(s.ctx, room.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrNotAllReady)

	_, _ = s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	updated, err := s.controller.SetReady(s.ctx, room.ID, s.bob.ID, true)
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, updated.Phase)

	_, err = s.controller.StartGame(s.ctx, room.ID, s.bob.ID)
	s.ErrorIs(err, model.ErrNotCreator)

	_, err = s.controller.StartGame(s.ctx, room.ID, s.carol.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	started, err := s.controller.StartGame(s.ctx, room.ID, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(model.PhasePlaying, started.Phase)

	_, err = s.controller.StartGame(s.ctx, room.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrRoomAlreadyStarted)
}

func (s *ControllerSuite) startedRoom(players ...model.Player) *model.Room {
	room := s.createRoom(model.RoomConfig{MaxPlayers: len(players), TurnDurationSeconds: 30, GameDurationSeconds: 600})
	s.join(room.ID, players...)
	var updated *model.Room
	for _, p := range players {
		var err error
		updated, err = s.controller.SetReady(s.ctx, room.ID, p.ID, true)
		s.Require().NoError(err)
	}
	s.Require().Equal(model.PhasePlaying, updated.Phase)
	return updated
}

// LeaveRoom tests

func (s *ControllerSuite) TestLeaveRoomTransfersCreator() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice, s.bob)

	updated, err := s.controller.LeaveRoom(s.ctx, room.ID, s.alice.ID)
	s.Require().NoError(err)

	s.Equal(s.bob.ID, updated.CreatorID)
	s.Len(updated.Members, 1)
}

func (s *ControllerSuite) TestUnreadyMemberLeavingStartsGame() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice, s.bob, s.carol)
	_, err := s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	s.Require().NoError(err)
	_, err = s.controller.SetReady(s.ctx, room.ID, s.bob.ID, true)
	s.Require().NoError(err)

	updated, err := s.controller.LeaveRoom(s.ctx, room.ID, s.carol.ID)
	s.Require().NoError(err)

	s.Equal(model.PhasePlaying, updated.Phase)
	s.Equal([]model.PlayerID{s.alice.ID, s.bob.ID}, updated.TurnOrder)
	s.Len(s.recorder.OfType(model.EventTurnChanged), 1)
}

func (s *ControllerSuite) TestLeavingManualStartRoomWaitsForCreator() {
	room := s.createRoom(model.RoomConfig{ManualStart: true})
	s.join(room.ID, s.alice, s.bob, s.carol)
	_, _ = s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	_, _ = s.controller.SetReady(s.ctx, room.ID, s.bob.ID, true)

	updated, err := s.controller.LeaveRoom(s.ctx, room.ID, s.carol.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, updated.Phase)
}

func (s *ControllerSuite) TestLastMemberLeavingDeletesRoom() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice)

	_, err := s.controller.LeaveRoom(s.ctx, room.ID, s.alice.ID)
	s.Require().NoError(err)

	_, err = s.controller.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Len(s.recorder.OfType(model.EventRoomClosed), 1)
}

func (s *ControllerSuite) TestLeaveUnknownMember() {
	room := s.createRoom(model.RoomConfig{})
	_, err := s.controller.LeaveRoom(s.ctx, room.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestCurrentPlayerLeavingPassesTurn() {
	room := s.startedRoom(s.alice, s.bob, s.carol)
	s.clock.Advance(10 * time.Second)

	updated, err := s.controller.LeaveRoom(s.ctx, room.ID, s.alice.ID)
	s.Require().NoError(err)

	s.Equal(model.PhasePlaying, updated.Phase)
	s.Equal([]model.PlayerID{s.bob.ID, s.carol.ID}, updated.TurnOrder)
	s.Equal(s.bob.ID, updated.CurrentPlayerID())
	s.Equal(s.clock.Now().Add(30*time.Second), updated.TurnDeadline)
}

func (s *ControllerSuite) TestEarlierSeatLeavingKeepsCurrentPlayer() {
	room := s.startedRoom(s.alice, s.bob, s.carol)
	_, err := s.controller.Mutate(s.ctx, room.ID, func(r *model.Room) ([]model.Event, error) {
		r.CurrentIndex = 2
		return nil, nil
	})
	s.Require().NoError(err)

	updated, err := s.controller.LeaveRoom(s.ctx, room.ID, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(s.carol.ID, updated.CurrentPlayerID())
	s.Equal(1, updated.CurrentIndex)
}

func (s *ControllerSuite) TestLeavingBelowTwoPlayersFinishesGame() {
	room := s.startedRoom(s.alice, s.bob)

	updated, err := s.controller.LeaveRoom(s.ctx, room.ID, s.bob.ID)
	s.Require().NoError(err)

	s.Equal(model.PhaseFinished, updated.Phase)
	s.Require().Len(updated.Ranking, 1)
	s.Equal(s.alice.ID, updated.Ranking[0].PlayerID)
	s.Len(s.recorder.OfType(model.EventGameFinished), 1)
}

// Mutate tests

func (s *ControllerSuite) TestMutateErrorDiscardsChanges() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice)
	s.recorder.Reset()

	_, err := s.controller.Mutate(s.ctx, room.ID, func(r *model.Room) ([]model.Event, error) {
		r.Members[0].Balance = 0
		return []model.Event{{Type: model.EventLedgerUpdated}}, model.ErrInsufficientFunds
	})
	s.ErrorIs(err, model.ErrInsufficientFunds)

	loaded, _ := s.controller.GetRoom(s.ctx, room.ID)
	s.Equal(int64(3000), loaded.Members[0].Balance)
	s.Empty(s.recorder.Events())
}

func (s *ControllerSuite) TestMutateFinishesAfterGameDeadline() {
	room := s.startedRoom(s.alice, s.bob)
	s.clock.Advance(601 * time.Second)

	updated, err := s.controller.Mutate(s.ctx, room.ID, func(r *model.Room) ([]model.Event, error) {
		return nil, nil
	})
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, updated.Phase)
	s.Equal(s.clock.Now(), updated.FinishedAt)
	s.Len(updated.Ranking, 2)
}

func (s *ControllerSuite) TestWinConditionFinishesGame() {
	room := s.createRoom(model.RoomConfig{MaxPlayers: 2, WinPassiveIncome: 1000})
	s.join(room.ID, s.alice, s.bob)
	_, _ = s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	_, _ = s.controller.SetReady(s.ctx, room.ID, s.bob.ID, true)

	updated, err := s.controller.Mutate(s.ctx, room.ID, func(r *model.Room) ([]model.Event, error) {
		r.GetMember(s.bob.ID).PassiveIncome = 1500
		return nil, nil
	})
	s.Require().NoError(err)

	s.Equal(model.PhaseFinished, updated.Phase)
	s.Equal(s.bob.ID, updated.Ranking[0].PlayerID)
	s.True(updated.Ranking[0].Won)
	s.Equal(2, updated.Ranking[0].Points)
	s.Equal(0, updated.Ranking[1].Points)
}

func (s *ControllerSuite) TestFinishedRoomRejectsJoinAndReady() {
	room := s.startedRoom(s.alice, s.bob)
	s.clock.Advance(time.Hour)
	_, _ = s.controller.Mutate(s.ctx, room.ID, func(r *model.Room) ([]model.Event, error) { return nil, nil })

	_, err := s.controller.JoinRoom(s.ctx, room.ID, s.carol, "")
	s.ErrorIs(err, model.ErrGameFinished)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, s.alice, "")
	s.ErrorIs(err, model.ErrGameFinished)
	_, err = s.controller.SetReady(s.ctx, room.ID, s.alice.ID, true)
	s.ErrorIs(err, model.ErrGameFinished)
}

// Sweep tests

func (s *ControllerSuite) TestSweepRemovesEmptyRoomsAfterGrace() {
	room := s.createRoom(model.RoomConfig{})

	s.Equal(0, s.controller.Sweep(s.ctx))

	s.clock.Advance(31 * time.Second)
	s.Equal(1, s.controller.Sweep(s.ctx))

	_, err := s.controller.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestSweepExpiresWaitingRooms() {
	room := s.createRoom(model.RoomConfig{})
	s.join(room.ID, s.alice)

	s.clock.Advance(119 * time.Minute)
	s.Equal(0, s.controller.Sweep(s.ctx))

	s.clock.Advance(time.Minute)
	s.Equal(1, s.controller.Sweep(s.ctx))
}

func (s *ControllerSuite) TestSweepKeepsPlayingAndRecentlyFinishedRooms() {
	playing := s.startedRoom(s.alice, s.bob)
	s.clock.Advance(3 * time.Hour)
	s.Equal(0, s.controller.Sweep(s.ctx))

	// Game deadline has passed; the next mutation finishes it
	finished, err := s.controller.Mutate(s.ctx, playing.ID, func(r *model.Room) ([]model.Event, error) { return nil, nil })
	s.Require().NoError(err)
	s.Require().Equal(model.PhaseFinished, finished.Phase)

	s.clock.Advance(9 * time.Minute)
	s.Equal(0, s.controller.Sweep(s.ctx))

	s.clock.Advance(time.Minute)
	s.Equal(1, s.controller.Sweep(s.ctx))
}
