package turn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/energyofmoney/internal/dependencies/mocks"
	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/room"
	"github.com/mcoot/energyofmoney/internal/storage/memory"
	"github.com/mcoot/energyofmoney/internal/testutil"
)

type SchedulerSuite struct {
	suite.Suite
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	recorder  *events.Recorder
	rooms     *room.Controller
	scheduler *Scheduler
	ctx       context.Context

	alice model.Player
	bob   model.Player
	carol model.Player
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.random = mocks.NewMockRandom()
	s.recorder = events.NewRecorder()
	logger := testutil.NopLogger()
	s.rooms = room.NewController(memory.New(), s.clock, s.random, s.recorder, logger, room.DefaultConfig())
	s.scheduler = NewScheduler(s.rooms, s.random, logger)
	s.ctx = context.Background()

	s.alice = testutil.Player("Alice")
	s.bob = testutil.Player("Bob")
	s.carol = testutil.Player("Carol")
}

// startRoom starts a room with a 30s turn and a 300s game
func (s *SchedulerSuite) startRoom(players ...model.Player) model.RoomID {
	r, err := s.rooms.CreateRoom(s.ctx, room.CreateRequest{
		Name:   "Turns",
		Config: model.RoomConfig{MaxPlayers: len(players), TurnDurationSeconds: 30, GameDurationSeconds: 300},
	})
	s.Require().NoError(err)
	for _, p := range players {
		_, err := s.rooms.JoinRoom(s.ctx, r.ID, p, "")
		s.Require().NoError(err)
	}
	for _, p := range players {
		_, err := s.rooms.SetReady(s.ctx, r.ID, p.ID, true)
		s.Require().NoError(err)
	}
	s.recorder.Reset()
	return r.ID
}

func (s *SchedulerSuite) load(id model.RoomID) *model.Room {
	r, err := s.rooms.GetRoom(s.ctx, id)
	s.Require().NoError(err)
	return r
}

// Tick tests

func (s *SchedulerSuite) TestTickBeforeDeadlineDoesNothing() {
	id := s.startRoom(s.alice, s.bob)
	s.clock.Advance(29 * time.Second)

	s.Equal(0, s.scheduler.Tick(s.ctx))

	r := s.load(id)
	s.Equal(0, r.CurrentIndex)
	s.Empty(s.recorder.Events())
}

func (s *SchedulerSuite) TestTickAdvancesExactlyOncePerDeadline() {
	id := s.startRoom(s.alice, s.bob, s.carol)

	s.clock.Advance(30 * time.Second)
	s.Equal(1, s.scheduler.Tick(s.ctx))
	// Same instant, new deadline not yet reached
	s.Equal(0, s.scheduler.Tick(s.ctx))

	r := s.load(id)
	s.Equal(1, r.CurrentIndex)
	s.Equal(s.bob.ID, r.CurrentPlayerID())
	s.Equal(s.clock.Now().Add(30*time.Second), r.TurnDeadline)

	turnEvents := s.recorder.OfType(model.EventTurnChanged)
	s.Require().Len(turnEvents, 1)
	payload := turnEvents[0].Payload.(model.TurnChangedPayload)
	s.True(payload.Forced)
	s.Equal(s.bob.ID, payload.CurrentPlayerID)
}

func (s *SchedulerSuite) TestTickWrapsAroundWithoutSkipping() {
	id := s.startRoom(s.alice, s.bob, s.carol)

	var seen []model.PlayerID
	for i := 0; i < 4; i++ {
		s.clock.Advance(30 * time.Second)
		s.scheduler.Tick(s.ctx)
		seen = append(seen, s.load(id).CurrentPlayerID())
	}

	s.Equal([]model.PlayerID{s.bob.ID, s.carol.ID, s.alice.ID, s.bob.ID}, seen)
}

func (s *SchedulerSuite) TestTickIgnoresWaitingRooms() {
	r, err := s.rooms.CreateRoom(s.ctx, room.CreateRequest{})
	s.Require().NoError(err)
	_, _ = s.rooms.JoinRoom(s.ctx, r.ID, s.alice, "")
	s.clock.Advance(time.Hour)

	s.Equal(0, s.scheduler.Tick(s.ctx))
	s.Equal(model.PhaseWaiting, s.load(r.ID).Phase)
}

func (s *SchedulerSuite) TestRoomsAdvanceIndependently() {
	first := s.startRoom(s.alice, s.bob)
	s.clock.Advance(10 * time.Second)
	second := s.startRoom(testutil.Player("Dave"), testutil.Player("Erin"))

	s.clock.Advance(20 * time.Second)
	s.Equal(1, s.scheduler.Tick(s.ctx))

	s.Equal(1, s.load(first).CurrentIndex)
	s.Equal(0, s.load(second).CurrentIndex)
}

// Game deadline: the game finishes once and then rejects actions

func (s *SchedulerSuite) TestGameDeadlineFinishesRoomOnce() {
	id := s.startRoom(s.alice, s.bob)
	_, err := s.scheduler.PassTurn(s.ctx, id, s.alice.ID)
	s.Require().NoError(err)
	s.recorder.Reset()

	s.clock.Advance(300 * time.Second)
	s.Equal(1, s.scheduler.Tick(s.ctx))
	s.Equal(0, s.scheduler.Tick(s.ctx))

	r := s.load(id)
	s.Equal(model.PhaseFinished, r.Phase)
	s.Len(r.Ranking, 2)
	s.Len(s.recorder.OfType(model.EventGameFinished), 1)
	s.Empty(s.recorder.OfType(model.EventTurnChanged))

	_, err = s.scheduler.PassTurn(s.ctx, id, s.bob.ID)
	s.ErrorIs(err, model.ErrGameFinished)
	_, err = s.scheduler.RollOrAct(s.ctx, id, s.bob.ID)
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *SchedulerSuite) TestActionAfterDeadlineBeforeTickIsRejected() {
	id := s.startRoom(s.alice, s.bob)
	s.clock.Advance(301 * time.Second)

	_, err := s.scheduler.PassTurn(s.ctx, id, s.alice.ID)
	s.ErrorIs(err, model.ErrGameFinished)
}

// PassTurn tests

func (s *SchedulerSuite) TestPassTurnAdvancesBeforeDeadline() {
	id := s.startRoom(s.alice, s.bob)
	s.clock.Advance(5 * time.Second)

	r, err := s.scheduler.PassTurn(s.ctx, id, s.alice.ID)
	s.Require().NoError(err)

	s.Equal(s.bob.ID, r.CurrentPlayerID())
	s.Equal(s.clock.Now().Add(30*time.Second), r.TurnDeadline)
	events := s.recorder.OfType(model.EventTurnChanged)
	s.Require().Len(events, 1)
	s.False(events[0].Payload.(model.TurnChangedPayload).Forced)
}

func (s *SchedulerSuite) TestPassTurnFromNonCurrentPlayerIsRejected() {
	id := s.startRoom(s.alice, s.bob, s.carol)
	before := s.load(id)

	for _, p := range []model.Player{s.bob, s.carol} {
		_, err := s.scheduler.PassTurn(s.ctx, id, p.ID)
		s.ErrorIs(err, model.ErrNotYourTurn)
		_, err = s.scheduler.RollOrAct(s.ctx, id, p.ID)
		s.ErrorIs(err, model.ErrNotYourTurn)
	}

	after := s.load(id)
	s.Equal(before.CurrentIndex, after.CurrentIndex)
	s.Equal(before.TurnDeadline, after.TurnDeadline)
	s.Equal(before.UpdatedAt, after.UpdatedAt)
	s.Empty(s.recorder.Events())
}

func (s *SchedulerSuite) TestPassTurnThenDeadlineDoesNotDoubleAdvance() {
	id := s.startRoom(s.alice, s.bob, s.carol)
	s.clock.Advance(29 * time.Second)
	_, err := s.scheduler.PassTurn(s.ctx, id, s.alice.ID)
	s.Require().NoError(err)

	// The original deadline passes but the new one has not
	s.clock.Advance(2 * time.Second)
	s.Equal(0, s.scheduler.Tick(s.ctx))
	s.Equal(s.bob.ID, s.load(id).CurrentPlayerID())
}

func (s *SchedulerSuite) TestPassTurnErrors() {
	r, err := s.rooms.CreateRoom(s.ctx, room.CreateRequest{})
	s.Require().NoError(err)
	_, _ = s.rooms.JoinRoom(s.ctx, r.ID, s.alice, "")

	_, err = s.scheduler.PassTurn(s.ctx, r.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrGameNotStarted)

	_, err = s.scheduler.PassTurn(s.ctx, "MISSING", s.alice.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	id := s.startRoom(s.alice, s.bob)
	_, err = s.scheduler.PassTurn(s.ctx, id, s.carol.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// RollOrAct tests

func (s *SchedulerSuite) TestRollRecordsDieWithoutAdvancing() {
	id := s.startRoom(s.alice, s.bob)
	s.random.QueueIntn(3)

	r, err := s.scheduler.RollOrAct(s.ctx, id, s.alice.ID)
	s.Require().NoError(err)

	s.Equal(4, r.LastRoll)
	s.Equal(s.alice.ID, r.CurrentPlayerID())
	actions := s.recorder.OfType(model.EventTurnAction)
	s.Require().Len(actions, 1)
	s.Equal(4, actions[0].Payload.(model.TurnActionPayload).Roll)

	r, err = s.scheduler.PassTurn(s.ctx, id, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(0, r.LastRoll)
}
