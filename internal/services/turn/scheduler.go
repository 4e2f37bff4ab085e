// Package turn owns whose turn it is in a playing room and when it ends.
package turn

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/energyofmoney/internal/dependencies/clock"
	"github.com/mcoot/energyofmoney/internal/dependencies/random"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/room"
)

// DieSides is the number of faces on the game die
const DieSides = 6

// errNothingDue aborts a tick mutation without saving the room
var errNothingDue = errors.New("nothing due")

// Scheduler advances turns on deadlines and validates turn-bound actions.
// A single Tick scans every playing room, replacing per-room timers.
type Scheduler struct {
	rooms  *room.Controller
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewScheduler creates a new turn Scheduler
func NewScheduler(rooms *room.Controller, random random.Random, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		rooms:  rooms,
		clock:  rooms.Clock(),
		random: random,
		logger: logger,
	}
}

// Tick force-advances every turn whose deadline has passed and finishes
// every game whose deadline has passed. Returns the number of rooms changed.
func (s *Scheduler) Tick(ctx context.Context) int {
	ids, err := s.rooms.RoomIDsInPhase(ctx, model.PhasePlaying)
	if err != nil {
		s.logger.Error("turn tick failed to list rooms", slog.String("error", err.Error()))
		return 0
	}

	changed := 0
	for _, id := range ids {
		_, err := s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
			if r.Phase != model.PhasePlaying {
				return nil, errNothingDue
			}
			now := s.clock.Now()
			if clock.Expired(now, r.GameDeadline) {
				// Finishing happens when the room settles
				return nil, nil
			}
			if !clock.Expired(now, r.TurnDeadline) {
				return nil, errNothingDue
			}
			s.logger.Debug("turn deadline elapsed",
				slog.String("room_id", string(r.ID)),
				slog.String("player_id", string(r.CurrentPlayerID())),
			)
			return []model.Event{s.advance(r, true)}, nil
		})
		switch {
		case err == nil:
			changed++
		case errors.Is(err, errNothingDue), errors.Is(err, model.ErrRoomNotFound):
		default:
			s.logger.Error("turn tick failed",
				slog.String("room_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
	}
	return changed
}

// PassTurn ends the current player's turn early
func (s *Scheduler) PassTurn(ctx context.Context, id model.RoomID, playerID model.PlayerID) (*model.Room, error) {
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := RequireTurn(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		return []model.Event{s.advance(r, false)}, nil
	})
}

// RollOrAct rolls the die for the current player. What the roll means on
// the board is up to the caller; the turn does not advance.
func (s *Scheduler) RollOrAct(ctx context.Context, id model.RoomID, playerID model.PlayerID) (*model.Room, error) {
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := RequireTurn(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		r.LastRoll = random.Die(s.random, DieSides)
		evt := s.rooms.Event(r, model.EventTurnAction, model.TurnActionPayload{
			PlayerID: playerID,
			Roll:     r.LastRoll,
		})
		evt.PlayerID = playerID
		return []model.Event{evt}, nil
	})
}

// advance hands the turn to the next seat and restarts the turn clock
func (s *Scheduler) advance(r *model.Room, forced bool) model.Event {
	r.CurrentIndex = (r.CurrentIndex + 1) % len(r.TurnOrder)
	r.TurnDeadline = s.clock.Now().Add(r.Config.TurnDuration())
	r.LastRoll = 0
	return s.rooms.TurnEvent(r, forced)
}

// RequireMember checks that the room is in play and the player is seated
func RequireMember(r *model.Room, playerID model.PlayerID, now time.Time) error {
	switch r.Phase {
	case model.PhaseWaiting:
		return model.ErrGameNotStarted
	case model.PhaseFinished:
		return model.ErrGameFinished
	}
	if clock.Expired(now, r.GameDeadline) {
		return model.ErrGameFinished
	}
	if r.GetMember(playerID) == nil {
		return model.ErrPlayerNotFound
	}
	return nil
}

// RequireTurn additionally checks that it is the player's turn
func RequireTurn(r *model.Room, playerID model.PlayerID, now time.Time) error {
	if err := RequireMember(r, playerID, now); err != nil {
		return err
	}
	if r.CurrentPlayerID() != playerID {
		return model.ErrNotYourTurn
	}
	return nil
}
