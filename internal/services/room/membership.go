package room

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/energyofmoney/internal/model"
)

// JoinRoom adds a player to a room. A member joining again is treated as a
// reconnect and only refreshes their display name.
func (c *Controller) JoinRoom(ctx context.Context, id model.RoomID, player model.Player, password string) (*model.Room, error) {
	return c.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if existing := r.GetMember(player.ID); existing != nil {
			if r.Phase == model.PhaseFinished {
				return nil, model.ErrGameFinished
			}
			existing.DisplayName = player.DisplayName
			return []model.Event{c.stateEvent(r, "rejoined")}, nil
		}

		if r.HasPassword() {
			if err := bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)); err != nil {
				return nil, model.ErrWrongPassword
			}
		}
		switch r.Phase {
		case model.PhasePlaying:
			return nil, model.ErrRoomAlreadyStarted
		case model.PhaseFinished:
			return nil, model.ErrGameFinished
		}
		if r.IsFull() {
			return nil, model.ErrRoomFull
		}
		if r.GetMemberByName(player.DisplayName) != nil {
			return nil, fmt.Errorf("%w: %q", model.ErrDisplayNameTaken, player.DisplayName)
		}

		if r.CreatorID == "" {
			r.CreatorID = player.ID
		}
		r.Members = append(r.Members, model.Member{
			ID:          player.ID,
			DisplayName: player.DisplayName,
			Balance:     r.Config.StartingBalance,
			JoinedAt:    c.clock.Now(),
			History:     []model.LedgerEntry{},
		})

		c.logger.Info("player joined room",
			slog.String("room_id", string(r.ID)),
			slog.String("player_id", string(player.ID)),
			slog.Int("members", len(r.Members)),
		)

		return []model.Event{
			c.stateEvent(r, "joined"),
			c.Event(r, model.EventRoomListChanged, r.Summary()),
		}, nil
	})
}

// LeaveRoom removes a player. While playing, the turn passes on as if the
// leaver had never been seated; the last member leaving deletes the room.
func (c *Controller) LeaveRoom(ctx context.Context, id model.RoomID, playerID model.PlayerID) (*model.Room, error) {
	return c.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		idx := -1
		for i, m := range r.Members {
			if m.ID == playerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, model.ErrPlayerNotFound
		}
		r.Members = append(r.Members[:idx], r.Members[idx+1:]...)

		if r.CreatorID == playerID && len(r.Members) > 0 {
			r.CreatorID = r.Members[0].ID
		}

		evts := []model.Event{}
		if r.Phase == model.PhasePlaying {
			if e, ok := c.dropFromTurnOrder(r, playerID); ok {
				evts = append(evts, e)
			}
		}

		c.logger.Info("player left room",
			slog.String("room_id", string(r.ID)),
			slog.String("player_id", string(playerID)),
			slog.Int("members", len(r.Members)),
		)

		evts = append(evts,
			c.stateEvent(r, "left"),
			c.Event(r, model.EventRoomListChanged, r.Summary()),
		)
		// the remaining members may now all be ready
		if r.Phase == model.PhaseWaiting && !r.Config.ManualStart && r.AllReady() {
			evts = append(evts, c.start(r)...)
		}
		return evts, nil
	})
}

// dropFromTurnOrder removes a seat and keeps the turn with the same next
// player. Returns a turn change event when the current player was removed.
func (c *Controller) dropFromTurnOrder(r *model.Room, playerID model.PlayerID) (model.Event, bool) {
	pos := -1
	for i, id := range r.TurnOrder {
		if id == playerID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return model.Event{}, false
	}
	r.TurnOrder = append(r.TurnOrder[:pos], r.TurnOrder[pos+1:]...)

	if len(r.TurnOrder) == 0 {
		r.CurrentIndex = 0
		return model.Event{}, false
	}
	switch {
	case pos < r.CurrentIndex:
		r.CurrentIndex--
		return model.Event{}, false
	case pos == r.CurrentIndex:
		r.CurrentIndex %= len(r.TurnOrder)
		r.TurnDeadline = c.clock.Now().Add(r.Config.TurnDuration())
		return c.TurnEvent(r, false), true
	}
	return model.Event{}, false
}

// SetReady marks a member ready or not. Unless the room starts manually, it
// starts as soon as every member is ready.
func (c *Controller) SetReady(ctx context.Context, id model.RoomID, playerID model.PlayerID, ready bool) (*model.Room, error) {
	return c.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := requireWaiting(r); err != nil {
			return nil, err
		}
		m := r.GetMember(playerID)
		if m == nil {
			return nil, model.ErrPlayerNotFound
		}
		m.IsReady = ready

		evts := []model.Event{c.stateEvent(r, "ready")}
		if !r.Config.ManualStart && r.AllReady() {
			evts = append(evts, c.start(r)...)
		}
		return evts, nil
	})
}

// StartGame starts the room on the creator's command. Every member must be
// ready and at least two must be present.
func (c *Controller) StartGame(ctx context.Context, id model.RoomID, requesterID model.PlayerID) (*model.Room, error) {
	return c.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := requireWaiting(r); err != nil {
			return nil, err
		}
		if r.GetMember(requesterID) == nil {
			return nil, model.ErrPlayerNotFound
		}
		if r.CreatorID != requesterID {
			return nil, model.ErrNotCreator
		}
		if !r.AllReady() {
			return nil, model.ErrNotAllReady
		}
		return c.start(r), nil
	})
}

func requireWaiting(r *model.Room) error {
	switch r.Phase {
	case model.PhasePlaying:
		return model.ErrRoomAlreadyStarted
	case model.PhaseFinished:
		return model.ErrGameFinished
	}
	return nil
}

// start captures the turn order from join order and sets both deadlines
func (c *Controller) start(r *model.Room) []model.Event {
	now := c.clock.Now()

	r.Phase = model.PhasePlaying
	r.TurnOrder = make([]model.PlayerID, len(r.Members))
	for i, m := range r.Members {
		r.TurnOrder[i] = m.ID
	}
	r.CurrentIndex = 0
	r.StartedAt = now
	r.TurnDeadline = now.Add(r.Config.TurnDuration())
	r.GameDeadline = now.Add(r.Config.GameDuration())

	c.logger.Info("game started",
		slog.String("room_id", string(r.ID)),
		slog.Int("players", len(r.TurnOrder)),
	)

	return []model.Event{
		c.stateEvent(r, "started"),
		c.TurnEvent(r, false),
		c.Event(r, model.EventRoomListChanged, r.Summary()),
	}
}

// TurnEvent builds a turn changed event from the room's current turn
func (c *Controller) TurnEvent(r *model.Room, forced bool) model.Event {
	return c.Event(r, model.EventTurnChanged, model.TurnChangedPayload{
		CurrentIndex:    r.CurrentIndex,
		CurrentPlayerID: r.CurrentPlayerID(),
		TurnDeadline:    r.TurnDeadline,
		Forced:          forced,
	})
}
