package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/energyofmoney/internal/dependencies/clock"
	"github.com/mcoot/energyofmoney/internal/dependencies/random"
	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/ranking"
	"github.com/mcoot/energyofmoney/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room IDs
	RoomCodeLength = 8
	// MaxNameLength bounds room names
	MaxNameLength = 64
)

// Config holds directory retention settings
type Config struct {
	FinishedRetention time.Duration // finished rooms are kept this long
	WaitingExpiry     time.Duration // waiting rooms expire this long after creation
	EmptyGrace        time.Duration // new rooms may sit empty this long before a sweep removes them
	BcryptCost        int
}

// DefaultConfig returns the default directory configuration
func DefaultConfig() Config {
	return Config{
		FinishedRetention: 10 * time.Minute,
		WaitingExpiry:     2 * time.Hour,
		EmptyGrace:        30 * time.Second,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Mutation changes a loaded room and returns the events describing the
// change. Returning an error discards every change.
type Mutation func(r *model.Room) ([]model.Event, error)

// Controller is the room directory and the room state machine. Every change
// to a room goes through Mutate, which serializes it against all other
// changes to the same room.
type Controller struct {
	storage   storage.Storage
	clock     clock.Clock
	random    random.Random
	publisher events.Publisher
	win       ranking.WinCondition
	logger    *slog.Logger
	cfg       Config

	dirMu sync.Mutex // guards insert and remove
	locks *roomLocks
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	publisher events.Publisher,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	return &Controller{
		storage:   storage,
		clock:     clock,
		random:    random,
		publisher: publisher,
		win:       ranking.PassiveIncomeThreshold{},
		logger:    logger,
		cfg:       cfg,
		locks:     newRoomLocks(),
	}
}

// SetWinCondition replaces the default passive income win condition
func (c *Controller) SetWinCondition(w ranking.WinCondition) {
	c.win = w
}

// Clock returns the controller's clock so collaborators share one notion of now
func (c *Controller) Clock() clock.Clock {
	return c.clock
}

// CreateRequest describes a room to create
type CreateRequest struct {
	Name      string
	Password  string
	CreatorID model.PlayerID
	Config    model.RoomConfig
}

// CreateRoom validates the config and inserts an empty waiting room
func (c *Controller) CreateRoom(ctx context.Context, req CreateRequest) (*model.Room, error) {
	cfg, err := normalizeConfig(req.Config)
	if err != nil {
		return nil, err
	}
	if len(req.Name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name longer than %d characters", model.ErrInvalidConfig, MaxNameLength)
	}

	var hash string
	if req.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(req.Password), c.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash room password: %w", err)
		}
		hash = string(b)
	}

	c.dirMu.Lock()
	defer c.dirMu.Unlock()

	// Generate unique room code
	var id model.RoomID
	for {
		id = model.RoomID(c.random.String(RoomCodeLength, random.RoomCodeAlphabet))
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	name := req.Name
	if name == "" {
		name = "Room " + string(id)
	}

	now := c.clock.Now()
	room := &model.Room{
		ID:           id,
		Name:         name,
		PasswordHash: hash,
		CreatorID:    req.CreatorID,
		Config:       cfg,
		Members:      []model.Member{},
		Phase:        model.PhaseWaiting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.Int("max_players", cfg.MaxPlayers),
		slog.Bool("password", hash != ""),
	)
	c.publish(ctx, []model.Event{c.Event(room, model.EventRoomListChanged, room.Summary())})

	return room, nil
}

func normalizeConfig(cfg model.RoomConfig) (model.RoomConfig, error) {
	def := model.DefaultRoomConfig()

	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.MaxPlayers < model.MinPlayers || cfg.MaxPlayers > model.MaxPlayers {
		return cfg, fmt.Errorf("%w: max players must be between %d and %d",
			model.ErrInvalidConfig, model.MinPlayers, model.MaxPlayers)
	}
	if cfg.TurnDurationSeconds < 0 || cfg.GameDurationSeconds < 0 {
		return cfg, fmt.Errorf("%w: durations must not be negative", model.ErrInvalidConfig)
	}
	if cfg.TurnDurationSeconds > model.MaxDurationSeconds || cfg.GameDurationSeconds > model.MaxDurationSeconds {
		return cfg, fmt.Errorf("%w: durations must not exceed %d seconds", model.ErrInvalidConfig, model.MaxDurationSeconds)
	}
	if cfg.StartingBalance < 0 || cfg.WinPassiveIncome < 0 {
		return cfg, fmt.Errorf("%w: amounts must not be negative", model.ErrInvalidConfig)
	}
	if cfg.StartingBalance > model.MaxConfigAmount || cfg.WinPassiveIncome > model.MaxConfigAmount {
		return cfg, fmt.Errorf("%w: amounts must not exceed %d", model.ErrInvalidConfig, int64(model.MaxConfigAmount))
	}
	if cfg.TurnDurationSeconds == 0 {
		cfg.TurnDurationSeconds = def.TurnDurationSeconds
	}
	if cfg.GameDurationSeconds == 0 {
		cfg.GameDurationSeconds = def.GameDurationSeconds
	}
	if cfg.StartingBalance == 0 {
		cfg.StartingBalance = def.StartingBalance
	}
	return cfg, nil
}

// GetRoom retrieves a room by ID
func (c *Controller) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return c.storage.LoadRoom(ctx, id)
}

// ListRooms returns a summary of every room, oldest first
func (c *Controller) ListRooms(ctx context.Context) ([]model.RoomSummary, error) {
	rooms, err := c.storage.ListActiveRooms(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summary())
	}
	return summaries, nil
}

// RoomIDsInPhase lists the IDs of rooms currently in the given phase
func (c *Controller) RoomIDsInPhase(ctx context.Context, phase model.RoomPhase) ([]model.RoomID, error) {
	rooms, err := c.storage.ListActiveRooms(ctx)
	if err != nil {
		return nil, err
	}
	var ids []model.RoomID
	for _, r := range rooms {
		if r.Phase == phase {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// RemoveRoom deletes a room. Removing an absent room is not an error.
func (c *Controller) RemoveRoom(ctx context.Context, id model.RoomID) error {
	_, err := c.removeIf(ctx, id, func(*model.Room) bool { return true })
	return err
}

// removeIf deletes the room when remove returns true for its current state
func (c *Controller) removeIf(ctx context.Context, id model.RoomID, remove func(*model.Room) bool) (bool, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	room, err := c.storage.LoadRoom(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	if !remove(room) {
		return false, nil
	}
	if err := c.delete(ctx, room); err != nil {
		return false, err
	}
	return true, nil
}

// delete removes a room whose lock is held by the caller
func (c *Controller) delete(ctx context.Context, room *model.Room) error {
	c.dirMu.Lock()
	err := c.storage.DeleteRoom(ctx, room.ID)
	c.dirMu.Unlock()
	if err != nil {
		return err
	}

	c.logger.Info("room removed", slog.String("room_id", string(room.ID)), slog.String("phase", string(room.Phase)))
	c.publish(ctx, []model.Event{
		c.Event(room, model.EventRoomClosed, nil),
		c.Event(room, model.EventRoomListChanged, nil),
	})
	return nil
}

// Mutate loads the room under its lock, applies fn, settles the game and
// saves. Events are published only once the change is stored. A room left
// without members is deleted instead of saved.
func (c *Controller) Mutate(ctx context.Context, id model.RoomID, fn Mutation) (*model.Room, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	room, err := c.storage.LoadRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	evts, err := fn(room)
	if err != nil {
		return nil, err
	}
	evts = append(evts, c.settle(room)...)

	if room.IsEmpty() {
		if err := c.delete(ctx, room); err != nil {
			return nil, err
		}
		c.publish(ctx, evts)
		return room, nil
	}

	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.publish(ctx, evts)
	return room, nil
}

// settle finishes a playing room once its game deadline passes, a member
// meets the win condition, or fewer than two players remain
func (c *Controller) settle(room *model.Room) []model.Event {
	if room.Phase != model.PhasePlaying {
		return nil
	}

	anyWon := false
	for i := range room.Members {
		if !room.Members[i].HasWon && c.win.Won(room.Members[i], room.Config) {
			room.Members[i].HasWon = true
		}
		anyWon = anyWon || room.Members[i].HasWon
	}

	now := c.clock.Now()
	switch {
	case anyWon:
		return c.finish(room, "win condition met")
	case clock.Expired(now, room.GameDeadline):
		return c.finish(room, "game deadline elapsed")
	case len(room.TurnOrder) < model.MinPlayers:
		return c.finish(room, "not enough players")
	}
	return nil
}

// finish moves a playing room to finished and computes its ranking once
func (c *Controller) finish(room *model.Room, reason string) []model.Event {
	now := c.clock.Now()
	room.Phase = model.PhaseFinished
	room.FinishedAt = now
	room.TurnDeadline = time.Time{}
	room.Ranking = ranking.Rank(room.Members, room.TurnOrder)

	c.logger.Info("game finished",
		slog.String("room_id", string(room.ID)),
		slog.String("reason", reason),
		slog.Int("players", len(room.Ranking)),
	)

	return []model.Event{
		c.Event(room, model.EventGameFinished, model.GameFinishedPayload{Ranking: room.Ranking}),
		c.stateEvent(room, "finished"),
		c.Event(room, model.EventRoomListChanged, room.Summary()),
	}
}

// Event builds an event for the room stamped with the current time
func (c *Controller) Event(room *model.Room, t model.EventType, payload any) model.Event {
	return model.Event{
		Type:      t,
		Timestamp: c.clock.Now(),
		RoomID:    room.ID,
		Payload:   payload,
	}
}

func (c *Controller) stateEvent(room *model.Room, reason string) model.Event {
	return c.Event(room, model.EventRoomStateChanged, model.RoomStatePayload{
		Reason:  reason,
		Phase:   room.Phase,
		Members: room.MemberStates(),
	})
}

func (c *Controller) publish(ctx context.Context, evts []model.Event) {
	for _, e := range evts {
		c.publisher.Publish(ctx, e)
	}
}
