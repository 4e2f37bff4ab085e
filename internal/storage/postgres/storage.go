package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface.
// Rooms are stored as JSONB documents keyed by room ID.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects a pool, verifies it and optionally applies migrations
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Migrate {
		if err := Migrate(cfg.DSN); err != nil {
			return nil, unavailable(err)
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, unavailable(fmt.Errorf("create pool: %w", err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, unavailable(fmt.Errorf("ping database: %w", err))
	}

	return &Storage{pool: pool}, nil
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (id, display_name, is_guest, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, is_guest = EXCLUDED.is_guest`,
		string(player.ID), player.DisplayName, player.IsGuest, player.CreatedAt)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var p model.Player
	var pid string
	err := s.pool.QueryRow(ctx,
		`SELECT id, display_name, is_guest, created_at FROM players WHERE id = $1`, string(id),
	).Scan(&pid, &p.DisplayName, &p.IsGuest, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, unavailable(err)
	}
	p.ID = model.PlayerID(pid)
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, string(id)); err != nil {
		return unavailable(err)
	}
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO registered_players (player_id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at`,
		string(rp.PlayerID), rp.Username, rp.PasswordHash, rp.CreatedAt, rp.UpdatedAt)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return s.getRegistered(ctx, `WHERE player_id = $1`, string(playerID))
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	return s.getRegistered(ctx, `WHERE username = $1`, username)
}

func (s *Storage) getRegistered(ctx context.Context, where string, arg string) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	var pid string
	err := s.pool.QueryRow(ctx,
		`SELECT player_id, username, password_hash, created_at, updated_at FROM registered_players `+where, arg,
	).Scan(&pid, &rp.Username, &rp.PasswordHash, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, unavailable(err)
	}
	rp.PlayerID = model.PlayerID(pid)
	return &rp, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO rooms (id, phase, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET phase = EXCLUDED.phase, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		string(room.ID), string(room.Phase), data, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) LoadRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM rooms WHERE id = $1`, string(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, unavailable(err)
	}
	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, string(id)); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, string(id)).Scan(&exists)
	if err != nil {
		return false, unavailable(err)
	}
	return exists, nil
}

func (s *Storage) ListActiveRooms(ctx context.Context) ([]*model.Room, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM rooms ORDER BY created_at, id`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	rooms := []*model.Room{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, unavailable(err)
		}
		var room model.Room
		if err := json.Unmarshal(data, &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return rooms, nil
}
