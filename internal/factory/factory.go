package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/energyofmoney/internal/config"
	"github.com/mcoot/energyofmoney/internal/dependencies/clock"
	"github.com/mcoot/energyofmoney/internal/dependencies/random"
	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/jobs"
	"github.com/mcoot/energyofmoney/internal/services/auth"
	"github.com/mcoot/energyofmoney/internal/services/ledger"
	"github.com/mcoot/energyofmoney/internal/services/room"
	"github.com/mcoot/energyofmoney/internal/services/turn"
	"github.com/mcoot/energyofmoney/internal/storage"
	"github.com/mcoot/energyofmoney/internal/storage/memory"
	pgstorage "github.com/mcoot/energyofmoney/internal/storage/postgres"
	redisstorage "github.com/mcoot/energyofmoney/internal/storage/redis"
	"github.com/mcoot/energyofmoney/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	Clock  clock.Clock
	Random random.Random

	Publisher   events.Publisher
	HubManager  *sse.HubManager
	AuthService *auth.Service
	Rooms       *room.Controller
	Turns       *turn.Scheduler
	Ledger      *ledger.Service

	closer io.Closer
}

// Config holds configuration for the application factory. Zero values
// take each component's defaults.
type Config struct {
	// Logger is the application logger; nil discards output
	Logger *slog.Logger
	// StorageType selects the backend; empty means memory
	StorageType string
	// RedisConfig is required when StorageType is redis
	RedisConfig *redisstorage.Config
	// PostgresConfig is required when StorageType is postgres
	PostgresConfig *pgstorage.Config

	AuthConfig   auth.Config
	RoomConfig   room.Config
	LedgerConfig ledger.Config
}

// FromServerConfig maps environment configuration onto factory settings
func FromServerConfig(cfg *config.Config, logger *slog.Logger) Config {
	out := Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		AuthConfig:  auth.Config{SessionDuration: cfg.SessionTTL},
		RoomConfig: room.Config{
			FinishedRetention: cfg.FinishedRetention,
			WaitingExpiry:     cfg.WaitingExpiry,
		},
		LedgerConfig: ledger.Config{
			MaxCreditPerRequest:  cfg.MaxCreditPerRequest,
			MaxOutstandingCredit: cfg.MaxOutstandingCredit,
		},
	}
	switch cfg.Storage {
	case StorageTypeRedis:
		rc := redisstorage.DefaultConfig()
		rc.URL = cfg.RedisURL
		rc.RoomTTL = cfg.RoomTTL
		rc.GuestPlayerTTL = cfg.SessionTTL
		out.RedisConfig = &rc
	case StorageTypePostgres:
		pc := pgstorage.DefaultConfig()
		pc.DSN = cfg.PostgresDSN
		out.PostgresConfig = &pc
	}
	return out
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), nil, cfg, logger)
	app.closer = closer
	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, io.Closer, error) {
	switch cfg.StorageType {
	case "", StorageTypeMemory:
		return memory.New(), nil, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		s, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		s, err := pgstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or postgres", cfg.StorageType)
	}
}

// newWithDependencies wires services around the given dependencies. extra
// publishers receive every event alongside the SSE broadcaster.
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, extra []events.Publisher, cfg Config, logger *slog.Logger) *App {
	roomCfg := cfg.RoomConfig
	def := room.DefaultConfig()
	if roomCfg.FinishedRetention == 0 {
		roomCfg.FinishedRetention = def.FinishedRetention
	}
	if roomCfg.WaitingExpiry == 0 {
		roomCfg.WaitingExpiry = def.WaitingExpiry
	}
	if roomCfg.EmptyGrace == 0 {
		roomCfg.EmptyGrace = def.EmptyGrace
	}
	if roomCfg.BcryptCost == 0 {
		roomCfg.BcryptCost = def.BcryptCost
	}

	ledgerCfg := cfg.LedgerConfig
	if ledgerCfg == (ledger.Config{}) {
		ledgerCfg = ledger.DefaultConfig()
	}

	hubManager := sse.NewHubManager(logger)
	publisher := events.Multi(append([]events.Publisher{sse.NewBroadcaster(hubManager, logger)}, extra...))

	rooms := room.NewController(store, clk, rnd, publisher, logger, roomCfg)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Publisher:   publisher,
		HubManager:  hubManager,
		AuthService: auth.New(store, clk, logger, cfg.AuthConfig),
		Rooms:       rooms,
		Turns:       turn.NewScheduler(rooms, rnd, logger),
		Ledger:      ledger.New(rooms, logger, ledgerCfg),
	}
}

// JobServices exposes the components driven by periodic jobs
func (a *App) JobServices() jobs.Services {
	return jobs.Services{
		Turns:    a.Turns,
		Rooms:    a.Rooms,
		Sessions: a.AuthService,
		Hubs:     a.HubManager,
	}
}

// Close disconnects event streams and releases the storage backend
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
