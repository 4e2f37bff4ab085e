package testutil

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/energyofmoney/internal/model"
)

// Epoch is the fixed start time used by mock clocks in tests
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Player builds a guest player whose ID is derived from the display name
func Player(name string) model.Player {
	return model.Player{
		ID:          model.PlayerID("p-" + name),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   Epoch,
	}
}
