package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/energyofmoney/internal/model"
)

// Sweep removes rooms that are empty, finished past retention, or waiting
// past expiry. Failures are logged and skipped. Returns the number removed.
func (c *Controller) Sweep(ctx context.Context) int {
	rooms, err := c.storage.ListActiveRooms(ctx)
	if err != nil {
		c.logger.Error("room sweep failed to list rooms", slog.String("error", err.Error()))
		return 0
	}

	removed := 0
	for _, r := range rooms {
		if c.sweepReason(r, c.clock.Now()) == "" {
			continue
		}
		// Re-check under the room lock: the room may have changed since listing
		var reason string
		ok, err := c.removeIf(ctx, r.ID, func(current *model.Room) bool {
			reason = c.sweepReason(current, c.clock.Now())
			return reason != ""
		})
		if err != nil {
			c.logger.Error("room sweep failed to remove room",
				slog.String("room_id", string(r.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			removed++
			c.logger.Info("room swept", slog.String("room_id", string(r.ID)), slog.String("reason", reason))
		}
	}
	return removed
}

// sweepReason returns why a room should be removed, or "" to keep it
func (c *Controller) sweepReason(r *model.Room, now time.Time) string {
	switch {
	case r.IsEmpty() && now.Sub(r.UpdatedAt) >= c.cfg.EmptyGrace:
		return "empty"
	case r.Phase == model.PhaseFinished && now.Sub(r.FinishedAt) >= c.cfg.FinishedRetention:
		return "finished retention elapsed"
	case r.Phase == model.PhaseWaiting && now.Sub(r.CreatedAt) >= c.cfg.WaitingExpiry:
		return "waiting expired"
	}
	return ""
}
