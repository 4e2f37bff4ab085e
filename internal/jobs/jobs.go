package jobs

import (
	"context"
	"log/slog"
	"time"
)

// TurnTicker advances rooms whose turn or game deadline has passed
type TurnTicker interface {
	Tick(ctx context.Context) int
}

// RoomSweeper removes rooms that are empty, finished or abandoned
type RoomSweeper interface {
	Sweep(ctx context.Context) int
}

// SessionCleaner drops expired sessions
type SessionCleaner interface {
	CleanExpiredSessions() int
}

// HubCleaner closes event hubs nobody is listening to
type HubCleaner interface {
	CleanupEmptyHubs() int
}

// Services are the collaborators the standard jobs drive
type Services struct {
	Turns    TurnTicker
	Rooms    RoomSweeper
	Sessions SessionCleaner
	Hubs     HubCleaner
}

// Intervals sets how often the standard jobs run
type Intervals struct {
	Tick     time.Duration
	Sweep    time.Duration
	Sessions time.Duration
	Hubs     time.Duration
}

// DefaultIntervals returns the default job intervals
func DefaultIntervals() Intervals {
	return Intervals{
		Tick:     time.Second,
		Sweep:    time.Minute,
		Sessions: 10 * time.Minute,
		Hubs:     5 * time.Minute,
	}
}

// Standard returns the server's periodic jobs. Services left nil are
// skipped.
func Standard(svc Services, iv Intervals, logger *slog.Logger) []Job {
	var out []Job
	if svc.Turns != nil {
		out = append(out, Job{Name: "turn-tick", Interval: iv.Tick, Run: func(ctx context.Context) {
			if n := svc.Turns.Tick(ctx); n > 0 {
				logger.Debug("turn tick advanced rooms", slog.Int("rooms", n))
			}
		}})
	}
	if svc.Rooms != nil {
		out = append(out, Job{Name: "room-sweep", Interval: iv.Sweep, Run: func(ctx context.Context) {
			if n := svc.Rooms.Sweep(ctx); n > 0 {
				logger.Info("room sweep removed rooms", slog.Int("rooms", n))
			}
		}})
	}
	if svc.Sessions != nil {
		out = append(out, Job{Name: "session-cleanup", Interval: iv.Sessions, Run: func(context.Context) {
			if n := svc.Sessions.CleanExpiredSessions(); n > 0 {
				logger.Info("expired sessions removed", slog.Int("sessions", n))
			}
		}})
	}
	if svc.Hubs != nil {
		out = append(out, Job{Name: "hub-cleanup", Interval: iv.Hubs, Run: func(context.Context) {
			svc.Hubs.CleanupEmptyHubs()
		}})
	}
	return out
}

// Register schedules every standard job on s
func Register(s *Scheduler, svc Services, iv Intervals, logger *slog.Logger) error {
	for _, job := range Standard(svc, iv, logger) {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}
