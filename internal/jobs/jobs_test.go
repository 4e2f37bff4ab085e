package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/energyofmoney/internal/dependencies/mocks"
	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/room"
	"github.com/mcoot/energyofmoney/internal/services/turn"
	"github.com/mcoot/energyofmoney/internal/storage/memory"
	"github.com/mcoot/energyofmoney/internal/testutil"
)

type countingCleaner struct{ calls atomic.Int32 }

func (c *countingCleaner) CleanExpiredSessions() int { c.calls.Add(1); return 0 }
func (c *countingCleaner) CleanupEmptyHubs() int     { c.calls.Add(1); return 0 }

func TestStandardSkipsMissingServices(t *testing.T) {
	cleaner := &countingCleaner{}
	jobs := Standard(Services{Sessions: cleaner}, DefaultIntervals(), testutil.NopLogger())

	require.Len(t, jobs, 1)
	assert.Equal(t, "session-cleanup", jobs[0].Name)
	assert.Equal(t, 10*time.Minute, jobs[0].Interval)

	jobs[0].Run(context.Background())
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestTickJobAdvancesExpiredTurns(t *testing.T) {
	ctx := context.Background()
	clk := mocks.NewMockClock(testutil.Epoch)
	rng := mocks.NewMockRandom()
	logger := testutil.NopLogger()
	rooms := room.NewController(memory.New(), clk, rng, events.Nop{}, logger, room.DefaultConfig())
	turns := turn.NewScheduler(rooms, rng, logger)

	r, err := rooms.CreateRoom(ctx, room.CreateRequest{
		Name:   "Cron",
		Config: model.RoomConfig{MaxPlayers: 2, TurnDurationSeconds: 30},
	})
	require.NoError(t, err)
	for _, p := range []model.Player{testutil.Player("Alice"), testutil.Player("Bob")} {
		_, err := rooms.JoinRoom(ctx, r.ID, p, "")
		require.NoError(t, err)
		_, err = rooms.SetReady(ctx, r.ID, p.ID, true)
		require.NoError(t, err)
	}

	jobs := Standard(Services{Turns: turns, Rooms: rooms}, DefaultIntervals(), logger)
	require.Len(t, jobs, 2)

	clk.Advance(30 * time.Second)
	jobs[0].Run(ctx)

	got, err := rooms.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
}

func TestSchedulerRunsRegisteredJobs(t *testing.T) {
	s := NewScheduler(testutil.NopLogger())
	cleaner := &countingCleaner{}

	err := Register(s, Services{Sessions: cleaner, Hubs: cleaner}, Intervals{
		Sessions: time.Second,
		Hubs:     time.Second,
	}, testutil.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(testutil.NopLogger())
	err := s.Add(Job{Name: "bad", Run: func(context.Context) {}})
	assert.Error(t, err)
}
