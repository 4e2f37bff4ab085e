package factory

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/energyofmoney/internal/dependencies/mocks"
	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/services/auth"
	"github.com/mcoot/energyofmoney/internal/services/room"
	"github.com/mcoot/energyofmoney/internal/storage/memory"
	"github.com/mcoot/energyofmoney/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Recorder   *events.Recorder
	Memory     *memory.Storage
}

// NewTestApp creates an App on memory storage with a mock clock and
// random source, recording every published event
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(testutil.Epoch)
	mockRandom := mocks.NewMockRandom()
	recorder := events.NewRecorder()

	roomCfg := room.DefaultConfig()
	roomCfg.BcryptCost = bcrypt.MinCost
	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, mockClock, mockRandom, []events.Publisher{recorder}, Config{
		RoomConfig: roomCfg,
		AuthConfig: authCfg,
	}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Recorder:   recorder,
		Memory:     store,
	}
}
