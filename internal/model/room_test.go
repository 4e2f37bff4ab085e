package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(members ...string) *Room {
	r := &Room{
		ID:     "ROOM0001",
		Config: DefaultRoomConfig(),
		Phase:  PhaseWaiting,
	}
	for _, name := range members {
		r.Members = append(r.Members, Member{ID: PlayerID("p-" + name), DisplayName: name})
	}
	return r
}

func TestAllReady(t *testing.T) {
	r := newRoom("Alice")
	r.Members[0].IsReady = true
	assert.False(t, r.AllReady(), "one member is never enough")

	r = newRoom("Alice", "Bob")
	r.Members[0].IsReady = true
	assert.False(t, r.AllReady())

	r.Members[1].IsReady = true
	assert.True(t, r.AllReady())
}

func TestIsFull(t *testing.T) {
	r := newRoom("Alice", "Bob")
	r.Config.MaxPlayers = 3
	assert.False(t, r.IsFull())

	r.Members = append(r.Members, Member{ID: "p-Carol", DisplayName: "Carol"})
	assert.True(t, r.IsFull())
}

func TestCurrentPlayerID(t *testing.T) {
	r := newRoom("Alice", "Bob")
	assert.Empty(t, r.CurrentPlayerID(), "no current player before play")

	r.Phase = PhasePlaying
	r.TurnOrder = []PlayerID{"p-Alice", "p-Bob"}
	r.CurrentIndex = 1
	assert.Equal(t, PlayerID("p-Bob"), r.CurrentPlayerID())

	r.Phase = PhaseFinished
	assert.Empty(t, r.CurrentPlayerID())
}

func TestMemberLookup(t *testing.T) {
	r := newRoom("Alice", "Bob")

	m := r.GetMember("p-Bob")
	require.NotNil(t, m)
	m.Balance = 42
	assert.Equal(t, int64(42), r.Members[1].Balance, "lookups return the stored member")

	assert.Nil(t, r.GetMember("p-Carol"))
	assert.NotNil(t, r.GetMemberByName("Alice"))
	assert.Nil(t, r.GetMemberByName("alice"))
}

func TestSummary(t *testing.T) {
	r := newRoom("Alice")
	r.Name = "Friday"
	r.PasswordHash = "hash"
	r.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := r.Summary()
	assert.Equal(t, RoomSummary{
		ID:          "ROOM0001",
		Name:        "Friday",
		Occupancy:   1,
		MaxPlayers:  4,
		Phase:       PhaseWaiting,
		HasPassword: true,
		CreatedAt:   r.CreatedAt,
	}, s)
}

func TestCloneIsDeep(t *testing.T) {
	r := newRoom("Alice", "Bob")
	r.Members[0].History = []LedgerEntry{{ID: "e1", Amount: 10}}
	r.TurnOrder = []PlayerID{"p-Alice", "p-Bob"}
	r.Ranking = []Standing{{PlayerID: "p-Alice", Place: 1}}

	c := r.Clone()
	c.Members[0].Balance = 99
	c.Members[0].History[0].Amount = 99
	c.TurnOrder[0] = "p-Bob"
	c.Ranking[0].Place = 2

	assert.Zero(t, r.Members[0].Balance)
	assert.Equal(t, int64(10), r.Members[0].History[0].Amount)
	assert.Equal(t, PlayerID("p-Alice"), r.TurnOrder[0])
	assert.Equal(t, 1, r.Ranking[0].Place)
}

func TestMemberStates(t *testing.T) {
	r := newRoom("Alice", "Bob")
	r.CreatorID = "p-Bob"
	r.Members[0].IsReady = true

	states := r.MemberStates()
	require.Len(t, states, 2)
	assert.True(t, states[0].IsReady)
	assert.False(t, states[0].IsCreator)
	assert.True(t, states[1].IsCreator)
}

func TestOperationKinds(t *testing.T) {
	assert.True(t, OpPayday.IsIncome())
	assert.False(t, OpTransfer.IsIncome())
	assert.True(t, OpExpense.IsExpense())
	assert.True(t, OpCharity.IsExpense())
	assert.False(t, OpCredit.IsExpense())
}
