// Package ranking computes the final standings of a finished room.
package ranking

import (
	"sort"

	"github.com/mcoot/energyofmoney/internal/model"
)

// WinCondition decides whether a member has won outright
type WinCondition interface {
	Won(m model.Member, cfg model.RoomConfig) bool
}

// PassiveIncomeThreshold wins once passive income reaches the room's
// WinPassiveIncome. A zero threshold never wins.
type PassiveIncomeThreshold struct{}

var _ WinCondition = PassiveIncomeThreshold{}

func (PassiveIncomeThreshold) Won(m model.Member, cfg model.RoomConfig) bool {
	return cfg.WinPassiveIncome > 0 && m.PassiveIncome >= cfg.WinPassiveIncome
}

// Rank orders members into final standings.
//
// Outright winners come first, then everyone else. Each group is sorted by
// passive income, then balance, both descending; remaining ties keep turn
// order. Points are N-place, and in a two player room the winner gets one
// bonus point.
func Rank(members []model.Member, turnOrder []model.PlayerID) []model.Standing {
	position := make(map[model.PlayerID]int, len(turnOrder))
	for i, id := range turnOrder {
		position[id] = i
	}
	seat := func(id model.PlayerID) int {
		if p, ok := position[id]; ok {
			return p
		}
		return len(turnOrder)
	}

	sorted := make([]model.Member, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasWon != b.HasWon {
			return a.HasWon
		}
		if a.PassiveIncome != b.PassiveIncome {
			return a.PassiveIncome > b.PassiveIncome
		}
		if a.Balance != b.Balance {
			return a.Balance > b.Balance
		}
		return seat(a.ID) < seat(b.ID)
	})

	n := len(sorted)
	standings := make([]model.Standing, n)
	for i, m := range sorted {
		place := i + 1
		points := n - place
		if n == 2 && place == 1 {
			points++
		}
		standings[i] = model.Standing{
			PlayerID:      m.ID,
			DisplayName:   m.DisplayName,
			Place:         place,
			Points:        points,
			Won:           m.HasWon,
			PassiveIncome: m.PassiveIncome,
			Balance:       m.Balance,
		}
	}
	return standings
}
