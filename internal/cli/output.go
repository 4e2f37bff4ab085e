package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/energyofmoney/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuthResult(v)
	case response.RoomList:
		o.printRoomList(v)
	case response.Room:
		o.printRoom(v)
	case response.Account:
		o.printAccount(v)
	case History:
		o.printHistory(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p response.Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a response.AuthResponse) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
	fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printRoomList(l response.RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms")
		return
	}
	for _, r := range l.Rooms {
		lock := ""
		if r.HasPassword {
			lock = " [password]"
		}
		fmt.Fprintf(o.w, "%s  %-24s %d/%d  %s%s\n", r.ID, r.Name, r.Occupancy, r.MaxPlayers, r.Phase, lock)
	}
}

func (o *Output) printRoom(r response.Room) {
	fmt.Fprintf(o.w, "Room: %s (%s)\n", r.Name, r.ID)
	fmt.Fprintf(o.w, "Phase: %s\n", r.Phase)
	fmt.Fprintf(o.w, "Capacity: %d  Turn: %ds  Game: %ds  Start balance: %d\n",
		r.Config.MaxPlayers, r.Config.TurnDurationSeconds, r.Config.GameDurationSeconds, r.Config.StartingBalance)

	fmt.Fprintf(o.w, "Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		var tags []string
		if m.IsCreator {
			tags = append(tags, "creator")
		}
		if m.IsReady && r.Phase == "waiting" {
			tags = append(tags, "ready")
		}
		if m.PlayerID == r.CurrentPlayerID {
			tags = append(tags, "turn")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.w, "  - %s: balance %d, passive %d, credit %d%s\n",
			m.DisplayName, m.Balance, m.PassiveIncome, m.Credit, tagStr)
	}

	if r.LastRoll > 0 {
		fmt.Fprintf(o.w, "Last roll: %d\n", r.LastRoll)
	}
	if r.TurnDeadline != nil {
		fmt.Fprintf(o.w, "Turn ends: %s\n", r.TurnDeadline.Format(time.RFC3339))
	}
	if r.GameDeadline != nil && r.Phase == "playing" {
		fmt.Fprintf(o.w, "Game ends: %s\n", r.GameDeadline.Format(time.RFC3339))
	}

	if len(r.Ranking) > 0 {
		fmt.Fprintln(o.w, "\nRanking:")
		for _, s := range r.Ranking {
			won := ""
			if s.Won {
				won = " (won)"
			}
			fmt.Fprintf(o.w, "  %d. %s: %d points%s\n", s.Place, s.DisplayName, s.Points, won)
		}
	}
}

func (o *Output) printAccount(a response.Account) {
	fmt.Fprintf(o.w, "Balance: %d\n", a.Balance)
	fmt.Fprintf(o.w, "Credit: %d\n", a.Credit)
	fmt.Fprintf(o.w, "Passive income: %d\n", a.PassiveIncome)
	if n := len(a.History); n > 0 {
		last := a.History[n-1]
		fmt.Fprintf(o.w, "Last entry: %s %d (balance %d)\n", last.Kind, last.Amount, last.BalanceAfter)
	}
}

func (o *Output) printHistory(h History) {
	if len(h.Entries) == 0 {
		fmt.Fprintln(o.w, "No entries")
		return
	}
	for _, e := range h.Entries {
		party := ""
		if e.Counterparty != "" {
			party = " " + e.Counterparty
		}
		fmt.Fprintf(o.w, "%s  %-10s %8d%s  -> %d\n",
			e.CreatedAt.Format(time.TimeOnly), e.Kind, e.Amount, party, e.BalanceAfter)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
