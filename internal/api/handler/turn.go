package handler

import (
	"net/http"

	"github.com/mcoot/energyofmoney/internal/api/middleware"
	"github.com/mcoot/energyofmoney/internal/api/response"
	"github.com/mcoot/energyofmoney/internal/services/turn"
)

// TurnHandler handles the current player's turn actions
type TurnHandler struct {
	turns *turn.Scheduler
}

// NewTurnHandler creates a new turn handler
func NewTurnHandler(turns *turn.Scheduler) *TurnHandler {
	return &TurnHandler{turns: turns}
}

// Roll handles POST /api/v1/rooms/{id}/turn/roll
func (h *TurnHandler) Roll(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	rm, err := h.turns.RollOrAct(r.Context(), roomID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Pass handles POST /api/v1/rooms/{id}/turn/pass
func (h *TurnHandler) Pass(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	rm, err := h.turns.PassTurn(r.Context(), roomID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}
