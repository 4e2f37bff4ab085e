package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/energyofmoney/internal/api/middleware"
	"github.com/mcoot/energyofmoney/internal/api/request"
	"github.com/mcoot/energyofmoney/internal/api/response"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/ledger"
)

// BankHandler handles ledger endpoints. Every response is the caller's
// own account after the operation.
type BankHandler struct {
	ledger *ledger.Service
}

// NewBankHandler creates a new bank handler
func NewBankHandler(ledger *ledger.Service) *BankHandler {
	return &BankHandler{ledger: ledger}
}

// Transfer handles POST /api/v1/rooms/{id}/bank/transfer
func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.TransferRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Recipient) == "" {
		WriteError(w, NewInvalidRequestError("recipient is required"))
		return
	}

	rm, err := h.ledger.Transfer(r.Context(), roomID(r), player.ID, strings.TrimSpace(req.Recipient), req.Amount)
	h.writeAccount(w, rm, player.ID, err)
}

// Credit handles POST /api/v1/rooms/{id}/bank/credit
func (h *BankHandler) Credit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.AmountRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.ledger.Credit(r.Context(), roomID(r), player.ID, req.Amount)
	h.writeAccount(w, rm, player.ID, err)
}

// Repay handles POST /api/v1/rooms/{id}/bank/repay
func (h *BankHandler) Repay(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.AmountRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.ledger.Repay(r.Context(), roomID(r), player.ID, req.Amount)
	h.writeAccount(w, rm, player.ID, err)
}

// History handles GET /api/v1/rooms/{id}/bank/history
func (h *BankHandler) History(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	entries, err := h.ledger.History(r.Context(), roomID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	response.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *BankHandler) writeAccount(w http.ResponseWriter, rm *model.Room, playerID model.PlayerID, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	// The game may have finished and the member still be present; a
	// missing member here means the room changed underneath us
	m := rm.GetMember(playerID)
	if m == nil {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.AccountFromMember(m))
}
