package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/energyofmoney/internal/api/middleware"
	"github.com/mcoot/energyofmoney/internal/api/request"
	"github.com/mcoot/energyofmoney/internal/api/response"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/room"
)

// RoomHandler handles the room directory and membership endpoints
type RoomHandler struct {
	rooms  *room.Controller
	logger *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Controller, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:  rooms,
		logger: logger,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if rooms == nil {
		rooms = []model.RoomSummary{}
	}
	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}

// Create handles POST /api/v1/rooms. The caller becomes the creator and
// its first member.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateRoomRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.rooms.CreateRoom(r.Context(), room.CreateRequest{
		Name:      req.Name,
		Password:  req.Password,
		CreatorID: player.ID,
		Config: model.RoomConfig{
			MaxPlayers:          req.MaxPlayers,
			TurnDurationSeconds: req.TurnDurationSeconds,
			GameDurationSeconds: req.GameDurationSeconds,
			StartingBalance:     req.StartingBalance,
			ManualStart:         req.ManualStart,
			WinPassiveIncome:    req.WinPassiveIncome,
		},
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	joined, err := h.rooms.JoinRoom(r.Context(), created.ID, *player, req.Password)
	if err != nil {
		if rmErr := h.rooms.RemoveRoom(r.Context(), created.ID); rmErr != nil {
			h.logger.Error("failed to remove room after creator join failed",
				slog.String("room_id", string(created.ID)),
				slog.String("error", rmErr.Error()))
		}
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(joined))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.JoinRoomRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.rooms.JoinRoom(r.Context(), roomID(r), *player, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Leave handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if _, err := h.rooms.LeaveRoom(r.Context(), roomID(r), player.ID); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Ready handles POST /api/v1/rooms/{id}/ready
func (h *RoomHandler) Ready(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.ReadyRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}
	ready := req.Ready == nil || *req.Ready

	rm, err := h.rooms.SetReady(r.Context(), roomID(r), player.ID, ready)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Start handles POST /api/v1/rooms/{id}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	rm, err := h.rooms.StartGame(r.Context(), roomID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}
