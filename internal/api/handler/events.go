package handler

import (
	"net/http"

	"github.com/mcoot/energyofmoney/internal/api/middleware"
	"github.com/mcoot/energyofmoney/internal/services/room"
	"github.com/mcoot/energyofmoney/internal/web/sse"
)

// EventsHandler serves the lobby and per-room event streams
type EventsHandler struct {
	rooms *room.Controller
	hubs  *sse.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(rooms *room.Controller, hubs *sse.HubManager) *EventsHandler {
	return &EventsHandler{rooms: rooms, hubs: hubs}
}

// Lobby handles GET /api/v1/events
func (h *EventsHandler) Lobby(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sse.ServeSSE(w, r, h.hubs.GetOrCreateHub(sse.LobbyTopic), player.ID)
}

// Room handles GET /api/v1/rooms/{id}/events. Only members may subscribe.
func (h *EventsHandler) Room(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if rm.GetMember(player.ID) == nil {
		WriteError(w, NewForbiddenError("join the room to follow its events"))
		return
	}

	sse.ServeSSE(w, r, h.hubs.GetOrCreateHub(sse.RoomTopic(rm.ID)), player.ID)
}
