package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/energyofmoney/internal/events"
	"github.com/mcoot/energyofmoney/internal/model"
)

// Broadcaster publishes domain events to SSE hubs as JSON
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

var _ events.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish routes room_list_changed to the lobby hub and everything else to
// the room's hub. room_closed is the last message a room hub sends.
func (b *Broadcaster) Publish(_ context.Context, evt model.Event) {
	topic := RoomTopic(evt.RoomID)
	if evt.Type == model.EventRoomListChanged {
		topic = LobbyTopic
	}

	hub := b.hubManager.GetHub(topic)
	if hub == nil {
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("type", string(evt.Type)),
			slog.String("room_id", string(evt.RoomID)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(evt.Type), string(data))

	if evt.Type == model.EventRoomClosed {
		b.hubManager.RemoveHub(topic)
	}
}
