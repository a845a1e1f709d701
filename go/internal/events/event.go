package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a push event delivered to room members.
type Type string

const (
	TypeConnected     Type = "connected"
	TypeRoomUpdate    Type = "roomUpdate"
	TypeAuctionStart  Type = "auctionStart"
	TypeAuctionUpdate Type = "auctionUpdate"
	TypeAuctionTick   Type = "auctionTick"
	TypeChat          Type = "chat"
)

// Event is the envelope for every push. Data holds one of the payload structs.
type Event struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// New builds an event stamped with a fresh id.
func New(roomID string, typ Type, data any, at time.Time) *Event {
	return &Event{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Type:      typ,
		Timestamp: at.UTC(),
		Data:      data,
	}
}

// Broadcaster pushes events to every member of a room. Implementations must not
// block the caller.
type Broadcaster interface {
	Broadcast(roomID string, event *Event)
}

// Fanout delivers each event to several broadcasters in order.
type Fanout []Broadcaster

func (f Fanout) Broadcast(roomID string, event *Event) {
	for _, b := range f {
		if b != nil {
			b.Broadcast(roomID, event)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Broadcast(string, *Event) {}
