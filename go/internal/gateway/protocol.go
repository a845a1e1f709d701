package gateway

import (
	"errors"
	"strings"

	"github.com/mcdev12/auctionhouse/go/internal/auction"
	"github.com/mcdev12/auctionhouse/go/internal/events"
)

// Engine is the subset of the auction engine the transports drive.
type Engine interface {
	CreateRoom(roomID string, capacity int, creatorID, username string) (events.RoomSnapshot, error)
	JoinRoom(roomID, participantID, username string) (events.RoomSnapshot, error)
	StartGame(roomID, requesterID string) error
	Bid(roomID, participantID string, amount int) error
	Skip(roomID, participantID string) error
	Room(roomID string) (events.RoomSnapshot, error)
	RemoveParticipant(roomID, participantID string)
}

// RequestType names a client request frame.
type RequestType string

const (
	RequestCreateRoom  RequestType = "createRoom"
	RequestJoinRoom    RequestType = "joinRoom"
	RequestStartGame   RequestType = "startGame"
	RequestBid         RequestType = "bid"
	RequestSkip        RequestType = "skip"
	RequestRequestRoom RequestType = "requestRoom"
	RequestLeave       RequestType = "leave"
)

// ClientMessage is a request frame sent by a client over the websocket.
type ClientMessage struct {
	Type      RequestType `json:"type"`
	RequestID string      `json:"requestId,omitempty"`
	RoomID    string      `json:"roomId,omitempty"`
	Capacity  int         `json:"capacity,omitempty"`
	Username  string      `json:"username,omitempty"`
	Amount    int         `json:"amount,omitempty"`
}

// Ack answers exactly one request.
type Ack struct {
	Type      string               `json:"type"`
	RequestID string               `json:"requestId,omitempty"`
	OK        bool                 `json:"ok"`
	Code      string               `json:"code,omitempty"`
	Msg       string               `json:"msg,omitempty"`
	Data      *events.RoomSnapshot `json:"data,omitempty"`
}

// Error codes for faults outside the auction domain.
const (
	CodeBadRequest = "BadRequest"
	CodeInternal   = "Internal"
)

func okAck(requestID string, snap *events.RoomSnapshot) Ack {
	return Ack{Type: "ack", RequestID: requestID, OK: true, Data: snap}
}

// errorAck maps err to a failed ack, keeping the domain code when present.
func errorAck(requestID string, err error) Ack {
	ack := Ack{Type: "ack", RequestID: requestID, Msg: err.Error(), Code: CodeInternal}
	var derr *auction.Error
	if errors.As(err, &derr) {
		ack.Code = string(derr.Code)
	}
	return ack
}

func badRequest(requestID, msg string) Ack {
	return Ack{Type: "ack", RequestID: requestID, Code: CodeBadRequest, Msg: msg}
}

// Dispatcher executes client requests on behalf of a participant.
type Dispatcher struct {
	engine Engine
}

// NewDispatcher wraps engine.
func NewDispatcher(engine Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// Dispatch runs msg for participantID and returns its ack. joined reports the
// room the participant entered, if any, so the transport can subscribe it.
func (d *Dispatcher) Dispatch(participantID string, msg ClientMessage) (ack Ack, joined string) {
	roomID := strings.TrimSpace(msg.RoomID)
	if roomID == "" && msg.Type != "" {
		return badRequest(msg.RequestID, "roomId is required"), ""
	}

	switch msg.Type {
	case RequestCreateRoom:
		snap, err := d.engine.CreateRoom(roomID, msg.Capacity, participantID, username(msg.Username, participantID))
		if err != nil {
			return errorAck(msg.RequestID, err), ""
		}
		return okAck(msg.RequestID, &snap), roomID

	case RequestJoinRoom:
		snap, err := d.engine.JoinRoom(roomID, participantID, username(msg.Username, participantID))
		if err != nil {
			return errorAck(msg.RequestID, err), ""
		}
		return okAck(msg.RequestID, &snap), roomID

	case RequestStartGame:
		if err := d.engine.StartGame(roomID, participantID); err != nil {
			return errorAck(msg.RequestID, err), ""
		}
		return okAck(msg.RequestID, nil), ""

	case RequestBid:
		if err := d.engine.Bid(roomID, participantID, msg.Amount); err != nil {
			return errorAck(msg.RequestID, err), ""
		}
		return okAck(msg.RequestID, nil), ""

	case RequestSkip:
		if err := d.engine.Skip(roomID, participantID); err != nil {
			return errorAck(msg.RequestID, err), ""
		}
		return okAck(msg.RequestID, nil), ""

	case RequestRequestRoom:
		snap, err := d.engine.Room(roomID)
		if err != nil {
			return errorAck(msg.RequestID, err), ""
		}
		return okAck(msg.RequestID, &snap), ""

	case RequestLeave:
		d.engine.RemoveParticipant(roomID, participantID)
		return okAck(msg.RequestID, nil), ""

	default:
		return badRequest(msg.RequestID, "unknown request type "+string(msg.Type)), ""
	}
}

func username(name, participantID string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if len(participantID) > 8 {
		return "Player-" + participantID[:8]
	}
	return "Player-" + participantID
}
