package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

const (
	// AuctionServiceName is the fully-qualified name of the auction RPC service.
	AuctionServiceName = "auction.v1.AuctionService"

	CreateRoomProcedure = "/auction.v1.AuctionService/CreateRoom"
	JoinRoomProcedure   = "/auction.v1.AuctionService/JoinRoom"
	StartGameProcedure  = "/auction.v1.AuctionService/StartGame"
	BidProcedure        = "/auction.v1.AuctionService/Bid"
	SkipProcedure       = "/auction.v1.AuctionService/Skip"
	GetRoomProcedure    = "/auction.v1.AuctionService/GetRoom"
	LeaveProcedure      = "/auction.v1.AuctionService/Leave"

	// ParticipantHeader carries the caller's participant id.
	ParticipantHeader = "Participant-Id"
)

var errMissingParticipant = errors.New("missing " + ParticipantHeader + " header")

// JSONCodec lets connect carry plain Go structs as JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type CreateRoomRequest struct {
	RoomID   string `json:"roomId"`
	Capacity int    `json:"capacity"`
	Username string `json:"username"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type BidRequest struct {
	RoomID string `json:"roomId"`
	Amount int    `json:"amount"`
}

// RoomRequest addresses a room without further arguments.
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

// AuctionRPC serves the auction operations over connect. Domain failures are
// returned as ok:false acks; only protocol faults become RPC errors.
type AuctionRPC struct {
	dispatcher *Dispatcher
}

// NewAuctionRPC creates the RPC service.
func NewAuctionRPC(engine Engine) *AuctionRPC {
	return &AuctionRPC{dispatcher: NewDispatcher(engine)}
}

func (s *AuctionRPC) CreateRoom(ctx context.Context, req *connect.Request[CreateRoomRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{
		Type:     RequestCreateRoom,
		RoomID:   req.Msg.RoomID,
		Capacity: req.Msg.Capacity,
		Username: req.Msg.Username,
	})
}

func (s *AuctionRPC) JoinRoom(ctx context.Context, req *connect.Request[JoinRoomRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{
		Type:     RequestJoinRoom,
		RoomID:   req.Msg.RoomID,
		Username: req.Msg.Username,
	})
}

func (s *AuctionRPC) StartGame(ctx context.Context, req *connect.Request[RoomRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{Type: RequestStartGame, RoomID: req.Msg.RoomID})
}

func (s *AuctionRPC) Bid(ctx context.Context, req *connect.Request[BidRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{Type: RequestBid, RoomID: req.Msg.RoomID, Amount: req.Msg.Amount})
}

func (s *AuctionRPC) Skip(ctx context.Context, req *connect.Request[RoomRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{Type: RequestSkip, RoomID: req.Msg.RoomID})
}

func (s *AuctionRPC) GetRoom(ctx context.Context, req *connect.Request[RoomRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{Type: RequestRequestRoom, RoomID: req.Msg.RoomID})
}

func (s *AuctionRPC) Leave(ctx context.Context, req *connect.Request[RoomRequest]) (*connect.Response[Ack], error) {
	return s.call(req.Header(), ClientMessage{Type: RequestLeave, RoomID: req.Msg.RoomID})
}

func (s *AuctionRPC) call(header http.Header, msg ClientMessage) (*connect.Response[Ack], error) {
	participantID := strings.TrimSpace(header.Get(ParticipantHeader))
	if participantID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errMissingParticipant)
	}

	ack, _ := s.dispatcher.Dispatch(participantID, msg)
	if !ack.OK {
		log.Debug().
			Str("participant_id", participantID).
			Str("type", string(msg.Type)).
			Str("code", ack.Code).
			Msg("rpc request rejected")
	}
	return connect.NewResponse(&ack), nil
}

// NewAuctionServiceHandler builds an HTTP handler for every procedure of the
// service. It returns the path on which to mount the handler.
func NewAuctionServiceHandler(svc *AuctionRPC, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	createRoom := connect.NewUnaryHandler(CreateRoomProcedure, svc.CreateRoom, opts...)
	joinRoom := connect.NewUnaryHandler(JoinRoomProcedure, svc.JoinRoom, opts...)
	startGame := connect.NewUnaryHandler(StartGameProcedure, svc.StartGame, opts...)
	bid := connect.NewUnaryHandler(BidProcedure, svc.Bid, opts...)
	skip := connect.NewUnaryHandler(SkipProcedure, svc.Skip, opts...)
	getRoom := connect.NewUnaryHandler(GetRoomProcedure, svc.GetRoom, opts...)
	leave := connect.NewUnaryHandler(LeaveProcedure, svc.Leave, opts...)

	return "/" + AuctionServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CreateRoomProcedure:
			createRoom.ServeHTTP(w, r)
		case JoinRoomProcedure:
			joinRoom.ServeHTTP(w, r)
		case StartGameProcedure:
			startGame.ServeHTTP(w, r)
		case BidProcedure:
			bid.ServeHTTP(w, r)
		case SkipProcedure:
			skip.ServeHTTP(w, r)
		case GetRoomProcedure:
			getRoom.ServeHTTP(w, r)
		case LeaveProcedure:
			leave.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
