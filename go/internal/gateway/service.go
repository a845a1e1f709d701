package gateway

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Service bundles the client-facing transports: websocket, connect RPC and REST state
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	rpc               *AuctionRPC
}

// NewService creates a gateway over engine. The engine is expected to push its
// events into connectionManager. sales may be nil.
func NewService(connectionManager *ConnectionManager, engine Engine, sales SaleLister) *Service {
	connectionManager.attach(engine)

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		stateHandler:      NewStateHandler(engine, sales),
		rpc:               NewAuctionRPC(engine),
	}
}

// Start runs the broadcast loop until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting auction gateway")
	s.connectionManager.Start(ctx)
	log.Info().Msg("auction gateway stopped")
}

// RegisterRoutes registers the WebSocket, RPC and state routes
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/ws", s.wsHandler.HandleConnection)
	r.Get("/ws/stats", s.wsHandler.HandleConnectionStats)
	s.stateHandler.RegisterStateRoutes(r)

	path, handler := NewAuctionServiceHandler(s.rpc)
	r.Mount(path, handler)

	log.Info().Msg("gateway routes registered")
}

// Stats returns statistics about active connections
func (s *Service) Stats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
