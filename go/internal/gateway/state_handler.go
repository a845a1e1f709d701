package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/auctionhouse/go/internal/auction"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SaleLister reads archived auction outcomes.
type SaleLister interface {
	ListSalesByRoom(ctx context.Context, roomID string) ([]models.Sale, error)
}

// StateHandler serves read-only room state over HTTP
type StateHandler struct {
	engine Engine
	sales  SaleLister
}

// NewStateHandler creates a state handler. sales may be nil when the archive is disabled.
func NewStateHandler(engine Engine, sales SaleLister) *StateHandler {
	return &StateHandler{
		engine: engine,
		sales:  sales,
	}
}

// HandleGetRoom handles GET /api/rooms/{id}
func (h *StateHandler) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		WriteError(w, http.StatusBadRequest, "room id is required")
		return
	}

	snap, err := h.engine.Room(roomID)
	if errors.Is(err, auction.ErrRoomNotFound) {
		WriteError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room state")
		WriteError(w, http.StatusInternalServerError, "failed to get room state")
		return
	}

	WriteJSON(w, http.StatusOK, snap)
}

// HandleListSales handles GET /api/rooms/{id}/sales
func (h *StateHandler) HandleListSales(w http.ResponseWriter, r *http.Request) {
	if h.sales == nil {
		WriteError(w, http.StatusNotImplemented, "sale archive is disabled")
		return
	}

	roomID := chi.URLParam(r, "id")
	sales, err := h.sales.ListSalesByRoom(r.Context(), roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to list sales")
		WriteError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}
	if sales == nil {
		sales = []models.Sale{}
	}

	WriteJSON(w, http.StatusOK, sales)
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(r chi.Router) {
	r.Get("/api/rooms/{id}", h.HandleGetRoom)
	r.Get("/api/rooms/{id}/sales", h.HandleListSales)
}
