// Package api exposes the loyalty engine over HTTP under /v1.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fidelia-app/fidelia-server/internal/badges"
	"github.com/fidelia-app/fidelia-server/internal/cart"
	"github.com/fidelia-app/fidelia-server/internal/httpcore"
	"github.com/fidelia-app/fidelia-server/internal/rewards"
	"github.com/fidelia-app/fidelia-server/internal/store"
)

// Handler serves the public API.
type Handler struct {
	store       *store.MemoryStore
	badges      *badges.Service
	rewards     *rewards.Service
	multipliers map[string]float64
	logger      *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(st *store.MemoryStore, badgeSvc *badges.Service, rewardSvc *rewards.Service, multipliers map[string]float64, logger *slog.Logger) *Handler {
	if multipliers == nil {
		multipliers = map[string]float64{}
	}
	return &Handler{
		store:       st,
		badges:      badgeSvc,
		rewards:     rewardSvc,
		multipliers: multipliers,
		logger:      logger,
	}
}

// Routes mounts the public API under /v1.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/points/compute", h.handleComputePoints)

		r.Get("/badges", h.handleGetBadges)
		r.Post("/badges/update", h.handleUpdateBadges)

		r.Post("/rewards", h.handleCreateReward)
		r.Get("/rewards", h.handleUserRewards)
		r.Get("/rewards/{id}", h.handleGetReward)
		r.Post("/rewards/{id}/convert", h.handleConvertReward)
		r.Post("/rewards/{id}/earnings", h.handleRecordEarning)
		r.Put("/rewards/{id}", h.handleEditReward)
		r.Delete("/rewards/{id}", h.handleDeleteReward)

		r.Get("/merchants/{merchantID}/rewards", h.handleMerchantRewards)

		r.Get("/carts/{userID}", h.handleGetCart)
		r.Post("/carts/{userID}/items", h.handleAddCartItem)
		r.Delete("/carts/{userID}/items/{productID}", h.handleRemoveCartItem)
	})
}

// writeServiceError maps the typed service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *rewards.ValidationError
	switch {
	case errors.As(err, &verr):
		httpcore.Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, rewards.ErrNotFound):
		httpcore.Error(w, http.StatusNotFound, "reward not found")
	case errors.Is(err, rewards.ErrForbidden):
		httpcore.Error(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, rewards.ErrAlreadyClaimed):
		httpcore.Error(w, http.StatusBadRequest, "reward already claimed")
	case errors.Is(err, rewards.ErrExpired):
		httpcore.Error(w, http.StatusBadRequest, "reward has expired")
	case errors.Is(err, badges.ErrInvalidEvent):
		httpcore.Error(w, http.StatusBadRequest, "invalid event payload")
	case errors.Is(err, cart.ErrInvalidQuantity):
		httpcore.Error(w, http.StatusBadRequest, "quantity must be positive")
	default:
		httpcore.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
