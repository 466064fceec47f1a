// Package admin provides the control plane mounted under /admin: state
// inspection and loading, reset, and simulated time control for tests.
package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fidelia-app/fidelia-server/internal/httpcore"
	"github.com/fidelia-app/fidelia-server/internal/kvstore"
)

// StateStore is implemented by the server's memory store.
type StateStore interface {
	Snapshot() any
	LoadState(data []byte) error
	Reset()
}

// Handler serves the admin endpoints.
type Handler struct {
	state StateStore
	mw    *httpcore.Middleware
	clock *kvstore.Clock
}

// NewHandler creates an admin handler. clock may be nil when time control
// is not wanted.
func NewHandler(state StateStore, mw *httpcore.Middleware, clock *kvstore.Clock) *Handler {
	return &Handler{state: state, mw: mw, clock: clock}
}

// Routes mounts the admin endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/state", h.handleGetState)
		r.Post("/state", h.handleLoadState)
		r.Post("/reset", h.handleReset)
		r.Get("/time", h.handleGetTime)
		r.Post("/time/advance", h.handleTimeAdvance)
		r.Get("/requests", h.handleRequests)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		httpcore.Error(w, http.StatusBadRequest, "reading body failed")
		return
	}
	if err := h.state.LoadState(data); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid state payload: "+err.Error())
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.state.Reset()
	if h.clock != nil {
		h.clock.Reset()
	}
	if h.mw != nil {
		h.mw.ReqLog.Clear()
	}
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleGetTime(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"real": time.Now().Format(time.RFC3339),
	}
	if h.clock != nil {
		body["simulated"] = h.clock.Now().Format(time.RFC3339)
		body["offset"] = h.clock.Offset().String()
	}
	httpcore.JSON(w, http.StatusOK, body)
}

func (h *Handler) handleTimeAdvance(w http.ResponseWriter, r *http.Request) {
	if h.clock == nil {
		httpcore.Error(w, http.StatusBadRequest, "no clock configured")
		return
	}

	var req struct {
		Duration string `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil || d < 0 {
		httpcore.Error(w, http.StatusBadRequest, "invalid duration")
		return
	}

	h.clock.Advance(d)
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"status":    "advanced",
		"by":        d.String(),
		"simulated": h.clock.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleRequests(w http.ResponseWriter, r *http.Request) {
	if h.mw == nil {
		httpcore.JSON(w, http.StatusOK, []httpcore.RequestLogEntry{})
		return
	}
	httpcore.JSON(w, http.StatusOK, h.mw.ReqLog.Entries())
}
