package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fidelia-app/fidelia-server/internal/badges"
	"github.com/fidelia-app/fidelia-server/internal/cart"
	"github.com/fidelia-app/fidelia-server/internal/httpcore"
	"github.com/fidelia-app/fidelia-server/internal/loyalty"
	"github.com/fidelia-app/fidelia-server/internal/rewards"
)

// --- points ---

func (h *Handler) handleComputePoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []loyalty.LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	points := loyalty.ComputePoints(req.Items, h.multipliers)
	httpcore.JSON(w, http.StatusOK, map[string]int{"points": points})
}

// --- badges ---

func (h *Handler) handleGetBadges(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httpcore.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"badges":  h.badges.GetView(userID),
	})
}

func (h *Handler) handleUpdateBadges(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		badges.Event
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		httpcore.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	p, err := h.badges.Record(req.UserID, req.Event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"user_id": req.UserID,
		"badges":  badges.View(&p),
	})
}

// --- rewards ---

// rewardRequest is the wire form of a reward create request. Dates arrive
// as RFC 3339 strings.
type rewardRequest struct {
	MerchantID   string                `json:"merchant_id"`
	Type         rewards.Type          `json:"type"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	UserID       string                `json:"user_id"`
	Points       int                   `json:"points"`
	Promotion    *rewards.Promotion    `json:"promotion"`
	SpecialOffer *rewards.SpecialOffer `json:"special_offer"`
	CustomOffer  *rewards.CustomOffer  `json:"custom_offer"`
}

func (h *Handler) handleCreateReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	in := rewards.CreateInput{
		MerchantID:   req.MerchantID,
		Type:         req.Type,
		UserID:       req.UserID,
		Points:       req.Points,
		Promotion:    req.Promotion,
		SpecialOffer: req.SpecialOffer,
		CustomOffer:  req.CustomOffer,
	}
	if req.StartDate != "" {
		t, err := parseDate(req.StartDate)
		if err != nil {
			httpcore.Error(w, http.StatusBadRequest, "start_date must be RFC 3339")
			return
		}
		in.StartDate = t
	}
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			httpcore.Error(w, http.StatusBadRequest, "end_date must be RFC 3339")
			return
		}
		in.EndDate = t
	}

	created, err := h.rewards.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUserRewards(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httpcore.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"rewards": h.rewards.ByUser(userID),
	})
}

func (h *Handler) handleGetReward(w http.ResponseWriter, r *http.Request) {
	reward, err := h.rewards.ByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusOK, reward)
}

func (h *Handler) handleConvertReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		httpcore.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	claimed, err := h.rewards.Convert(chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusOK, claimed)
}

func (h *Handler) handleRecordEarning(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string             `json:"order_id"`
		Points  int                `json:"points"`
		Items   []loyalty.LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrderID == "" {
		httpcore.Error(w, http.StatusBadRequest, "order_id is required")
		return
	}

	// Points may be supplied directly or computed from order lines.
	points := req.Points
	if points == 0 && len(req.Items) > 0 {
		points = loyalty.ComputePoints(req.Items, h.multipliers)
	}

	updated, err := h.rewards.RecordEarning(chi.URLParam(r, "id"), req.OrderID, points)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleEditReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MerchantID   string                `json:"merchant_id"`
		StartDate    string                `json:"start_date"`
		EndDate      string                `json:"end_date"`
		Points       *int                  `json:"points"`
		Promotion    *rewards.Promotion    `json:"promotion"`
		SpecialOffer *rewards.SpecialOffer `json:"special_offer"`
		CustomOffer  *rewards.CustomOffer  `json:"custom_offer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MerchantID == "" {
		httpcore.Error(w, http.StatusBadRequest, "merchant_id is required")
		return
	}

	patch := rewards.Patch{
		Points:       req.Points,
		Promotion:    req.Promotion,
		SpecialOffer: req.SpecialOffer,
		CustomOffer:  req.CustomOffer,
	}
	if req.StartDate != "" {
		t, err := parseDate(req.StartDate)
		if err != nil {
			httpcore.Error(w, http.StatusBadRequest, "start_date must be RFC 3339")
			return
		}
		patch.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			httpcore.Error(w, http.StatusBadRequest, "end_date must be RFC 3339")
			return
		}
		patch.EndDate = &t
	}

	updated, err := h.rewards.Edit(chi.URLParam(r, "id"), req.MerchantID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteReward(w http.ResponseWriter, r *http.Request) {
	callerID := r.URL.Query().Get("caller_id")
	if callerID == "" {
		httpcore.Error(w, http.StatusBadRequest, "caller_id is required")
		return
	}
	if err := h.rewards.Delete(chi.URLParam(r, "id"), callerID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleMerchantRewards(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")
	filter := rewards.ListFilter{
		Type:       rewards.Type(r.URL.Query().Get("type")),
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"merchant_id": merchantID,
		"rewards":     h.rewards.List(merchantID, filter),
	})
}

// --- carts ---

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	c, ok := h.store.LoadCart(userID)
	if !ok {
		c = cart.New(userID)
	}
	httpcore.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		httpcore.Error(w, http.StatusBadRequest, "product_id is required")
		return
	}

	c, ok := h.store.LoadCart(userID)
	if !ok {
		c = cart.New(userID)
	}
	next, err := cart.AddLine(c, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.store.SaveCart(next)
	httpcore.JSON(w, http.StatusOK, next)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	productID := chi.URLParam(r, "productID")

	c, ok := h.store.LoadCart(userID)
	if !ok {
		c = cart.New(userID)
	}
	next := cart.RemoveLine(c, productID)
	h.store.SaveCart(next)
	httpcore.JSON(w, http.StatusOK, next)
}
