// Package rewards manages the lifecycle of redeemable rewards: creation,
// eligibility, one-time claim, expiry, and ownership checks.
package rewards

import "time"

// Type discriminates reward kinds. Each kind carries its own payload,
// validated at creation.
type Type string

const (
	TypePromotion           Type = "promotion"
	TypeSpecialOffer        Type = "specialOffer"
	TypeSeasonalLiquidation Type = "seasonal_liquidation"
	TypeCustomOffer         Type = "customOffer"
)

// ValidTypes lists the accepted reward types.
var ValidTypes = []Type{TypePromotion, TypeSpecialOffer, TypeSeasonalLiquidation, TypeCustomOffer}

// Promotion is the payload of a promotion reward: a product-level discount.
type Promotion struct {
	ProductIDs     []string  `json:"product_ids"`
	DiscountValue  float64   `json:"discount_value"`
	DiscountValues []float64 `json:"discount_values,omitempty"`
}

// SpecialOfferKind discriminates special offer payloads.
type SpecialOfferKind string

const (
	OfferMultiplicationPoints SpecialOfferKind = "multiplicationPoints"
	OfferBuyOneGetOne         SpecialOfferKind = "buyOneGetOne"
	OfferCustom               SpecialOfferKind = "custom"
)

// SpecialOffer is the payload of a specialOffer reward.
type SpecialOffer struct {
	Kind         SpecialOfferKind `json:"type"`
	Multiplier   float64          `json:"multiplier,omitempty"`
	BuyProductID string           `json:"buy_product_id,omitempty"`
	GetProductID string           `json:"get_product_id,omitempty"`
	MinPoints    int              `json:"min_points,omitempty"`
	Description  string           `json:"description,omitempty"`
}

// CustomOffer is the payload of a customOffer reward.
type CustomOffer struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Terms          string `json:"terms,omitempty"`
	MinPoints      int    `json:"min_points,omitempty"`
	MaxRedemptions int    `json:"max_redemptions,omitempty"`
}

// HistoryEntry is one append-only audit record of points earned against a
// reward. Entries are never mutated or truncated.
type HistoryEntry struct {
	OrderID      string    `json:"order_id"`
	PointsEarned int       `json:"points_earned"`
	Date         time.Time `json:"date"`
}

// Reward is a redeemable reward document.
//
// UserID is empty until the reward is claimed (some rewards are pre-assigned
// at creation). Claimed transitions false→true exactly once, at conversion.
// Expiry is derived from EndDate against the injected clock, never stored.
type Reward struct {
	ID           string         `json:"id"`
	MerchantID   string         `json:"merchant_id"`
	UserID       string         `json:"user_id,omitempty"`
	Type         Type           `json:"type"`
	Promotion    *Promotion     `json:"promotion,omitempty"`
	SpecialOffer *SpecialOffer  `json:"special_offer,omitempty"`
	CustomOffer  *CustomOffer   `json:"custom_offer,omitempty"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	Points       int            `json:"points"`
	Claimed      bool           `json:"claimed"`
	History      []HistoryEntry `json:"history"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Active reports whether now falls inside the reward's validity window.
func (r Reward) Active(now time.Time) bool {
	return !now.Before(r.StartDate) && !now.After(r.EndDate)
}

// Expired reports whether the validity window has passed.
func (r Reward) Expired(now time.Time) bool {
	return now.After(r.EndDate)
}
