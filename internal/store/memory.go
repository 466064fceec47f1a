// Package store holds all server state in memory and implements the
// persistence collaborator contracts of the badge and reward services.
package store

import (
	"encoding/json"
	"time"

	"github.com/fidelia-app/fidelia-server/internal/badges"
	"github.com/fidelia-app/fidelia-server/internal/cart"
	"github.com/fidelia-app/fidelia-server/internal/kvstore"
	"github.com/fidelia-app/fidelia-server/internal/rewards"
)

// MemoryStore holds all server state in memory.
type MemoryStore struct {
	Progress *kvstore.Store[badges.Progress]
	Rewards  *kvstore.Store[rewards.Reward]
	Carts    *kvstore.Store[cart.Cart]
	Clock    *kvstore.Clock
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		Progress: kvstore.New[badges.Progress](),
		Rewards:  kvstore.New[rewards.Reward](),
		Carts:    kvstore.New[cart.Cart](),
		Clock:    kvstore.NewClock(),
	}
}

// --- badges.ProgressStore ---

// LoadProgress returns a user's progress record, if present.
func (s *MemoryStore) LoadProgress(userID string) (badges.Progress, bool) {
	return s.Progress.Get(userID)
}

// SaveProgress upserts a progress record under its user id.
func (s *MemoryStore) SaveProgress(p badges.Progress) {
	s.Progress.Set(p.UserID, p)
}

// --- rewards.RewardStore ---

// LoadReward returns a reward document, if present.
func (s *MemoryStore) LoadReward(id string) (rewards.Reward, bool) {
	return s.Rewards.Get(id)
}

// SaveReward upserts a reward document under its id.
func (s *MemoryStore) SaveReward(r rewards.Reward) {
	s.Rewards.Set(r.ID, r)
}

// DeleteReward removes a reward. It reports whether it existed.
func (s *MemoryStore) DeleteReward(id string) bool {
	return s.Rewards.Delete(id)
}

// UpdateReward applies fn atomically to a stored reward. It reports
// whether the reward existed.
func (s *MemoryStore) UpdateReward(id string, fn func(r rewards.Reward) rewards.Reward) bool {
	found := false
	s.Rewards.Update(id, func(r rewards.Reward, ok bool) (rewards.Reward, bool) {
		if !ok {
			return r, false
		}
		found = true
		return fn(r), true
	})
	return found
}

// CompareAndClaim atomically flips claimed false→true and binds the user.
// Exactly one of any set of concurrent callers wins; the rest observe
// false. This is the primitive behind the at-most-one-claim guarantee.
func (s *MemoryStore) CompareAndClaim(id, userID string) bool {
	won := false
	s.Rewards.Update(id, func(r rewards.Reward, ok bool) (rewards.Reward, bool) {
		if !ok {
			return r, false
		}
		if r.Claimed {
			return r, true
		}
		r.Claimed = true
		r.UserID = userID
		won = true
		return r, true
	})
	return won
}

// QueryRewards returns all rewards matching pred.
func (s *MemoryStore) QueryRewards(pred func(r rewards.Reward) bool) []rewards.Reward {
	return s.Rewards.Filter(func(_ string, r rewards.Reward) bool {
		return pred(r)
	})
}

// --- carts ---

// LoadCart returns a user's cart, if present.
func (s *MemoryStore) LoadCart(userID string) (cart.Cart, bool) {
	return s.Carts.Get(userID)
}

// SaveCart upserts a cart; an empty cart deletes the container instead.
func (s *MemoryStore) SaveCart(c cart.Cart) {
	if c.IsEmpty() {
		s.Carts.Delete(c.UserID)
		return
	}
	s.Carts.Set(c.UserID, c)
}

// --- admin state plane ---

type stateSnapshot struct {
	Progress map[string]badges.Progress `json:"progress"`
	Rewards  map[string]rewards.Reward  `json:"rewards"`
	Carts    map[string]cart.Cart       `json:"carts"`
}

// Snapshot returns full state as a JSON-serializable value.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{
		Progress: s.Progress.Snapshot(),
		Rewards:  s.Rewards.Snapshot(),
		Carts:    s.Carts.Snapshot(),
	}
}

// LoadState loads state from JSON. Absent sections are left untouched.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	if snap.Progress != nil {
		s.Progress.LoadSnapshot(snap.Progress)
	}
	if snap.Rewards != nil {
		s.Rewards.LoadSnapshot(snap.Rewards)
	}
	if snap.Carts != nil {
		s.Carts.LoadSnapshot(snap.Carts)
	}
	return nil
}

// Reset clears all state and reloads the seed fixtures.
func (s *MemoryStore) Reset() {
	s.Progress.Reset()
	s.Rewards.Reset()
	s.Carts.Reset()
	s.Clock.Reset()
	s.SeedDefaults()
}

// SeedDefaults populates the store with fixture rewards for two merchants.
func (s *MemoryStore) SeedDefaults() {
	now := s.Clock.Now()
	in30d := now.Add(30 * 24 * time.Hour)

	s.SaveReward(rewards.Reward{
		ID:         "rw-promo-001",
		MerchantID: "merchant-alpha",
		Type:       rewards.TypePromotion,
		Promotion: &rewards.Promotion{
			ProductIDs:    []string{"prod-001", "prod-002"},
			DiscountValue: 15,
		},
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   in30d,
		History:   []rewards.HistoryEntry{},
		CreatedAt: now.Add(-24 * time.Hour),
	})

	s.SaveReward(rewards.Reward{
		ID:         "rw-offer-001",
		MerchantID: "merchant-alpha",
		Type:       rewards.TypeSpecialOffer,
		SpecialOffer: &rewards.SpecialOffer{
			Kind:       rewards.OfferMultiplicationPoints,
			Multiplier: 2,
			MinPoints:  100,
		},
		StartDate: now.Add(-time.Hour),
		EndDate:   in30d,
		History:   []rewards.HistoryEntry{},
		CreatedAt: now.Add(-time.Hour),
	})

	s.SaveReward(rewards.Reward{
		ID:         "rw-custom-001",
		MerchantID: "merchant-beta",
		Type:       rewards.TypeCustomOffer,
		CustomOffer: &rewards.CustomOffer{
			Title:       "Café offert",
			Description: "Un café offert dès 50 points",
			MinPoints:   50,
		},
		StartDate: now.Add(-time.Hour),
		EndDate:   in30d,
		History:   []rewards.HistoryEntry{},
		CreatedAt: now.Add(-time.Hour),
	})
}
