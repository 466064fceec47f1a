package rewards

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fidelia-app/fidelia-server/internal/kvstore"
)

// RewardStore is the persistence collaborator contract. UpdateReward runs
// fn atomically against the stored document; CompareAndClaim is the CAS
// primitive backing the one-time claim transition.
type RewardStore interface {
	LoadReward(id string) (Reward, bool)
	SaveReward(r Reward)
	DeleteReward(id string) bool
	UpdateReward(id string, fn func(r Reward) Reward) bool
	// CompareAndClaim atomically checks claimed==false and, if so, sets
	// claimed=true and binds userID. It reports whether this caller won.
	CompareAndClaim(id, userID string) bool
	QueryRewards(pred func(r Reward) bool) []Reward
}

// Service implements the reward lifecycle operations.
type Service struct {
	store RewardStore
	clock *kvstore.Clock
}

// NewService creates a reward service over the given store and clock.
func NewService(store RewardStore, clock *kvstore.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// CreateInput is the validated input to Create.
type CreateInput struct {
	MerchantID   string
	Type         Type
	StartDate    time.Time
	EndDate      time.Time
	UserID       string // optional pre-assignment
	Points       int
	Promotion    *Promotion
	SpecialOffer *SpecialOffer
	CustomOffer  *CustomOffer
}

func (in *CreateInput) validate() error {
	if in.MerchantID == "" {
		return &ValidationError{Field: "merchant_id", Reason: "is required"}
	}
	valid := false
	for _, t := range ValidTypes {
		if in.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return &ValidationError{Field: "type", Reason: "is unknown"}
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return &ValidationError{Field: "start_date/end_date", Reason: "are required"}
	}
	if !in.StartDate.Before(in.EndDate) {
		return &ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}

	switch in.Type {
	case TypePromotion:
		if in.Promotion == nil || len(in.Promotion.ProductIDs) == 0 || in.Promotion.DiscountValue == 0 {
			return &ValidationError{Field: "promotion", Reason: "requires product_ids and discount_value"}
		}
	case TypeSpecialOffer:
		if in.SpecialOffer == nil {
			return &ValidationError{Field: "special_offer", Reason: "is required"}
		}
	case TypeCustomOffer:
		if in.CustomOffer == nil || in.CustomOffer.Title == "" || in.CustomOffer.Description == "" {
			return &ValidationError{Field: "custom_offer", Reason: "requires title and description"}
		}
	}
	return nil
}

// Create validates the input by type and persists a new reward. Nothing is
// persisted when validation fails.
func (s *Service) Create(in CreateInput) (Reward, error) {
	if err := in.validate(); err != nil {
		return Reward{}, err
	}

	r := Reward{
		ID:           uuid.NewString(),
		MerchantID:   in.MerchantID,
		UserID:       in.UserID,
		Type:         in.Type,
		Promotion:    in.Promotion,
		SpecialOffer: in.SpecialOffer,
		CustomOffer:  in.CustomOffer,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Points:       in.Points,
		History:      []HistoryEntry{},
		CreatedAt:    s.clock.Now(),
	}
	s.store.SaveReward(r)
	return r, nil
}

// Convert claims a reward for a user: first-claim-wins. The claimed flag
// and the user binding flip together in one compare-and-set against the
// store, so of two concurrent converts exactly one succeeds and the other
// observes ErrAlreadyClaimed.
func (s *Service) Convert(rewardID, userID string) (Reward, error) {
	r, ok := s.store.LoadReward(rewardID)
	if !ok {
		return Reward{}, ErrNotFound
	}
	if r.UserID != "" && r.UserID != userID {
		return Reward{}, ErrForbidden
	}
	if r.Claimed {
		return Reward{}, ErrAlreadyClaimed
	}
	if r.Expired(s.clock.Now()) {
		return Reward{}, ErrExpired
	}

	if !s.store.CompareAndClaim(rewardID, userID) {
		return Reward{}, ErrAlreadyClaimed
	}

	claimed, ok := s.store.LoadReward(rewardID)
	if !ok {
		return Reward{}, ErrNotFound
	}
	return claimed, nil
}

// Patch carries the merchant-editable fields. UserID, MerchantID, Claimed
// and History have no representation here: attempts to modify them are
// stripped structurally, not by runtime checks.
type Patch struct {
	StartDate    *time.Time
	EndDate      *time.Time
	Points       *int
	Promotion    *Promotion
	SpecialOffer *SpecialOffer
	CustomOffer  *CustomOffer
}

// Edit applies a patch to a reward owned by merchantID.
func (s *Service) Edit(rewardID, merchantID string, patch Patch) (Reward, error) {
	r, ok := s.store.LoadReward(rewardID)
	if !ok {
		return Reward{}, ErrNotFound
	}
	if r.MerchantID != merchantID {
		return Reward{}, ErrForbidden
	}

	s.store.UpdateReward(rewardID, func(r Reward) Reward {
		if patch.StartDate != nil {
			r.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			r.EndDate = *patch.EndDate
		}
		if patch.Points != nil {
			r.Points = *patch.Points
		}
		if patch.Promotion != nil {
			r.Promotion = patch.Promotion
		}
		if patch.SpecialOffer != nil {
			r.SpecialOffer = patch.SpecialOffer
		}
		if patch.CustomOffer != nil {
			r.CustomOffer = patch.CustomOffer
		}
		return r
	})

	updated, _ := s.store.LoadReward(rewardID)
	return updated, nil
}

// Delete removes a reward. Only the claiming user or the owning merchant
// may delete it.
func (s *Service) Delete(rewardID, callerID string) error {
	r, ok := s.store.LoadReward(rewardID)
	if !ok {
		return ErrNotFound
	}
	canDelete := (r.UserID != "" && r.UserID == callerID) || r.MerchantID == callerID
	if !canDelete {
		return ErrForbidden
	}
	s.store.DeleteReward(rewardID)
	return nil
}

// ListFilter restricts List results.
type ListFilter struct {
	Type       Type // empty matches all types
	ActiveOnly bool
}

// List returns a merchant's rewards, newest first. ActiveOnly restricts to
// rewards whose validity window contains now.
func (s *Service) List(merchantID string, filter ListFilter) []Reward {
	now := s.clock.Now()
	out := s.store.QueryRewards(func(r Reward) bool {
		if r.MerchantID != merchantID {
			return false
		}
		if filter.Type != "" && r.Type != filter.Type {
			return false
		}
		if filter.ActiveOnly && !r.Active(now) {
			return false
		}
		return true
	})
	sortNewestFirst(out)
	return out
}

// ByUser returns the rewards claimed by or pre-assigned to a user, newest
// first.
func (s *Service) ByUser(userID string) []Reward {
	out := s.store.QueryRewards(func(r Reward) bool {
		return r.UserID == userID
	})
	sortNewestFirst(out)
	return out
}

// ByID returns a single reward.
func (s *Service) ByID(rewardID string) (Reward, error) {
	r, ok := s.store.LoadReward(rewardID)
	if !ok {
		return Reward{}, ErrNotFound
	}
	return r, nil
}

// RecordEarning attributes points earned on an order to a reward: it
// appends an audit entry to the history and adds to the points balance,
// atomically against the stored document.
func (s *Service) RecordEarning(rewardID, orderID string, points int) (Reward, error) {
	now := s.clock.Now()
	ok := s.store.UpdateReward(rewardID, func(r Reward) Reward {
		r.Points += points
		r.History = append(r.History, HistoryEntry{
			OrderID:      orderID,
			PointsEarned: points,
			Date:         now,
		})
		return r
	})
	if !ok {
		return Reward{}, ErrNotFound
	}
	updated, _ := s.store.LoadReward(rewardID)
	return updated, nil
}

func sortNewestFirst(rs []Reward) {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}
