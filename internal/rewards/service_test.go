package rewards_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelia-app/fidelia-server/internal/rewards"
	"github.com/fidelia-app/fidelia-server/internal/store"
)

func newTestService() (*rewards.Service, *store.MemoryStore) {
	s := store.New()
	return rewards.NewService(s, s.Clock), s
}

func validPromotion(merchantID string, now time.Time) rewards.CreateInput {
	return rewards.CreateInput{
		MerchantID: merchantID,
		Type:       rewards.TypePromotion,
		StartDate:  now.Add(-time.Hour),
		EndDate:    now.Add(24 * time.Hour),
		Promotion: &rewards.Promotion{
			ProductIDs:    []string{"p1"},
			DiscountValue: 10,
		},
	}
}

func TestCreatePromotion(t *testing.T) {
	svc, ms := newTestService()

	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "m1", r.MerchantID)
	assert.False(t, r.Claimed)
	assert.Empty(t, r.History)

	stored, ok := ms.LoadReward(r.ID)
	require.True(t, ok)
	assert.Equal(t, r.ID, stored.ID)
}

func TestCreateValidationFailures(t *testing.T) {
	svc, ms := newTestService()
	now := ms.Clock.Now()
	before := ms.Rewards.Len()

	cases := map[string]rewards.CreateInput{
		"missing merchant": {
			Type:      rewards.TypePromotion,
			StartDate: now,
			EndDate:   now.Add(time.Hour),
			Promotion: &rewards.Promotion{ProductIDs: []string{"p1"}, DiscountValue: 5},
		},
		"unknown type": {
			MerchantID: "m1",
			Type:       "mystery",
			StartDate:  now,
			EndDate:    now.Add(time.Hour),
		},
		"end before start": {
			MerchantID: "m1",
			Type:       rewards.TypePromotion,
			StartDate:  now.Add(time.Hour),
			EndDate:    now,
			Promotion:  &rewards.Promotion{ProductIDs: []string{"p1"}, DiscountValue: 5},
		},
		"promotion without products": {
			MerchantID: "m1",
			Type:       rewards.TypePromotion,
			StartDate:  now,
			EndDate:    now.Add(time.Hour),
			Promotion:  &rewards.Promotion{DiscountValue: 5},
		},
		"special offer without payload": {
			MerchantID: "m1",
			Type:       rewards.TypeSpecialOffer,
			StartDate:  now,
			EndDate:    now.Add(time.Hour),
		},
		"custom offer without title": {
			MerchantID:  "m1",
			Type:        rewards.TypeCustomOffer,
			StartDate:   now,
			EndDate:     now.Add(time.Hour),
			CustomOffer: &rewards.CustomOffer{Description: "d"},
		},
	}

	for name, in := range cases {
		_, err := svc.Create(in)
		assert.True(t, rewards.IsValidation(err), "%s: expected ValidationError, got %v", name, err)
	}

	assert.Equal(t, before, ms.Rewards.Len(), "failed creates must not persist partial rewards")
}

func TestCreateSeasonalLiquidationNeedsNoPayload(t *testing.T) {
	svc, ms := newTestService()
	now := ms.Clock.Now()

	_, err := svc.Create(rewards.CreateInput{
		MerchantID: "m1",
		Type:       rewards.TypeSeasonalLiquidation,
		StartDate:  now,
		EndDate:    now.Add(time.Hour),
	})
	assert.NoError(t, err)
}

func TestConvertHappyPath(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	claimed, err := svc.Convert(r.ID, "u1")
	require.NoError(t, err)
	assert.True(t, claimed.Claimed)
	assert.Equal(t, "u1", claimed.UserID)
}

func TestConvertNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Convert("nope", "u1")
	assert.ErrorIs(t, err, rewards.ErrNotFound)
}

func TestConvertForbiddenForOtherUser(t *testing.T) {
	svc, ms := newTestService()
	in := validPromotion("m1", ms.Clock.Now())
	in.UserID = "u1" // pre-assigned
	r, err := svc.Create(in)
	require.NoError(t, err)

	_, err = svc.Convert(r.ID, "u2")
	assert.ErrorIs(t, err, rewards.ErrForbidden)
}

func TestConvertPreAssignedOwnerSucceeds(t *testing.T) {
	svc, ms := newTestService()
	in := validPromotion("m1", ms.Clock.Now())
	in.UserID = "u1"
	r, err := svc.Create(in)
	require.NoError(t, err)

	claimed, err := svc.Convert(r.ID, "u1")
	require.NoError(t, err)
	assert.True(t, claimed.Claimed)
}

func TestConvertAlreadyClaimed(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	_, err = svc.Convert(r.ID, "u1")
	require.NoError(t, err)

	_, err = svc.Convert(r.ID, "u1")
	assert.ErrorIs(t, err, rewards.ErrAlreadyClaimed)
}

func TestConvertExpired(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	ms.Clock.Advance(48 * time.Hour) // past the 24h end date

	_, err = svc.Convert(r.ID, "u1")
	assert.ErrorIs(t, err, rewards.ErrExpired)

	stored, _ := ms.LoadReward(r.ID)
	assert.False(t, stored.Claimed, "expired convert must not claim")
}

func TestConvertConcurrentSingleWinner(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	const callers = 16
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Convert(r.ID, "u1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, alreadyClaimed := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case err == rewards.ErrAlreadyClaimed:
			alreadyClaimed++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent convert must win")
	assert.Equal(t, callers-1, alreadyClaimed)
}

func TestEditAppliesPatchAndProtectsOwnership(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	newEnd := ms.Clock.Now().Add(72 * time.Hour)
	points := 500
	updated, err := svc.Edit(r.ID, "m1", rewards.Patch{
		EndDate: &newEnd,
		Points:  &points,
	})
	require.NoError(t, err)

	assert.True(t, updated.EndDate.Equal(newEnd))
	assert.Equal(t, 500, updated.Points)
	assert.Equal(t, "m1", updated.MerchantID, "merchant binding must be untouched")
	assert.Equal(t, r.UserID, updated.UserID, "user binding must be untouched")
}

func TestEditForbiddenForOtherMerchant(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	_, err = svc.Edit(r.ID, "m2", rewards.Patch{})
	assert.ErrorIs(t, err, rewards.ErrForbidden)
}

func TestEditNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Edit("nope", "m1", rewards.Patch{})
	assert.ErrorIs(t, err, rewards.ErrNotFound)
}

func TestDeleteByMerchantAndByClaimingUser(t *testing.T) {
	svc, ms := newTestService()

	r1, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(r1.ID, "m1"))
	_, err = svc.ByID(r1.ID)
	assert.ErrorIs(t, err, rewards.ErrNotFound)

	r2, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)
	_, err = svc.Convert(r2.ID, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(r2.ID, "u1"))
}

func TestDeleteForbidden(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	err = svc.Delete(r.ID, "stranger")
	assert.ErrorIs(t, err, rewards.ErrForbidden)

	err = svc.Delete("missing", "m1")
	assert.ErrorIs(t, err, rewards.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, ms := newTestService()
	now := ms.Clock.Now()

	_, err := svc.Create(validPromotion("m1", now))
	require.NoError(t, err)

	_, err = svc.Create(rewards.CreateInput{
		MerchantID:   "m1",
		Type:         rewards.TypeSpecialOffer,
		StartDate:    now.Add(-time.Hour),
		EndDate:      now.Add(time.Hour),
		SpecialOffer: &rewards.SpecialOffer{Kind: rewards.OfferCustom},
	})
	require.NoError(t, err)

	// ended yesterday: excluded by activeOnly
	_, err = svc.Create(rewards.CreateInput{
		MerchantID: "m1",
		Type:       rewards.TypePromotion,
		StartDate:  now.Add(-48 * time.Hour),
		EndDate:    now.Add(-24 * time.Hour),
		Promotion:  &rewards.Promotion{ProductIDs: []string{"p9"}, DiscountValue: 1},
	})
	require.NoError(t, err)

	// other merchant: never listed for m1
	_, err = svc.Create(validPromotion("m2", now))
	require.NoError(t, err)

	all := svc.List("m1", rewards.ListFilter{})
	assert.Len(t, all, 3)

	active := svc.List("m1", rewards.ListFilter{ActiveOnly: true})
	assert.Len(t, active, 2)

	promos := svc.List("m1", rewards.ListFilter{Type: rewards.TypePromotion})
	assert.Len(t, promos, 2)

	activePromos := svc.List("m1", rewards.ListFilter{Type: rewards.TypePromotion, ActiveOnly: true})
	assert.Len(t, activePromos, 1)
}

func TestByUser(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	assert.Empty(t, svc.ByUser("u1"))

	_, err = svc.Convert(r.ID, "u1")
	require.NoError(t, err)

	mine := svc.ByUser("u1")
	require.Len(t, mine, 1)
	assert.Equal(t, r.ID, mine[0].ID)
}

func TestRecordEarningAppendsHistory(t *testing.T) {
	svc, ms := newTestService()
	r, err := svc.Create(validPromotion("m1", ms.Clock.Now()))
	require.NoError(t, err)

	updated, err := svc.RecordEarning(r.ID, "order-1", 300)
	require.NoError(t, err)
	assert.Equal(t, 300, updated.Points)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "order-1", updated.History[0].OrderID)
	assert.Equal(t, 300, updated.History[0].PointsEarned)

	// history is append-only: a second earning adds a second entry
	updated, err = svc.RecordEarning(r.ID, "order-2", 150)
	require.NoError(t, err)
	assert.Equal(t, 450, updated.Points)
	require.Len(t, updated.History, 2)
	assert.Equal(t, "order-1", updated.History[0].OrderID)

	_, err = svc.RecordEarning("missing", "order-3", 10)
	assert.ErrorIs(t, err, rewards.ErrNotFound)
}
