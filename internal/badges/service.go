package badges

import (
	"sync"

	"github.com/fidelia-app/fidelia-server/internal/kvstore"
	"github.com/fidelia-app/fidelia-server/internal/loyalty"
)

// ProgressStore is the persistence collaborator contract for progress
// records.
type ProgressStore interface {
	LoadProgress(userID string) (Progress, bool)
	SaveProgress(p Progress)
}

// Service owns the badge state machine. Record is the single mutation
// entry point; updates for one user are serialized through a per-user
// lock so concurrent events cannot lose counter increments, while events
// for different users proceed independently.
type Service struct {
	store ProgressStore
	clock *kvstore.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a badge service over the given store and clock.
func NewService(store ProgressStore, clock *kvstore.Clock) *Service {
	return &Service{
		store: store,
		clock: clock,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Record applies one activity event to the user's progress, creating the
// record lazily on first activity, and returns the updated progress.
func (s *Service) Record(userID string, ev Event) (Progress, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	p, ok := s.store.LoadProgress(userID)
	if !ok {
		p = NewProgress(userID)
	}

	today := s.clock.Now().UTC().Format(loyalty.DateLayout)
	if err := p.Apply(ev, today); err != nil {
		return Progress{}, err
	}

	s.store.SaveProgress(p)
	return p, nil
}

// GetView returns the badge display projection for a user. A user with no
// recorded activity gets the zero view; nothing is persisted on read.
func (s *Service) GetView(userID string) []Status {
	p, ok := s.store.LoadProgress(userID)
	if !ok {
		p = NewProgress(userID)
	}
	return View(&p)
}
