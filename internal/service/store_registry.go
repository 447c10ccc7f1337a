package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/goaltracker/internal/metrics"
	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/repository"
)

// StoreRegistry hands out one GoalStore per signed-in user. A store is loaded
// on first use and torn down on logout.
type StoreRegistry struct {
	goals      repository.GoalRepository
	milestones repository.MilestoneRepository

	mu     sync.Mutex
	stores map[string]*registryEntry
}

// loadTimeout bounds a store load that is detached from the request.
const loadTimeout = 15 * time.Second

type registryEntry struct {
	store *GoalStore

	loadMu sync.Mutex
	loaded bool
}

func NewStoreRegistry(goals repository.GoalRepository, milestones repository.MilestoneRepository) *StoreRegistry {
	return &StoreRegistry{
		goals:      goals,
		milestones: milestones,
		stores:     map[string]*registryEntry{},
	}
}

// Open returns the user's store, performing the initial fetch the first time.
// A failed fetch does not fail Open; it shows up in the store's Err and the
// next Open fetches again. The fetch outlives a cancelled request.
func (r *StoreRegistry) Open(ctx context.Context, userID string) (*GoalStore, error) {
	if userID == "" {
		return nil, model.ErrNotAuthenticated
	}

	r.mu.Lock()
	entry, ok := r.stores[userID]
	if !ok {
		entry = &registryEntry{store: NewGoalStore(userID, r.goals, r.milestones)}
		r.stores[userID] = entry
		metrics.StoreOpened()
	}
	r.mu.Unlock()

	entry.loadMu.Lock()
	defer entry.loadMu.Unlock()

	if !entry.loaded || entry.store.Err() != nil {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		entry.store.Refresh(loadCtx)
		entry.loaded = true
		if err := entry.store.Err(); err != nil {
			slog.Warn("goal store opened with load error", "user_id", userID, "error", err)
		}
	}
	return entry.store, nil
}

// Close tears down the user's store. Closing an unknown user is a no-op.
func (r *StoreRegistry) Close(userID string) {
	r.mu.Lock()
	entry, ok := r.stores[userID]
	delete(r.stores, userID)
	r.mu.Unlock()

	if !ok {
		return
	}
	entry.store.Close()
	metrics.StoreClosed()
	slog.Info("goal store closed", "user_id", userID)
}

func (r *StoreRegistry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Close(id)
	}
}

func (r *StoreRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
