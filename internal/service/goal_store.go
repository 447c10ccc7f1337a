package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/templui/goaltracker/internal/metrics"
	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/progress"
	"github.com/templui/goaltracker/internal/repository"
	"github.com/templui/goaltracker/internal/validation"
)

type StoreState string

const (
	StateLoading StoreState = "loading"
	StateReady   StoreState = "ready"
)

// GoalStore owns the in-process copy of one user's goals. Local state only
// changes after the backend confirms a write. Callers get deep copies.
//
// Writes are serialized in issuance order by writeMu; mu guards the local
// collection. Subscribers run with writeMu held and must not call back into
// the store's mutating methods.
type GoalStore struct {
	userID     string
	goals      repository.GoalRepository
	milestones repository.MilestoneRepository

	now   func() time.Time
	newID func() string

	writeMu sync.Mutex

	mu          sync.RWMutex
	state       StoreState
	loadErr     error
	closed      bool
	items       []*model.Goal
	subscribers map[int]func([]*model.Goal)
	nextSubID   int
}

func NewGoalStore(userID string, goals repository.GoalRepository, milestones repository.MilestoneRepository) *GoalStore {
	return &GoalStore{
		userID:      userID,
		goals:       goals,
		milestones:  milestones,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.Must(uuid.NewV7()).String() },
		state:       StateLoading,
		items:       []*model.Goal{},
		subscribers: map[int]func([]*model.Goal){},
	}
}

func (s *GoalStore) UserID() string { return s.userID }

func (s *GoalStore) State() StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error of the last load, if it failed.
func (s *GoalStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Refresh fetches the user's goals. A failure is recorded in Err and the
// last-known collection is kept; the store is ready either way.
func (s *GoalStore) Refresh(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		s.finishLoad(nil, err)
		return
	}

	var fetched []*model.Goal
	err := s.remote("fetch_goals", func() error {
		var err error
		fetched, err = s.goals.Goals(ctx, s.userID)
		return err
	})
	metrics.RecordStoreLoad(err)
	s.finishLoad(fetched, err)
}

// ApplySnapshot replaces local state with goals pushed by a listener.
// It may be called at any time, including after Close, where it is ignored.
func (s *GoalStore) ApplySnapshot(goals []*model.Goal) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.requireUser() != nil {
		return
	}
	s.finishLoad(goals, nil)
}

func (s *GoalStore) finishLoad(goals []*model.Goal, err error) {
	s.mu.Lock()
	s.state = StateReady
	s.loadErr = err
	if err == nil {
		s.items = make([]*model.Goal, 0, len(goals))
		for _, g := range goals {
			c := g.Clone()
			c.Progress = progress.GoalProgress(c)
			s.items = append(s.items, c)
		}
	}
	s.mu.Unlock()

	if err == nil {
		s.notify()
	}
}

// Subscribe registers fn to receive a fresh snapshot after every applied change.
func (s *GoalStore) Subscribe(fn func([]*model.Goal)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Close drops local state; every later call fails with ErrNotAuthenticated.
func (s *GoalStore) Close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.items = []*model.Goal{}
	s.subscribers = map[int]func([]*model.Goal){}
	s.mu.Unlock()
}

// Goals returns a snapshot of every goal in display (creation) order.
func (s *GoalStore) Goals() []*model.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *GoalStore) Goal(id string) (*model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("goal %s: %w", id, model.ErrNotFound)
	}
	return s.items[i].Clone(), nil
}

// GoalProgress recomputes progress from the milestones, ignoring the stored
// field. Unknown goals report 0.
func (s *GoalStore) GoalProgress(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return 0
	}
	return progress.GoalProgress(s.items[i])
}

func (s *GoalStore) Summarize(now time.Time) progress.Summary {
	return progress.Summarize(s.Goals(), now)
}

// AddGoal persists the goal together with its milestones and adds it locally
// once the backend has confirmed. Empty ids are generated.
func (s *GoalStore) AddGoal(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return nil, err
	}

	g := goal.Clone()
	now := s.now()
	g.UserID = s.userID
	if g.ID == "" {
		g.ID = s.newID()
	}
	for i := range g.Milestones {
		if g.Milestones[i].ID == "" {
			g.Milestones[i].ID = s.newID()
		}
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	if g.ReminderFrequency == "" {
		g.ReminderFrequency = model.ReminderNone
	}
	g.Progress = progress.GoalProgress(g)
	g.CompletedAt = completedAt(g.Progress, g.CompletedAt, now)

	err := validation.ValidateGoal(g)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	exists := s.indexLocked(g.ID) >= 0
	s.mu.RUnlock()
	if exists {
		return nil, model.NewValidationError("id", "already exists")
	}

	err = s.remote("create_goal", func() error {
		return s.goals.Create(ctx, g)
	}, "goal_id", g.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = append(s.items, g)
	s.mu.Unlock()
	s.notify()

	slog.Info("goal created", "user_id", s.userID, "goal_id", g.ID, "milestones", len(g.Milestones))
	return g.Clone(), nil
}

// UpdateGoal applies a partial patch. Progress is not patchable.
func (s *GoalStore) UpdateGoal(ctx context.Context, id string, patch model.GoalPatch) (*model.Goal, error) {
	err := validation.ValidateGoalPatch(patch)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return nil, err
	}

	i, err := s.index(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.remote("patch_goal", func() error {
		return s.goals.Patch(ctx, s.userID, id, patch, now)
	}, "goal_id", id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	g := s.items[i]
	patch.Apply(g)
	g.UpdatedAt = now
	updated := g.Clone()
	s.mu.Unlock()
	s.notify()

	return updated, nil
}

// DeleteGoal removes the goal and all of its milestones.
func (s *GoalStore) DeleteGoal(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return err
	}

	i, err := s.index(id)
	if err != nil {
		return err
	}

	err = s.remote("delete_goal", func() error {
		return s.goals.Delete(ctx, s.userID, id)
	}, "goal_id", id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = slices.Delete(s.items, i, i+1)
	s.mu.Unlock()
	s.notify()

	slog.Info("goal deleted", "user_id", s.userID, "goal_id", id)
	return nil
}

// AddMilestone appends a milestone to the goal and recomputes its progress.
// If only the progress write fails, the milestone is returned along with the error.
func (s *GoalStore) AddMilestone(ctx context.Context, goalID string, milestone *model.Milestone) (*model.Milestone, error) {
	err := validation.ValidateMilestone(milestone)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return nil, err
	}

	i, err := s.index(goalID)
	if err != nil {
		return nil, err
	}

	m := milestone.Clone()
	if m.ID == "" {
		m.ID = s.newID()
	}
	if s.items[i].Milestone(m.ID) >= 0 {
		return nil, model.NewValidationError("id", "already exists")
	}

	err = s.remote("create_milestone", func() error {
		return s.milestones.Create(ctx, s.userID, goalID, &m)
	}, "goal_id", goalID, "milestone_id", m.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items[i].Milestones = append(s.items[i].Milestones, m.Clone())
	s.mu.Unlock()

	err = s.syncProgress(ctx, i)
	s.notify()
	return &m, err
}

// UpdateMilestone applies a partial patch to one milestone.
func (s *GoalStore) UpdateMilestone(ctx context.Context, goalID, milestoneID string, patch model.MilestonePatch) (*model.Milestone, error) {
	err := validation.ValidateMilestonePatch(patch)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return nil, err
	}

	return s.patchMilestone(ctx, "patch_milestone", goalID, milestoneID, func(model.Milestone) model.MilestonePatch {
		return patch
	})
}

// ToggleMilestoneCompleted flips the completed flag and persists the
// recomputed progress of the parent goal.
func (s *GoalStore) ToggleMilestoneCompleted(ctx context.Context, goalID, milestoneID string) (*model.Milestone, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return nil, err
	}

	return s.patchMilestone(ctx, "toggle_milestone", goalID, milestoneID, func(current model.Milestone) model.MilestonePatch {
		completed := !current.Completed
		return model.MilestonePatch{Completed: &completed}
	})
}

// patchMilestone must be called with writeMu held.
func (s *GoalStore) patchMilestone(ctx context.Context, op, goalID, milestoneID string, build func(model.Milestone) model.MilestonePatch) (*model.Milestone, error) {
	i, j, err := s.milestoneIndex(goalID, milestoneID)
	if err != nil {
		return nil, err
	}

	patch := build(s.items[i].Milestones[j])
	err = s.remote(op, func() error {
		return s.milestones.Patch(ctx, s.userID, goalID, milestoneID, patch)
	}, "goal_id", goalID, "milestone_id", milestoneID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	m := &s.items[i].Milestones[j]
	patch.Apply(m)
	updated := m.Clone()
	s.mu.Unlock()

	err = s.syncProgress(ctx, i)
	s.notify()
	return &updated, err
}

// DeleteMilestone removes one milestone and recomputes the goal's progress.
func (s *GoalStore) DeleteMilestone(ctx context.Context, goalID, milestoneID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireUser(); err != nil {
		return err
	}

	i, j, err := s.milestoneIndex(goalID, milestoneID)
	if err != nil {
		return err
	}

	err = s.remote("delete_milestone", func() error {
		return s.milestones.Delete(ctx, s.userID, goalID, milestoneID)
	}, "goal_id", goalID, "milestone_id", milestoneID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items[i].Milestones = slices.Delete(s.items[i].Milestones, j, j+1)
	s.mu.Unlock()

	err = s.syncProgress(ctx, i)
	s.notify()
	return err
}

// syncProgress persists the progress derived from the goal's milestones when
// it differs from the stored value. Must be called with writeMu held. When
// the write fails the milestone change stays applied and the stored progress
// is left as last confirmed.
func (s *GoalStore) syncProgress(ctx context.Context, i int) error {
	g := s.items[i]
	now := s.now()
	pct := progress.GoalProgress(g)
	done := completedAt(pct, g.CompletedAt, now)
	if pct == g.Progress && (done == nil) == (g.CompletedAt == nil) {
		return nil
	}

	err := s.remote("set_progress", func() error {
		return s.goals.SetProgress(ctx, s.userID, g.ID, pct, done, now)
	}, "goal_id", g.ID, "progress", pct)
	if err != nil {
		return err
	}

	s.mu.Lock()
	g.Progress = pct
	g.CompletedAt = done
	g.UpdatedAt = now
	s.mu.Unlock()
	return nil
}

// completedAt keeps an existing completion time while progress stays at 100.
func completedAt(pct int, current *time.Time, now time.Time) *time.Time {
	if pct < 100 {
		return nil
	}
	if current != nil {
		t := *current
		return &t
	}
	return &now
}

func (s *GoalStore) remote(op string, call func() error, attrs ...any) error {
	start := time.Now()
	err := call()
	metrics.ObserveRemoteCall(op, start, err)
	if err != nil {
		slog.Error("remote call failed", append([]any{"op", op, "user_id", s.userID, "error", err}, attrs...)...)
		return model.NewPersistenceError(op, err)
	}
	return nil
}

func (s *GoalStore) notify() {
	s.mu.RLock()
	if len(s.subscribers) == 0 {
		s.mu.RUnlock()
		return
	}
	fns := make([]func([]*model.Goal), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(s.Goals())
	}
}

func (s *GoalStore) requireUser() error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if s.userID == "" || closed {
		return model.ErrNotAuthenticated
	}
	return nil
}

func (s *GoalStore) index(id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return -1, fmt.Errorf("goal %s: %w", id, model.ErrNotFound)
	}
	return i, nil
}

func (s *GoalStore) milestoneIndex(goalID, milestoneID string) (int, int, error) {
	i, err := s.index(goalID)
	if err != nil {
		return -1, -1, err
	}

	s.mu.RLock()
	j := s.items[i].Milestone(milestoneID)
	s.mu.RUnlock()
	if j < 0 {
		return -1, -1, fmt.Errorf("milestone %s: %w", milestoneID, model.ErrNotFound)
	}
	return i, j, nil
}

func (s *GoalStore) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(g *model.Goal) bool { return g.ID == id })
}

func (s *GoalStore) snapshotLocked() []*model.Goal {
	out := make([]*model.Goal, len(s.items))
	for i, g := range s.items {
		out[i] = g.Clone()
	}
	return out
}
