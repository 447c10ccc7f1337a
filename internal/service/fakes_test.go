package service

import (
	"context"
	"time"

	"github.com/templui/goaltracker/internal/model"
)

// fakeGoalRepo succeeds for every call whose func field is nil.
type fakeGoalRepo struct {
	goalsFn       func(ctx context.Context, userID string) ([]*model.Goal, error)
	createFn      func(ctx context.Context, goal *model.Goal) error
	patchFn       func(ctx context.Context, userID, goalID string, patch model.GoalPatch, updatedAt time.Time) error
	setProgressFn func(ctx context.Context, userID, goalID string, progress int, completedAt *time.Time, updatedAt time.Time) error
	deleteFn      func(ctx context.Context, userID, goalID string) error

	progressWrites []int
}

func (f *fakeGoalRepo) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	if f.goalsFn == nil {
		return nil, nil
	}
	return f.goalsFn(ctx, userID)
}

func (f *fakeGoalRepo) Create(ctx context.Context, goal *model.Goal) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, goal)
}

func (f *fakeGoalRepo) Patch(ctx context.Context, userID, goalID string, patch model.GoalPatch, updatedAt time.Time) error {
	if f.patchFn == nil {
		return nil
	}
	return f.patchFn(ctx, userID, goalID, patch, updatedAt)
}

func (f *fakeGoalRepo) SetProgress(ctx context.Context, userID, goalID string, progress int, completedAt *time.Time, updatedAt time.Time) error {
	f.progressWrites = append(f.progressWrites, progress)
	if f.setProgressFn == nil {
		return nil
	}
	return f.setProgressFn(ctx, userID, goalID, progress, completedAt, updatedAt)
}

func (f *fakeGoalRepo) Delete(ctx context.Context, userID, goalID string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, userID, goalID)
}

type fakeMilestoneRepo struct {
	createFn func(ctx context.Context, userID, goalID string, milestone *model.Milestone) error
	patchFn  func(ctx context.Context, userID, goalID, milestoneID string, patch model.MilestonePatch) error
	deleteFn func(ctx context.Context, userID, goalID, milestoneID string) error
}

func (f *fakeMilestoneRepo) Create(ctx context.Context, userID, goalID string, milestone *model.Milestone) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, userID, goalID, milestone)
}

func (f *fakeMilestoneRepo) Patch(ctx context.Context, userID, goalID, milestoneID string, patch model.MilestonePatch) error {
	if f.patchFn == nil {
		return nil
	}
	return f.patchFn(ctx, userID, goalID, milestoneID, patch)
}

func (f *fakeMilestoneRepo) Delete(ctx context.Context, userID, goalID, milestoneID string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, userID, goalID, milestoneID)
}
