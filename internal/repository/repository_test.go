package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/goaltracker/internal/db"
	"github.com/templui/goaltracker/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init(db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(context.Background(), database.DB, db.DriverSQLite))
	return database
}

func sampleGoal(id, userID string) *model.Goal {
	now := time.Date(2026, time.May, 1, 8, 30, 0, 0, time.UTC)
	due := now.Add(72 * time.Hour)
	return &model.Goal{
		ID:                id,
		UserID:            userID,
		Title:             "Run a half marathon",
		Description:       "Build up to 21km",
		Category:          model.CategoryFitness,
		Target:            now.AddDate(0, 3, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
		ReminderFrequency: model.ReminderWeekly,
		Milestones: []model.Milestone{
			{ID: "m1", Title: "5km", Completed: true, DueDate: &due},
			{ID: "m2", Title: "10km", Description: "without stopping"},
		},
		Progress: 50,
	}
}

func TestGoalRepository_CreateAndFetch(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	goals := NewGoalRepository(database)

	g := sampleGoal("g1", "u1")
	require.NoError(t, goals.Create(ctx, g))
	require.NoError(t, goals.Create(ctx, sampleGoal("other", "u2")))

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	fetched := got[0]
	assert.Equal(t, "g1", fetched.ID)
	assert.Equal(t, "u1", fetched.UserID)
	assert.Equal(t, model.CategoryFitness, fetched.Category)
	assert.True(t, g.Target.Equal(fetched.Target))
	assert.True(t, g.CreatedAt.Equal(fetched.CreatedAt))
	assert.Nil(t, fetched.CompletedAt)
	assert.Equal(t, 50, fetched.Progress)
	assert.Equal(t, model.ReminderWeekly, fetched.ReminderFrequency)

	require.Len(t, fetched.Milestones, 2)
	assert.Equal(t, "m1", fetched.Milestones[0].ID)
	assert.True(t, fetched.Milestones[0].Completed)
	require.NotNil(t, fetched.Milestones[0].DueDate)
	assert.True(t, g.Milestones[0].DueDate.Equal(*fetched.Milestones[0].DueDate))
	assert.Equal(t, "m2", fetched.Milestones[1].ID)
	assert.Equal(t, "without stopping", fetched.Milestones[1].Description)
	assert.Nil(t, fetched.Milestones[1].DueDate)
}

func TestGoalRepository_GoalsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	goals := NewGoalRepository(newTestDB(t))

	base := time.Date(2026, time.May, 1, 8, 30, 5, 0, time.UTC)
	first := sampleGoal("z-first", "u1")
	first.CreatedAt = base.Add(100 * time.Millisecond)
	second := sampleGoal("a-second", "u1")
	second.CreatedAt = base.Add(150 * time.Millisecond)

	require.NoError(t, goals.Create(ctx, first))
	require.NoError(t, goals.Create(ctx, second))

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "z-first", got[0].ID)
	assert.Equal(t, "a-second", got[1].ID)
}

func TestGoalRepository_FetchEmpty(t *testing.T) {
	database := newTestDB(t)

	got, err := NewGoalRepository(database).Goals(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGoalRepository_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	goals := NewGoalRepository(newTestDB(t))

	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))
	err := goals.Create(ctx, sampleGoal("g1", "u1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestGoalRepository_CreateRollsBackOnMilestoneFailure(t *testing.T) {
	ctx := context.Background()
	goals := NewGoalRepository(newTestDB(t))

	g := sampleGoal("g1", "u1")
	g.Milestones[1].ID = g.Milestones[0].ID

	require.Error(t, goals.Create(ctx, g))

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGoalRepository_Patch(t *testing.T) {
	ctx := context.Background()
	goals := NewGoalRepository(newTestDB(t))
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	title := "Run a full marathon"
	target := time.Date(2027, time.April, 20, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)
	err := goals.Patch(ctx, "u1", "g1", model.GoalPatch{Title: &title, Target: &target}, updated)
	require.NoError(t, err)

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, title, got[0].Title)
	assert.Equal(t, "Build up to 21km", got[0].Description)
	assert.True(t, target.Equal(got[0].Target))
	assert.True(t, updated.Equal(got[0].UpdatedAt))
}

func TestGoalRepository_PatchWrongUser(t *testing.T) {
	ctx := context.Background()
	goals := NewGoalRepository(newTestDB(t))
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	title := "hijacked"
	err := goals.Patch(ctx, "u2", "g1", model.GoalPatch{Title: &title}, time.Now())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGoalRepository_SetProgress(t *testing.T) {
	ctx := context.Background()
	goals := NewGoalRepository(newTestDB(t))
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	done := time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, goals.SetProgress(ctx, "u1", "g1", 100, &done, done))

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, got[0].Progress)
	require.NotNil(t, got[0].CompletedAt)
	assert.True(t, done.Equal(*got[0].CompletedAt))

	require.NoError(t, goals.SetProgress(ctx, "u1", "g1", 50, nil, done))
	got, err = goals.Goals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, got[0].Progress)
	assert.Nil(t, got[0].CompletedAt)
}

func TestGoalRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	goals := NewGoalRepository(database)
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	require.NoError(t, goals.Delete(ctx, "u1", "g1"))

	var orphans int
	require.NoError(t, database.Get(&orphans, `SELECT COUNT(*) FROM milestones WHERE goal_id = $1`, "g1"))
	assert.Zero(t, orphans)

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, goals.Delete(ctx, "u1", "g1"), model.ErrNotFound)
}

func TestGoalRepository_InvalidStoredDateBecomesZero(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	goals := NewGoalRepository(database)
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	_, err := database.Exec(`UPDATE goals SET target = 'not-a-date' WHERE id = $1`, "g1")
	require.NoError(t, err)

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got[0].Target.IsZero())
}

func TestMilestoneRepository_CreateAppends(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	goals := NewGoalRepository(database)
	milestones := NewMilestoneRepository(database)
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	require.NoError(t, milestones.Create(ctx, "u1", "g1", &model.Milestone{ID: "m3", Title: "15km"}))

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got[0].Milestones, 3)
	assert.Equal(t, "m3", got[0].Milestones[2].ID)
}

func TestMilestoneRepository_CreateUnknownGoal(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	milestones := NewMilestoneRepository(database)
	require.NoError(t, NewGoalRepository(database).Create(ctx, sampleGoal("g1", "u1")))

	err := milestones.Create(ctx, "u1", "missing", &model.Milestone{ID: "m1", Title: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = milestones.Create(ctx, "u2", "g1", &model.Milestone{ID: "m9", Title: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMilestoneRepository_Patch(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	goals := NewGoalRepository(database)
	milestones := NewMilestoneRepository(database)
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	done := true
	title := "10km race"
	require.NoError(t, milestones.Patch(ctx, "u1", "g1", "m2", model.MilestonePatch{Completed: &done, Title: &title}))

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got[0].Milestones[1].Completed)
	assert.Equal(t, "10km race", got[0].Milestones[1].Title)

	assert.ErrorIs(t, milestones.Patch(ctx, "u2", "g1", "m2", model.MilestonePatch{Completed: &done}), model.ErrNotFound)
	assert.ErrorIs(t, milestones.Patch(ctx, "u1", "g1", "nope", model.MilestonePatch{Completed: &done}), model.ErrNotFound)
	assert.NoError(t, milestones.Patch(ctx, "u1", "g1", "m2", model.MilestonePatch{}))
}

func TestMilestoneRepository_Delete(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	goals := NewGoalRepository(database)
	milestones := NewMilestoneRepository(database)
	require.NoError(t, goals.Create(ctx, sampleGoal("g1", "u1")))

	assert.ErrorIs(t, milestones.Delete(ctx, "u2", "g1", "m1"), model.ErrNotFound)
	require.NoError(t, milestones.Delete(ctx, "u1", "g1", "m1"))
	assert.ErrorIs(t, milestones.Delete(ctx, "u1", "g1", "m1"), model.ErrNotFound)

	got, err := goals.Goals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got[0].Milestones, 1)
	assert.Equal(t, "m2", got[0].Milestones[0].ID)
}
