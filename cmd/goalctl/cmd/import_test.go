package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/goaltracker/internal/db"
	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/repository"
	"github.com/templui/goaltracker/internal/service"
)

const sampleImport = `
goals:
  - title: Read 12 books
    description: One book a month
    category: education
    target: 2026-12-31
    reminderFrequency: monthly
    milestones:
      - title: First quarter
        completed: true
        dueDate: 2026-03-31
      - title: Second quarter
  - title: Save an emergency fund
    description: Three months of expenses
    category: finance
    target: 2027-06-30T00:00:00Z
`

func TestParseImport(t *testing.T) {
	goals, err := parseImport(strings.NewReader(sampleImport))
	require.NoError(t, err)
	require.Len(t, goals, 2)

	assert.Equal(t, "Read 12 books", goals[0].Title)
	assert.Equal(t, "One book a month", goals[0].Description)
	assert.Equal(t, model.CategoryEducation, goals[0].Category)
	assert.Equal(t, model.ReminderMonthly, goals[0].ReminderFrequency)
	assert.Equal(t, 2026, goals[0].Target.Year())
	require.Len(t, goals[0].Milestones, 2)
	assert.True(t, goals[0].Milestones[0].Completed)
	require.NotNil(t, goals[0].Milestones[0].DueDate)
	assert.Nil(t, goals[0].Milestones[1].DueDate)

	assert.Equal(t, model.CategoryFinance, goals[1].Category)
	assert.Empty(t, goals[1].Milestones)
}

func TestParseImport_Errors(t *testing.T) {
	_, err := parseImport(strings.NewReader("goals:\n  - title: x\n    category: travel\n    target: someday\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "goals[0].target")

	_, err = parseImport(strings.NewReader("goals:\n  - title: x\n    colour: red\n"))
	assert.Error(t, err)

	goals, err := parseImport(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestImportGoals(t *testing.T) {
	ctx := context.Background()
	database, err := db.Init(db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	require.NoError(t, db.RunMigrations(ctx, database.DB, db.DriverSQLite))

	store := service.NewGoalStore("u1",
		repository.NewGoalRepository(database),
		repository.NewMilestoneRepository(database),
	)
	store.Refresh(ctx)

	goals, err := parseImport(strings.NewReader(sampleImport))
	require.NoError(t, err)

	n, err := importGoals(ctx, store, goals)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	imported := store.Goals()
	require.Len(t, imported, 2)
	assert.Equal(t, "Read 12 books", imported[0].Title)
	assert.Equal(t, 50, imported[0].Progress)
	assert.Equal(t, 0, imported[1].Progress)
}

func TestImportGoals_StopsAtInvalidGoal(t *testing.T) {
	ctx := context.Background()
	store := service.NewGoalStore("u1", repository.NewGoalRepository(nil), repository.NewMilestoneRepository(nil))

	goals, err := parseImport(strings.NewReader("goals:\n  - title: No description\n    category: travel\n    target: 2027-01-01\n"))
	require.NoError(t, err)

	n, err := importGoals(ctx, store, goals)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "description")
}
