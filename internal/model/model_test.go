package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParseTime_RoundTrip(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*60*60)
	original := time.Date(2026, time.March, 14, 9, 26, 53, 589_000_000, loc)

	parsed, err := ParseTime("target", FormatTime(original))
	require.NoError(t, err)

	assert.True(t, parsed.Truncate(time.Second).Equal(original.Truncate(time.Second)))
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestFormatTime_SortsInTimeOrder(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 14, 9, 26, 5, 0, time.UTC)
	earlier := FormatTime(base.Add(100 * time.Millisecond))
	later := FormatTime(base.Add(150 * time.Millisecond))

	assert.Equal(t, "2026-03-14T09:26:05.100000000Z", earlier)
	assert.Len(t, later, len(earlier))
	assert.Less(t, earlier, later)
	assert.Less(t, FormatTime(base), earlier)
}

func TestParseTime_DateOnly(t *testing.T) {
	t.Parallel()

	parsed, err := ParseTime("target", "2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseTime_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseTime("target", "next tuesday")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "target", ve.Errors[0].Field)
}

func TestParseTimeOrZero(t *testing.T) {
	t.Parallel()

	got, ok := ParseTimeOrZero("garbage")
	assert.False(t, ok)
	assert.True(t, got.IsZero())

	got, ok = ParseTimeOrZero("2026-01-02T03:04:05Z")
	assert.True(t, ok)
	assert.Equal(t, 2026, got.Year())
}

func TestFormatTime_Zero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatTime(time.Time{}))
	assert.Nil(t, FormatTimePtr(nil))
}

func TestCategory_ColorDerivedFromCategory(t *testing.T) {
	t.Parallel()

	g := &Goal{Category: CategoryFitness}
	assert.Equal(t, "#4ECDC4", g.Color())

	g.Category = CategoryHealth
	assert.Equal(t, "#EF4444", g.Color())

	assert.Equal(t, defaultCategoryColor, Category("gardening").Color())
}

func TestCategory_AllCategoriesHaveColorAndIcon(t *testing.T) {
	t.Parallel()

	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
		assert.NotEmpty(t, categoryIcons[c], c)
	}
	assert.False(t, Category("").Valid())
}

func TestCategory_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Relationships", CategoryRelationships.Label())
	assert.Equal(t, "Fitness", CategoryFitness.Label())
}

func TestGoal_CloneIsDeep(t *testing.T) {
	t.Parallel()

	due := time.Now()
	done := time.Now()
	g := &Goal{
		ID:          "g1",
		CompletedAt: &done,
		Milestones:  []Milestone{{ID: "m1", DueDate: &due}},
	}

	c := g.Clone()
	c.Milestones[0].Completed = true
	*c.Milestones[0].DueDate = due.Add(time.Hour)
	*c.CompletedAt = done.Add(time.Hour)

	assert.False(t, g.Milestones[0].Completed)
	assert.Equal(t, due, *g.Milestones[0].DueDate)
	assert.Equal(t, done, *g.CompletedAt)
}

func TestGoalPatch_Apply(t *testing.T) {
	t.Parallel()

	title := "Run a marathon"
	cat := CategoryFitness
	g := &Goal{Title: "old", Description: "keep", Category: CategoryCareer}

	patch := GoalPatch{Title: &title, Category: &cat}
	require.False(t, patch.Empty())
	patch.Apply(g)

	assert.Equal(t, "Run a marathon", g.Title)
	assert.Equal(t, "keep", g.Description)
	assert.Equal(t, CategoryFitness, g.Category)
	assert.True(t, GoalPatch{}.Empty())
}

func TestPersistenceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("add goal: %w", NewPersistenceError("create goal", cause))

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "create goal", pe.Op)
}

func TestNewPersistenceError_KeepsTypedErrors(t *testing.T) {
	t.Parallel()

	err := NewPersistenceError("delete goal", fmt.Errorf("goal g1: %w", ErrNotFound))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPersistence)

	assert.NoError(t, NewPersistenceError("noop", nil))
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	one := NewValidationError("title", "is required")
	assert.Equal(t, "validation: title is required", one.Error())

	many := &ValidationError{Errors: []FieldError{
		{Field: "title", Message: "is required"},
		{Field: "category", Message: "is invalid"},
	}}
	assert.Equal(t, "validation: title is required; category is invalid", many.Error())
}
