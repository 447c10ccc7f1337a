package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/templui/goaltracker/internal/model"
)

// GoalRepository is the relational side of the remote collaborator for goals.
// Every date crosses this boundary as an ISO-8601 string.
type GoalRepository interface {
	Goals(ctx context.Context, userID string) ([]*model.Goal, error)
	Create(ctx context.Context, goal *model.Goal) error
	Patch(ctx context.Context, userID, goalID string, patch model.GoalPatch, updatedAt time.Time) error
	SetProgress(ctx context.Context, userID, goalID string, progress int, completedAt *time.Time, updatedAt time.Time) error
	Delete(ctx context.Context, userID, goalID string) error
}

type goalRow struct {
	ID                string  `db:"id"`
	UserID            string  `db:"user_id"`
	Title             string  `db:"title"`
	Description       string  `db:"description"`
	Category          string  `db:"category"`
	Target            string  `db:"target"`
	CreatedAt         string  `db:"created_at"`
	UpdatedAt         string  `db:"updated_at"`
	CompletedAt       *string `db:"completed_at"`
	Progress          int     `db:"progress"`
	ReminderFrequency string  `db:"reminder_frequency"`
	Notes             string  `db:"notes"`
	ImageURL          string  `db:"image_url"`
}

func (row *goalRow) toModel() *model.Goal {
	g := &model.Goal{
		ID:                row.ID,
		UserID:            row.UserID,
		Title:             row.Title,
		Description:       row.Description,
		Category:          model.Category(row.Category),
		Target:            parseStored("target", row.ID, row.Target),
		CreatedAt:         parseStored("created_at", row.ID, row.CreatedAt),
		UpdatedAt:         parseStored("updated_at", row.ID, row.UpdatedAt),
		Progress:          row.Progress,
		ReminderFrequency: model.ReminderFrequency(row.ReminderFrequency),
		Notes:             row.Notes,
		ImageURL:          row.ImageURL,
		Milestones:        []model.Milestone{},
	}
	if row.CompletedAt != nil {
		t := parseStored("completed_at", row.ID, *row.CompletedAt)
		if !t.IsZero() {
			g.CompletedAt = &t
		}
	}
	return g
}

// parseStored substitutes the zero time for a malformed stored date.
func parseStored(column, id, value string) time.Time {
	t, ok := model.ParseTimeOrZero(value)
	if !ok && value != "" {
		slog.Warn("invalid stored date, using zero time", "column", column, "id", id, "value", value)
	}
	return t
}

type goalRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db, sb: statementBuilder()}
}

func (r *goalRepository) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	var rows []goalRow
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, err
	}

	var milestoneRows []milestoneRow
	query = `SELECT m.* FROM milestones m
	         JOIN goals g ON g.id = m.goal_id
	         WHERE g.user_id = $1
	         ORDER BY m.goal_id, m.position ASC`
	err = r.db.SelectContext(ctx, &milestoneRows, query, userID)
	if err != nil {
		return nil, err
	}

	byGoal := make(map[string][]model.Milestone, len(rows))
	for i := range milestoneRows {
		m := &milestoneRows[i]
		byGoal[m.GoalID] = append(byGoal[m.GoalID], m.toModel())
	}

	goals := make([]*model.Goal, 0, len(rows))
	for i := range rows {
		g := rows[i].toModel()
		if ms, ok := byGoal[g.ID]; ok {
			g.Milestones = ms
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// Create inserts the goal and its embedded milestones in one transaction.
func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO goals (id, user_id, title, description, category, target, created_at, updated_at,
	                             completed_at, progress, reminder_frequency, notes, image_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		string(goal.Category),
		model.FormatTime(goal.Target),
		model.FormatTime(goal.CreatedAt),
		model.FormatTime(goal.UpdatedAt),
		model.FormatTimePtr(goal.CompletedAt),
		goal.Progress,
		string(goal.ReminderFrequency),
		goal.Notes,
		goal.ImageURL,
	)
	if err != nil {
		return mapError(err, "goal", goal.ID)
	}

	for i := range goal.Milestones {
		err = insertMilestone(ctx, tx, goal.ID, i+1, &goal.Milestones[i])
		if err != nil {
			return fmt.Errorf("failed to create milestone %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func (r *goalRepository) Patch(ctx context.Context, userID, goalID string, patch model.GoalPatch, updatedAt time.Time) error {
	cols := goalPatchColumns(patch)
	cols["updated_at"] = model.FormatTime(updatedAt)
	return r.update(ctx, userID, goalID, cols)
}

func (r *goalRepository) SetProgress(ctx context.Context, userID, goalID string, progress int, completedAt *time.Time, updatedAt time.Time) error {
	return r.update(ctx, userID, goalID, map[string]any{
		"progress":     progress,
		"completed_at": model.FormatTimePtr(completedAt),
		"updated_at":   model.FormatTime(updatedAt),
	})
}

func (r *goalRepository) update(ctx context.Context, userID, goalID string, cols map[string]any) error {
	query, args, err := r.sb.Update("goals").
		SetMap(cols).
		Where(sq.Eq{"id": goalID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(result, "goal", goalID)
}

// Delete removes the goal and all of its milestones.
func (r *goalRepository) Delete(ctx context.Context, userID, goalID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT 1 FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("goal %s: %w", goalID, model.ErrNotFound)
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM milestones WHERE goal_id = $1`, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete milestones: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func goalPatchColumns(p model.GoalPatch) map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Category != nil {
		cols["category"] = string(*p.Category)
	}
	if p.Target != nil {
		cols["target"] = model.FormatTime(*p.Target)
	}
	if p.ReminderFrequency != nil {
		cols["reminder_frequency"] = string(*p.ReminderFrequency)
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}
