package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/templui/goaltracker/internal/model"
)

// MilestoneRepository persists milestones scoped by their parent goal. Goal
// ownership is enforced on every call.
type MilestoneRepository interface {
	Create(ctx context.Context, userID, goalID string, milestone *model.Milestone) error
	Patch(ctx context.Context, userID, goalID, milestoneID string, patch model.MilestonePatch) error
	Delete(ctx context.Context, userID, goalID, milestoneID string) error
}

type milestoneRow struct {
	ID          string  `db:"id"`
	GoalID      string  `db:"goal_id"`
	Position    int     `db:"position"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Completed   bool    `db:"completed"`
	DueDate     *string `db:"due_date"`
}

func (row *milestoneRow) toModel() model.Milestone {
	m := model.Milestone{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
	}
	if row.DueDate != nil {
		t := parseStored("due_date", row.ID, *row.DueDate)
		if !t.IsZero() {
			m.DueDate = &t
		}
	}
	return m
}

type milestoneRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewMilestoneRepository(db *sqlx.DB) MilestoneRepository {
	return &milestoneRepository{db: db, sb: statementBuilder()}
}

// Create appends the milestone after the goal's current last position.
func (r *milestoneRepository) Create(ctx context.Context, userID, goalID string, milestone *model.Milestone) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = checkGoalOwner(ctx, tx, userID, goalID)
	if err != nil {
		return err
	}

	var position int
	err = tx.GetContext(ctx, &position, `SELECT COALESCE(MAX(position), 0) FROM milestones WHERE goal_id = $1`, goalID)
	if err != nil {
		return err
	}

	err = insertMilestone(ctx, tx, goalID, position+1, milestone)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *milestoneRepository) Patch(ctx context.Context, userID, goalID, milestoneID string, patch model.MilestonePatch) error {
	cols := milestonePatchColumns(patch)
	if len(cols) == 0 {
		return nil
	}

	query, args, err := r.sb.Update("milestones").
		SetMap(cols).
		Where(sq.Eq{"goal_id": goalID, "id": milestoneID}).
		Where(ownedGoal(userID)).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(result, "milestone", milestoneID)
}

func (r *milestoneRepository) Delete(ctx context.Context, userID, goalID, milestoneID string) error {
	query, args, err := r.sb.Delete("milestones").
		Where(sq.Eq{"goal_id": goalID, "id": milestoneID}).
		Where(ownedGoal(userID)).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(result, "milestone", milestoneID)
}

func insertMilestone(ctx context.Context, tx *sqlx.Tx, goalID string, position int, m *model.Milestone) error {
	query := `INSERT INTO milestones (id, goal_id, position, title, description, completed, due_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.ExecContext(ctx, query,
		m.ID,
		goalID,
		position,
		m.Title,
		m.Description,
		m.Completed,
		model.FormatTimePtr(m.DueDate),
	)
	return mapError(err, "milestone", m.ID)
}

func checkGoalOwner(ctx context.Context, tx *sqlx.Tx, userID, goalID string) error {
	var exists int
	err := tx.GetContext(ctx, &exists, `SELECT 1 FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("goal %s: %w", goalID, model.ErrNotFound)
	}
	return err
}

func ownedGoal(userID string) sq.Sqlizer {
	return sq.Expr("goal_id IN (SELECT id FROM goals WHERE user_id = ?)", userID)
}

func milestonePatchColumns(p model.MilestonePatch) map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	if p.DueDate != nil {
		cols["due_date"] = model.FormatTime(*p.DueDate)
	}
	return cols
}
