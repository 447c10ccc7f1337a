package repository

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/templui/goaltracker/internal/model"
)

// statementBuilder emits $N placeholders, understood by both pgx and sqlite.
func statementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// mapError turns unique violations into validation errors (works for both SQLite and PostgreSQL).
func mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return fmt.Errorf("%s %s: %w", entity, id, model.NewValidationError("id", "already exists"))
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}

func requireAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, model.ErrNotFound)
	}
	return nil
}
