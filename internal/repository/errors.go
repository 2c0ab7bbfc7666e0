package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/hr-service/internal/domain"
)

// mapError converts pgx errors into domain errors. Context errors pass through as-is.
func mapError(err error, schema Schema, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(schema.Kind, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &domain.ConflictError{Kind: schema.Kind, Fields: uniqueFieldsFor(schema, pgErr.ConstraintName)}
		case "23514": // check_violation
			return domain.NewValidationError(pgErr.ConstraintName, pgErr.Message)
		}
	}
	return err
}

// uniqueFieldsFor guesses the unique key from the index name (<collection>_<f1>_<f2>_key).
func uniqueFieldsFor(schema Schema, constraint string) []string {
	if constraint == schema.Collection+"_pkey" {
		return []string{domain.FieldID}
	}
	for _, fields := range schema.Unique {
		name := schema.Collection + "_" + strings.ToLower(strings.Join(fields, "_")) + "_key"
		if name == constraint {
			return fields
		}
	}
	// Unknown constraints are reported by name rather than guessed.
	return []string{constraint}
}
