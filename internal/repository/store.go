package repository

import (
	"context"
	"regexp"

	"github.com/spec-kit/hr-service/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// ReadOptions are per-call read settings. They never persist between calls.
type ReadOptions struct {
	// IncludeInactive bypasses the visibility scope of soft-deletable kinds.
	IncludeInactive bool
}

// Filter is an equality filter over top-level document fields.
type Filter map[string]any

// SortField orders results by a document field.
type SortField struct {
	Field string
	Desc  bool
}

// Query describes a listing request.
type Query struct {
	Filter Filter
	Sort   []SortField
	Limit  int
	Offset int
}

func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return defaultLimit
	case q.Limit > maxLimit:
		return maxLimit
	}
	return q.Limit
}

func (q Query) offset() int {
	if q.Offset < 0 {
		return 0
	}
	return q.Offset
}

// DocumentStore is typed persistence access for one entity kind.
type DocumentStore interface {
	Kind() domain.Kind
	FindByID(ctx context.Context, id string, opts ReadOptions) (domain.Document, error)
	Find(ctx context.Context, q Query, opts ReadOptions) ([]domain.Document, error)
	Count(ctx context.Context, filter Filter, opts ReadOptions) (int, error)
	Insert(ctx context.Context, doc domain.Document) (domain.Document, error)
	Update(ctx context.Context, id string, fields domain.Document) (domain.Document, error)
	Delete(ctx context.Context, id string) (domain.Document, error)
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidFieldName reports whether name may be used as a filter or sort key.
func ValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

func validateQuery(q Query) error {
	for field := range q.Filter {
		if !ValidFieldName(field) {
			return domain.NewValidationError(field, "invalid filter field")
		}
	}
	for _, s := range q.Sort {
		if !ValidFieldName(s.Field) {
			return domain.NewValidationError(s.Field, "invalid sort field")
		}
	}
	return nil
}
