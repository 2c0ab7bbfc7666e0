package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// AuditFilter narrows an audit listing. Zero values match everything.
type AuditFilter struct {
	Kind    domain.Kind
	ID      string
	ActorID string
	Action  domain.AuditAction
	Limit   int
	Offset  int
}

// AuditRepository is the append-only store of audit records.
type AuditRepository interface {
	Append(ctx context.Context, record *domain.AuditRecord) error
	GetByID(ctx context.Context, id string) (*domain.AuditRecord, error)
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed audit log.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	before, err := marshalNullable(record.Before)
	if err != nil {
		return err
	}
	after, err := marshalNullable(record.After)
	if err != nil {
		return err
	}
	var changes []byte
	if len(record.Changes) > 0 {
		if changes, err = json.Marshal(record.Changes); err != nil {
			return err
		}
	}

	const query = `
        INSERT INTO audit_records (action, entity_kind, entity_id, actor_id, before, after, changes, created_at)
        VALUES ($1,$2,$3,$4,$5::jsonb,$6::jsonb,$7::jsonb,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		record.Action,
		record.Entity.Kind,
		record.Entity.ID,
		record.ActorID,
		before,
		after,
		changes,
		record.Timestamp,
	).Scan(&record.ID)
}

func (r *auditRepository) GetByID(ctx context.Context, id string) (*domain.AuditRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, auditNotFound(id)
	}
	rows, err := r.pool.Query(ctx, auditSelect+` WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	records, err := scanAuditRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, auditNotFound(id)
	}
	return &records[0], nil
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if filter.Kind != "" {
		add("entity_kind", filter.Kind)
	}
	if filter.ID != "" {
		add("entity_id", filter.ID)
	}
	if filter.ActorID != "" {
		add("actor_id", filter.ActorID)
	}
	if filter.Action != "" {
		add("action", filter.Action)
	}

	query := auditSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	q := Query{Limit: filter.Limit, Offset: filter.Offset}
	query += fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT %d OFFSET %d", q.limit(), q.offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanAuditRows(rows)
}

const auditSelect = `
        SELECT id, action, entity_kind, entity_id, actor_id, before, after, changes, created_at
        FROM audit_records`

type auditRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanAuditRows(rows auditRows) ([]domain.AuditRecord, error) {
	defer rows.Close()

	result := make([]domain.AuditRecord, 0)
	for rows.Next() {
		var (
			record                 domain.AuditRecord
			before, after, changes []byte
		)
		if err := rows.Scan(
			&record.ID,
			&record.Action,
			&record.Entity.Kind,
			&record.Entity.ID,
			&record.ActorID,
			&before,
			&after,
			&changes,
			&record.Timestamp,
		); err != nil {
			return nil, err
		}
		if err := unmarshalNullable(before, &record.Before); err != nil {
			return nil, err
		}
		if err := unmarshalNullable(after, &record.After); err != nil {
			return nil, err
		}
		if err := unmarshalNullable(changes, &record.Changes); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func marshalNullable(doc domain.Document) ([]byte, error) {
	if doc == nil {
		return nil, nil
	}
	return json.Marshal(doc)
}

func unmarshalNullable(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func auditNotFound(id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("audit record %s not found", id)}
}

// memoryAuditRepository is the in-process audit log.
type memoryAuditRepository struct {
	mu      sync.RWMutex
	records []domain.AuditRecord
}

// NewMemoryAuditRepository builds an empty in-memory audit log.
func NewMemoryAuditRepository() AuditRepository {
	return &memoryAuditRepository{}
}

func (r *memoryAuditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := *record
	stored.ID = uuid.NewString()
	var err error
	if stored.Before, err = cloneNullable(record.Before); err != nil {
		return err
	}
	if stored.After, err = cloneNullable(record.After); err != nil {
		return err
	}

	r.mu.Lock()
	r.records = append(r.records, stored)
	r.mu.Unlock()
	record.ID = stored.ID
	return nil
}

func (r *memoryAuditRepository) GetByID(ctx context.Context, id string) (*domain.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.ID == id {
			out := record
			return &out, nil
		}
	}
	return nil, auditNotFound(id)
}

func (r *memoryAuditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]domain.AuditRecord, 0)
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		switch {
		case filter.Kind != "" && record.Entity.Kind != filter.Kind,
			filter.ID != "" && record.Entity.ID != filter.ID,
			filter.ActorID != "" && record.ActorID != filter.ActorID,
			filter.Action != "" && record.Action != filter.Action:
			continue
		}
		matched = append(matched, record)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	q := Query{Limit: filter.Limit, Offset: filter.Offset}
	if q.offset() >= len(matched) {
		return []domain.AuditRecord{}, nil
	}
	end := q.offset() + q.limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.offset():end], nil
}

func cloneNullable(doc domain.Document) (domain.Document, error) {
	if doc == nil {
		return nil, nil
	}
	return domain.Normalize(doc)
}
