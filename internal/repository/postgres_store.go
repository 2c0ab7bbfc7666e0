package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// postgresStore keeps a collection as JSONB documents in one table.
type postgresStore struct {
	pool   *pgxpool.Pool
	schema Schema
	table  string
}

// NewPostgresStore returns a Postgres-backed DocumentStore for the schema.
func NewPostgresStore(pool *pgxpool.Pool, schema Schema) DocumentStore {
	return &postgresStore{
		pool:   pool,
		schema: schema,
		table:  pgx.Identifier{schema.Collection}.Sanitize(),
	}
}

// NewPostgresStores builds a Postgres store for every kind.
func NewPostgresStores(pool *pgxpool.Pool) map[domain.Kind]DocumentStore {
	stores := make(map[domain.Kind]DocumentStore, len(domain.Kinds))
	for kind, schema := range Schemas() {
		stores[kind] = NewPostgresStore(pool, schema)
	}
	return stores
}

func (r *postgresStore) Kind() domain.Kind { return r.schema.Kind }

func (r *postgresStore) FindByID(ctx context.Context, id string, opts ReadOptions) (domain.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound(r.schema.Kind, id)
	}
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id=$1`, r.table)
	if clause := visibilityClause(r.schema.Kind, opts); clause != "" {
		query += " AND " + clause
	}
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		return nil, mapError(err, r.schema, id)
	}
	return decodeDoc(raw)
}

func (r *postgresStore) Find(ctx context.Context, q Query, opts ReadOptions) ([]domain.Document, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	where, args, err := r.whereClause(q.Filter, opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT doc FROM %s%s`, r.table, where)
	orderBy := make([]string, 0, len(q.Sort)+2)
	for _, s := range q.Sort {
		args = append(args, s.Field)
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		orderBy = append(orderBy, fmt.Sprintf("doc->($%d::text) %s", len(args), dir))
	}
	orderBy = append(orderBy, "created_at DESC", "id")
	query += " ORDER BY " + strings.Join(orderBy, ", ")
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.limit(), q.offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, r.schema, "")
	}
	defer rows.Close()

	result := make([]domain.Document, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (r *postgresStore) Count(ctx context.Context, filter Filter, opts ReadOptions) (int, error) {
	if err := validateQuery(Query{Filter: filter}); err != nil {
		return 0, err
	}
	where, args, err := r.whereClause(filter, opts)
	if err != nil {
		return 0, err
	}
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.table, where)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, mapError(err, r.schema, "")
	}
	return count, nil
}

func (r *postgresStore) Insert(ctx context.Context, doc domain.Document) (domain.Document, error) {
	prepared := doc.Clone()
	if prepared == nil {
		prepared = domain.Document{}
	}
	if prepared.ID() == "" {
		prepared[domain.FieldID] = uuid.NewString()
	}
	if _, ok := prepared[domain.FieldCreatedAt]; !ok {
		prepared[domain.FieldCreatedAt] = time.Now().UTC()
	}
	normalized, err := domain.Normalize(prepared)
	if err != nil {
		return nil, err
	}
	if err := r.schema.Validate(normalized); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (id, doc)
        VALUES ($1, $2::jsonb)
        RETURNING doc`, r.table)
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, normalized.ID(), payload).Scan(&raw); err != nil {
		return nil, mapError(err, r.schema, normalized.ID())
	}
	return decodeDoc(raw)
}

// Update merges fields into the stored document inside a transaction so an invalid
// post-image is rolled back.
func (r *postgresStore) Update(ctx context.Context, id string, fields domain.Document) (doc domain.Document, err error) {
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, domain.NotFound(r.schema.Kind, id)
	}
	merge, err := domain.Normalize(fields.Without(domain.FieldID))
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(merge)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := fmt.Sprintf(`
        UPDATE %s SET doc = doc || $2::jsonb, updated_at=NOW()
        WHERE id=$1
        RETURNING doc`, r.table)
	var raw []byte
	if err = tx.QueryRow(ctx, query, id, payload).Scan(&raw); err != nil {
		return nil, mapError(err, r.schema, id)
	}
	doc, err = decodeDoc(raw)
	if err != nil {
		return nil, err
	}
	if err = r.schema.Validate(doc); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, mapError(err, r.schema, id)
	}
	return doc, nil
}

func (r *postgresStore) Delete(ctx context.Context, id string) (domain.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound(r.schema.Kind, id)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1 RETURNING doc`, r.table)
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		return nil, mapError(err, r.schema, id)
	}
	return decodeDoc(raw)
}

func (r *postgresStore) whereClause(filter Filter, opts ReadOptions) (string, []any, error) {
	args := []any{}
	clauses := []string{}
	if len(filter) > 0 {
		payload, err := json.Marshal(filter)
		if err != nil {
			return "", nil, err
		}
		args = append(args, payload)
		clauses = append(clauses, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
	}
	if clause := visibilityClause(r.schema.Kind, opts); clause != "" {
		clauses = append(clauses, clause)
	}
	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func decodeDoc(raw []byte) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
