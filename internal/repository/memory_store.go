package repository

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/hr-service/internal/domain"
)

// memoryStore keeps one collection in process memory. It is used when no database is
// configured and by the unit tests.
type memoryStore struct {
	schema Schema

	mu    sync.RWMutex
	docs  map[string]domain.Document
	order []string
}

// NewMemoryStore builds an in-memory DocumentStore for the schema.
func NewMemoryStore(schema Schema) DocumentStore {
	return &memoryStore{schema: schema, docs: make(map[string]domain.Document)}
}

// NewMemoryStores builds an in-memory store for every kind.
func NewMemoryStores() map[domain.Kind]DocumentStore {
	stores := make(map[domain.Kind]DocumentStore, len(domain.Kinds))
	for kind, schema := range Schemas() {
		stores[kind] = NewMemoryStore(schema)
	}
	return stores
}

func (s *memoryStore) Kind() domain.Kind { return s.schema.Kind }

func (s *memoryStore) FindByID(ctx context.Context, id string, opts ReadOptions) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok || !visible(s.schema.Kind, doc, opts) {
		return nil, domain.NotFound(s.schema.Kind, id)
	}
	return domain.Normalize(doc)
}

func (s *memoryStore) Find(ctx context.Context, q Query, opts ReadOptions) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	filter, err := domain.Normalize(domain.Document(q.Filter))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]domain.Document, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		doc := s.docs[s.order[i]]
		if visible(s.schema.Kind, doc, opts) && matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, sf := range q.Sort {
				c := compareValues(matched[i][sf.Field], matched[j][sf.Field])
				if c == 0 {
					continue
				}
				if sf.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	offset, limit := q.offset(), q.limit()
	if offset >= len(matched) {
		return []domain.Document{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]domain.Document, 0, end-offset)
	for _, doc := range matched[offset:end] {
		cp, err := domain.Normalize(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *memoryStore) Count(ctx context.Context, filter Filter, opts ReadOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validateQuery(Query{Filter: filter}); err != nil {
		return 0, err
	}
	normalized, err := domain.Normalize(domain.Document(filter))
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, doc := range s.docs {
		if visible(s.schema.Kind, doc, opts) && matches(doc, normalized) {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) Insert(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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
	if err := s.schema.Validate(normalized); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := normalized.ID()
	if _, exists := s.docs[id]; exists {
		return nil, &domain.ConflictError{Kind: s.schema.Kind, Fields: []string{domain.FieldID}}
	}
	if err := s.checkUnique(normalized, ""); err != nil {
		return nil, err
	}
	s.docs[id] = normalized
	s.order = append(s.order, id)
	return domain.Normalize(normalized)
}

func (s *memoryStore) Update(ctx context.Context, id string, fields domain.Document) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patch, err := domain.Normalize(fields.Without(domain.FieldID))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.docs[id]
	if !ok {
		return nil, domain.NotFound(s.schema.Kind, id)
	}
	merged := current.Clone()
	for k, v := range patch {
		merged[k] = v
	}
	if err := s.schema.Validate(merged); err != nil {
		return nil, err
	}
	if err := s.checkUnique(merged, id); err != nil {
		return nil, err
	}
	s.docs[id] = merged
	return domain.Normalize(merged)
}

func (s *memoryStore) Delete(ctx context.Context, id string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.NotFound(s.schema.Kind, id)
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return doc, nil
}

// checkUnique must be called with the write lock held.
func (s *memoryStore) checkUnique(doc domain.Document, selfID string) error {
	for _, fields := range s.schema.Unique {
		key, ok := uniqueKey(doc, fields)
		if !ok {
			continue
		}
		for id, other := range s.docs {
			if id == selfID {
				continue
			}
			if otherKey, ok := uniqueKey(other, fields); ok && otherKey == key {
				return &domain.ConflictError{Kind: s.schema.Kind, Fields: fields}
			}
		}
	}
	return nil
}

func uniqueKey(doc domain.Document, fields []string) (string, bool) {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := doc[f]
		if !ok || v == nil {
			return "", false
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, "\x00"), true
}

func matches(doc domain.Document, filter domain.Document) bool {
	for field, want := range filter {
		if !reflect.DeepEqual(doc[field], want) {
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
