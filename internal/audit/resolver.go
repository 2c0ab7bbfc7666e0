package audit

import (
	"context"
	"fmt"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// Resolver follows polymorphic entity references through a kind to store table.
type Resolver struct {
	stores map[domain.Kind]repository.DocumentStore
}

// NewResolver builds a resolver over the given stores.
func NewResolver(stores map[domain.Kind]repository.DocumentStore) *Resolver {
	return &Resolver{stores: stores}
}

// Resolve loads the referenced entity regardless of its active flag. Hard-deleted entities
// resolve to NotFound.
func (r *Resolver) Resolve(ctx context.Context, ref domain.EntityRef) (domain.Document, error) {
	store, ok := r.stores[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("no store registered for %s", ref.Kind)
	}
	return store.FindByID(ctx, ref.ID, repository.ReadOptions{IncludeInactive: true})
}
