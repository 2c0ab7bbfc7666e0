package service

import (
	"context"

	"github.com/spec-kit/hr-service/internal/audit"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// AuditEntry is an audit record with its referenced entity resolved, when it still exists.
type AuditEntry struct {
	Record *domain.AuditRecord `json:"record"`
	Entity domain.Document     `json:"entity,omitempty"`
}

// AuditService is the read-only view of the audit log.
type AuditService struct {
	repo     repository.AuditRepository
	resolver *audit.Resolver
}

// NewAuditService constructs the service.
func NewAuditService(repo repository.AuditRepository, resolver *audit.Resolver) *AuditService {
	return &AuditService{repo: repo, resolver: resolver}
}

// List returns audit records, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditRecord, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domain.NewValidationError("entityKind", "unknown entity kind")
	}
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, domain.NewValidationError("action", "unknown action")
	}
	return s.repo.List(ctx, filter)
}

// Get returns one record and resolves the entity it references.
func (s *AuditService) Get(ctx context.Context, id string) (*AuditEntry, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := &AuditEntry{Record: record}
	entity, err := s.resolver.Resolve(ctx, record.Entity)
	switch {
	case err == nil:
		entry.Entity = entity
	case !isNotFound(err):
		return nil, err
	}
	return entry, nil
}
