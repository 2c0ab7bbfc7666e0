package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/audit"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

func TestAuditServiceResolvesEntities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAuditService(env.auditRepo, audit.NewResolver(env.stores))
	dept := env.createDepartment(t, "Sales")

	records, err := svc.List(ctx, repository.AuditFilter{Kind: domain.KindDepartment})
	require.NoError(t, err)
	require.Len(t, records, 1)

	entry, err := svc.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, dept.ID(), entry.Entity.ID())

	_, err = env.svc.Delete(ctx, admin, domain.KindDepartment, dept.ID())
	require.NoError(t, err)
	entry, err = svc.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Nil(t, entry.Entity)
	assert.Equal(t, dept.ID(), entry.Record.Entity.ID)
}

func TestAuditServiceRejectsUnknownFilters(t *testing.T) {
	svc := NewAuditService(repository.NewMemoryAuditRepository(), audit.NewResolver(nil))

	_, err := svc.List(context.Background(), repository.AuditFilter{Kind: "Invoice"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.List(context.Background(), repository.AuditFilter{Action: "purge"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
