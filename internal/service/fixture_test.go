package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/audit"
	"github.com/spec-kit/hr-service/internal/cascade"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/repository"
)

var admin = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

type testEnv struct {
	stores     map[domain.Kind]repository.DocumentStore
	auditRepo  repository.AuditRepository
	queue      cascade.RepairQueue
	dispatcher events.Dispatcher
	svc        *ResourceService
}

type envOption func(*ResourceDependencies)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	env := &testEnv{
		stores:     repository.NewMemoryStores(),
		auditRepo:  repository.NewMemoryAuditRepository(),
		queue:      cascade.NewMemoryRepairQueue(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	deps := ResourceDependencies{
		Resources: NewResources(env.stores),
		Audit:     audit.NewWriter(env.auditRepo, logger),
		Cascade: cascade.NewCounter(env.stores[domain.KindDepartment], env.stores[domain.KindEmployeeProfile],
			env.queue, metrics, logger),
		Dispatcher: env.dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.svc = NewResourceService(deps)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string, role domain.Role) domain.Document {
	t.Helper()
	res, err := e.svc.Create(context.Background(), admin, domain.KindUser, domain.Document{
		"name":  name,
		"email": name + "@example.com",
		"role":  string(role),
	})
	require.NoError(t, err)
	return res.Document
}

func (e *testEnv) createDepartment(t *testing.T, name string) domain.Document {
	t.Helper()
	res, err := e.svc.Create(context.Background(), admin, domain.KindDepartment, domain.Document{
		"name":        name,
		"description": name + " department",
	})
	require.NoError(t, err)
	return res.Document
}

func profilePayload(userID, departmentID string) domain.Document {
	return domain.Document{
		"employeeId":  userID,
		"department":  departmentID,
		"salary":      "1000",
		"phone":       "5551234567",
		"address":     "Main St 1",
		"dateOfBirth": "1990-01-01T00:00:00Z",
	}
}

func (e *testEnv) createProfile(t *testing.T, userID, departmentID string) domain.Document {
	t.Helper()
	res, err := e.svc.Create(context.Background(), admin, domain.KindEmployeeProfile, profilePayload(userID, departmentID))
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	return res.Document
}

func (e *testEnv) employeeCount(t *testing.T, departmentID string) float64 {
	t.Helper()
	doc, err := e.stores[domain.KindDepartment].FindByID(context.Background(), departmentID, repository.ReadOptions{})
	require.NoError(t, err)
	n, _ := doc[domain.FieldEmployeeCount].(float64)
	return n
}

func (e *testEnv) auditFor(t *testing.T, kind domain.Kind, id string) []domain.AuditRecord {
	t.Helper()
	records, err := e.auditRepo.List(context.Background(), repository.AuditFilter{Kind: kind, ID: id})
	require.NoError(t, err)
	return records
}

