package service

import (
	"context"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// Operation names a mutation checked by a guard.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Guard authorizes a mutation before any write. id is empty for create, payload is nil
// for delete.
type Guard func(ctx context.Context, actor domain.Actor, op Operation, id string, payload domain.Document) error

// CreateHook adjusts a document before insertion.
type CreateHook func(ctx context.Context, actor domain.Actor, doc domain.Document) error

// UpdateHook adjusts a patch before it is merged into before.
type UpdateHook func(ctx context.Context, actor domain.Actor, before, patch domain.Document) error

// Resource is the registry entry of one entity kind.
type Resource struct {
	Kind         domain.Kind
	Store        repository.DocumentStore
	Guard        Guard
	BeforeCreate CreateHook
	BeforeUpdate UpdateHook
}

// NewResources registers every kind over stores with its guards and hooks.
func NewResources(stores map[domain.Kind]repository.DocumentStore) map[domain.Kind]Resource {
	rules := NewGuardRules(stores[domain.KindUser], stores[domain.KindEmployeeProfile], stores[domain.KindPayroll])
	hooks := &kindHooks{
		departments: stores[domain.KindDepartment],
		profiles:    stores[domain.KindEmployeeProfile],
	}

	return map[domain.Kind]Resource{
		domain.KindUser: {
			Kind:         domain.KindUser,
			Store:        stores[domain.KindUser],
			BeforeCreate: hooks.userBeforeCreate,
			BeforeUpdate: hooks.userBeforeUpdate,
		},
		domain.KindEmployeeProfile: {
			Kind:         domain.KindEmployeeProfile,
			Store:        stores[domain.KindEmployeeProfile],
			Guard:        rules.EmployeeProfile,
			BeforeCreate: hooks.profileBeforeCreate,
			BeforeUpdate: hooks.profileBeforeUpdate,
		},
		domain.KindDepartment: {
			Kind:         domain.KindDepartment,
			Store:        stores[domain.KindDepartment],
			BeforeCreate: hooks.departmentBeforeCreate,
			BeforeUpdate: hooks.departmentBeforeUpdate,
		},
		domain.KindPayroll: {
			Kind:         domain.KindPayroll,
			Store:        stores[domain.KindPayroll],
			Guard:        rules.Payroll,
			BeforeCreate: hooks.payrollBeforeCreate,
			BeforeUpdate: hooks.payrollBeforeUpdate,
		},
	}
}
