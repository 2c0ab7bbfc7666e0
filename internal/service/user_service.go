package service

import (
	"context"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// UserService holds user queries beyond plain CRUD.
type UserService struct {
	users    repository.DocumentStore
	profiles repository.DocumentStore
}

// NewUserService constructs the service.
func NewUserService(users, profiles repository.DocumentStore) *UserService {
	return &UserService{users: users, profiles: profiles}
}

// Unassigned lists active employee and hr users that have no employee profile. Deactivated
// profiles still count as assigned since employeeId is unique across all profiles.
func (s *UserService) Unassigned(ctx context.Context) ([]domain.Document, error) {
	profiles, err := findAll(ctx, s.profiles, nil, repository.ReadOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	assigned := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		assigned[p.String(domain.FieldEmployeeID)] = struct{}{}
	}

	out := make([]domain.Document, 0)
	for _, role := range []domain.Role{domain.RoleEmployee, domain.RoleHR} {
		users, err := findAll(ctx, s.users, repository.Filter{"role": string(role)}, repository.ReadOptions{})
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if _, ok := assigned[u.ID()]; !ok {
				out = append(out, u)
			}
		}
	}
	return out, nil
}
