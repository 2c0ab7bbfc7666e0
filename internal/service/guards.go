package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// GuardRules holds the role-scoped protections for payrolls and employee profiles.
// Every lookup fails closed: a reference that cannot be resolved rejects the request.
type GuardRules struct {
	users    repository.DocumentStore
	profiles repository.DocumentStore
	payrolls repository.DocumentStore
}

// NewGuardRules builds the guard rules over the stores they resolve references in.
func NewGuardRules(users, profiles, payrolls repository.DocumentStore) *GuardRules {
	return &GuardRules{users: users, profiles: profiles, payrolls: payrolls}
}

// Payroll forbids an hr actor from creating or modifying a payroll of an hr user. Deletes
// are not guarded.
func (g *GuardRules) Payroll(ctx context.Context, actor domain.Actor, op Operation, id string, payload domain.Document) error {
	if op == OpDelete {
		return nil
	}

	var profileIDs []string
	if op == OpUpdate {
		existing, err := g.payrolls.FindByID(ctx, id, repository.ReadOptions{})
		if err != nil {
			return err
		}
		profileIDs = append(profileIDs, existing.String(domain.FieldEmployeeProfileID))
	}
	if target := payload.String(domain.FieldEmployeeProfileID); target != "" {
		profileIDs = append(profileIDs, target)
	} else if op == OpCreate {
		return domain.NewValidationError(domain.FieldEmployeeProfileID, "is required")
	}

	for _, profileID := range profileIDs {
		role, err := g.profileOwnerRole(ctx, profileID)
		if err != nil {
			return err
		}
		if actor.Role == domain.RoleHR && role == domain.RoleHR {
			return domain.Forbidden("hr users cannot manage payrolls of hr users")
		}
	}
	return nil
}

// EmployeeProfile forbids an hr actor from touching the profile of an hr user (their own
// included) and forbids profiles for admin users.
func (g *GuardRules) EmployeeProfile(ctx context.Context, actor domain.Actor, op Operation, id string, payload domain.Document) error {
	var userIDs []string
	if op != OpCreate {
		existing, err := g.profiles.FindByID(ctx, id, repository.ReadOptions{IncludeInactive: true})
		if err != nil {
			return err
		}
		userIDs = append(userIDs, existing.String(domain.FieldEmployeeID))
	}
	target := payload.String(domain.FieldEmployeeID)
	switch {
	case op == OpCreate && target == "":
		return domain.NewValidationError(domain.FieldEmployeeID, "is required")
	case op != OpDelete && target != "" && (len(userIDs) == 0 || userIDs[0] != target):
		userIDs = append(userIDs, target)
	}

	for i, userID := range userIDs {
		role, err := g.userRole(ctx, userID)
		if err != nil {
			return err
		}
		// only a newly linked user is checked for the admin exclusion
		newlyLinked := op == OpCreate || i > 0
		if newlyLinked && role == domain.RoleAdmin {
			return domain.Forbidden("employee profiles cannot be created for admin users")
		}
		if actor.Role == domain.RoleHR && role == domain.RoleHR {
			return domain.Forbidden("hr users cannot manage employee profiles of hr users")
		}
	}
	return nil
}

// RequireEmployeeProfile returns the active profile of actor. Non-admin actors without one
// are forbidden; admins without one get a nil profile.
func (g *GuardRules) RequireEmployeeProfile(ctx context.Context, actor domain.Actor) (domain.Document, error) {
	docs, err := g.profiles.Find(ctx, repository.Query{
		Filter: repository.Filter{domain.FieldEmployeeID: actor.ID},
		Limit:  1,
	}, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		if actor.Role == domain.RoleAdmin {
			return nil, nil
		}
		return nil, domain.Forbidden("an active employee profile is required")
	}
	return docs[0], nil
}

func (g *GuardRules) profileOwnerRole(ctx context.Context, profileID string) (domain.Role, error) {
	profile, err := g.profiles.FindByID(ctx, profileID, repository.ReadOptions{IncludeInactive: true})
	if err != nil {
		return "", failClosed(err, fmt.Sprintf("employee profile %s cannot be resolved", profileID))
	}
	return g.userRole(ctx, profile.String(domain.FieldEmployeeID))
}

func (g *GuardRules) userRole(ctx context.Context, userID string) (domain.Role, error) {
	if userID == "" {
		return "", domain.Forbidden("referenced user cannot be resolved")
	}
	user, err := g.users.FindByID(ctx, userID, repository.ReadOptions{IncludeInactive: true})
	if err != nil {
		return "", failClosed(err, fmt.Sprintf("user %s cannot be resolved", userID))
	}
	return domain.Role(user.String("role")), nil
}

// failClosed turns a missing reference into Forbidden; other errors pass through.
func failClosed(err error, reason string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Forbidden(reason)
	}
	return err
}
