package service

import (
	"context"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// EmployeeService serves the self-service views of employee profiles.
type EmployeeService struct {
	profiles repository.DocumentStore
	users    repository.DocumentStore
	guards   *GuardRules
}

// NewEmployeeService constructs the service.
func NewEmployeeService(profiles, users repository.DocumentStore, guards *GuardRules) *EmployeeService {
	return &EmployeeService{profiles: profiles, users: users, guards: guards}
}

// TeamMember is a colleague with the user fields needed by the team view.
type TeamMember struct {
	Profile domain.Document `json:"profile"`
	User    domain.Document `json:"user,omitempty"`
}

// MyProfile returns the active profile of the caller.
func (s *EmployeeService) MyProfile(ctx context.Context, actor domain.Actor) (domain.Document, error) {
	docs, err := s.profiles.Find(ctx, repository.Query{
		Filter: repository.Filter{domain.FieldEmployeeID: actor.ID},
		Limit:  1,
	}, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, &domain.NotFoundError{
			Ref:     domain.EntityRef{Kind: domain.KindEmployeeProfile},
			Message: "no employee profile found for the current user, ask hr to create one",
		}
	}
	return docs[0], nil
}

// MyTeam lists the active colleagues in the caller's department, excluding the caller.
func (s *EmployeeService) MyTeam(ctx context.Context, actor domain.Actor) ([]TeamMember, error) {
	profile, err := s.guards.RequireEmployeeProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &domain.NotFoundError{
			Ref:     domain.EntityRef{Kind: domain.KindEmployeeProfile},
			Message: "the current user has no employee profile and therefore no team",
		}
	}

	colleagues, err := findAll(ctx, s.profiles, repository.Filter{
		domain.FieldDepartment: profile.String(domain.FieldDepartment),
	}, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}

	team := make([]TeamMember, 0, len(colleagues))
	for _, colleague := range colleagues {
		if colleague.ID() == profile.ID() {
			continue
		}
		member := TeamMember{Profile: colleague}
		user, err := s.users.FindByID(ctx, colleague.String(domain.FieldEmployeeID), repository.ReadOptions{})
		switch {
		case err == nil:
			member.User = user.Without(domain.FieldCreatedBy, domain.FieldUpdatedBy)
		case !isNotFound(err):
			return nil, err
		}
		team = append(team, member)
	}
	return team, nil
}
