package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/domain"
)

func newEmployeeService(env *testEnv) *EmployeeService {
	rules := NewGuardRules(env.stores[domain.KindUser], env.stores[domain.KindEmployeeProfile], env.stores[domain.KindPayroll])
	return NewEmployeeService(env.stores[domain.KindEmployeeProfile], env.stores[domain.KindUser], rules)
}

func TestMyTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newEmployeeService(env)
	sales := env.createDepartment(t, "Sales")
	engineering := env.createDepartment(t, "Engineering")
	emil := env.createUser(t, "emil", domain.RoleEmployee)
	ella := env.createUser(t, "ella", domain.RoleEmployee)
	eric := env.createUser(t, "eric", domain.RoleEmployee)
	otto := env.createUser(t, "otto", domain.RoleEmployee)
	env.createProfile(t, emil.ID(), sales.ID())
	ellaProfile := env.createProfile(t, ella.ID(), sales.ID())
	env.createProfile(t, eric.ID(), engineering.ID())
	ottoProfile := env.createProfile(t, otto.ID(), sales.ID())
	_, err := env.svc.Delete(ctx, admin, domain.KindEmployeeProfile, ottoProfile.ID())
	require.NoError(t, err)

	team, err := svc.MyTeam(ctx, actorFor(emil))
	require.NoError(t, err)

	require.Len(t, team, 1)
	assert.Equal(t, ellaProfile.ID(), team[0].Profile.ID())
	assert.Equal(t, "ella", team[0].User["name"])
	assert.NotContains(t, team[0].User, "createdBy")
}

func TestMyTeamWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := newEmployeeService(env)
	employee := env.createUser(t, "emil", domain.RoleEmployee)

	_, err := svc.MyTeam(context.Background(), actorFor(employee))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.MyTeam(context.Background(), admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMyProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := newEmployeeService(env)
	dept := env.createDepartment(t, "Sales")
	employee := env.createUser(t, "emil", domain.RoleEmployee)

	_, err := svc.MyProfile(context.Background(), actorFor(employee))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created := env.createProfile(t, employee.ID(), dept.ID())
	profile, err := svc.MyProfile(context.Background(), actorFor(employee))
	require.NoError(t, err)
	assert.Equal(t, created.ID(), profile.ID())
}

func TestUnassignedUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Sales")
	env.createUser(t, "root", domain.RoleAdmin)
	hana := env.createUser(t, "hana", domain.RoleHR)
	emil := env.createUser(t, "emil", domain.RoleEmployee)
	ella := env.createUser(t, "ella", domain.RoleEmployee)
	gone := env.createUser(t, "gone", domain.RoleEmployee)
	env.createProfile(t, emil.ID(), dept.ID())
	ellaProfile := env.createProfile(t, ella.ID(), dept.ID())
	_, err := env.svc.Delete(ctx, admin, domain.KindEmployeeProfile, ellaProfile.ID())
	require.NoError(t, err)
	_, err = env.svc.Delete(ctx, admin, domain.KindUser, gone.ID())
	require.NoError(t, err)

	users, err := NewUserService(env.stores[domain.KindUser], env.stores[domain.KindEmployeeProfile]).Unassigned(ctx)
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, hana.ID(), users[0].ID())
}
