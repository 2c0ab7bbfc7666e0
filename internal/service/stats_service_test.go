package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/domain"
)

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sales := env.createDepartment(t, "Sales")
	engineering := env.createDepartment(t, "Engineering")
	env.createUser(t, "hana", domain.RoleHR)
	env.createUser(t, "root", domain.RoleAdmin)
	emil := env.createUser(t, "emil", domain.RoleEmployee)
	ella := env.createUser(t, "ella", domain.RoleEmployee)
	eric := env.createUser(t, "eric", domain.RoleEmployee)
	emilProfile := env.createProfile(t, emil.ID(), sales.ID())
	ellaProfile := env.createProfile(t, ella.ID(), sales.ID())
	ericProfile := env.createProfile(t, eric.ID(), engineering.ID())
	_, err := env.svc.Delete(ctx, admin, domain.KindEmployeeProfile, ericProfile.ID())
	require.NoError(t, err)

	for _, profileID := range []string{emilProfile.ID(), ellaProfile.ID()} {
		payload := payrollPayload(profileID, int(now.Month()))
		payload["year"] = now.Year()
		_, err := env.svc.Create(ctx, admin, domain.KindPayroll, payload)
		require.NoError(t, err)
	}
	lastYear := payrollPayload(emilProfile.ID(), int(now.Month()))
	lastYear["year"] = now.Year() - 1
	_, err = env.svc.Create(ctx, admin, domain.KindPayroll, lastYear)
	require.NoError(t, err)

	svc := NewStatsService(env.stores)
	svc.now = func() time.Time { return now }
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ActiveEmployees)
	assert.Equal(t, 1, stats.InactiveEmployees)
	assert.Equal(t, 1, stats.HRUsers)
	assert.Equal(t, 1, stats.AdminUsers)
	assert.Equal(t, 4, stats.NewUsersThisMonth, "deactivated users are not counted")

	assert.Equal(t, 2, stats.Payroll.Count)
	assert.Equal(t, "2300", stats.Payroll.NetPay.String())
	assert.Equal(t, "400", stats.Payroll.Bonus.String())
	assert.Equal(t, "100", stats.Payroll.Deductions.String())

	require.Len(t, stats.Departments, 2)
	assert.Equal(t, DepartmentCount{ID: sales.ID(), Name: "Sales", EmployeeCount: 2}, stats.Departments[0])
	assert.Equal(t, 0, stats.Departments[1].EmployeeCount)
}
