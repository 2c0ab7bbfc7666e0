package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/domain"
)

func TestPayrollNetPay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Sales")
	user := env.createUser(t, "emil", domain.RoleEmployee)
	profile := env.createProfile(t, user.ID(), dept.ID())

	payload := payrollPayload(profile.ID(), 5)
	payload["netPay"] = "1"
	res, err := env.svc.Create(ctx, admin, domain.KindPayroll, payload)
	require.NoError(t, err)
	assert.Equal(t, "1150", res.Document["netPay"])

	_, err = env.svc.Update(ctx, admin, domain.KindEmployeeProfile, profile.ID(), domain.Document{"salary": "2000"})
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, admin, domain.KindPayroll, res.Document.ID(), domain.Document{
		"bonus":  "300",
		"netPay": "99999",
	})
	require.NoError(t, err)
	assert.Equal(t, "1250", updated.Document["netPay"])

	records := env.auditFor(t, domain.KindPayroll, res.Document.ID())
	require.Len(t, records, 2)
	assert.Equal(t, domain.ChangeSet{
		"bonus":  {From: "200", To: "300"},
		"netPay": {From: "1150", To: "1250"},
	}, records[0].Changes)

	_, err = env.svc.Create(ctx, admin, domain.KindPayroll, payrollPayload(profile.ID(), 5))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPayrollDefaultsPeriod(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t)
	hooks := &kindHooks{profiles: env.stores[domain.KindEmployeeProfile], now: func() time.Time { return now }}
	dept := env.createDepartment(t, "Sales")
	user := env.createUser(t, "emil", domain.RoleEmployee)
	profile := env.createProfile(t, user.ID(), dept.ID())

	doc := domain.Document{"employeeProfileId": profile.ID()}
	require.NoError(t, hooks.payrollBeforeCreate(context.Background(), admin, doc))

	assert.Equal(t, 3, doc["month"])
	assert.Equal(t, 2024, doc["year"])
	assert.Equal(t, now, doc["paymentDate"])
	assert.True(t, decimal.NewFromInt(1000).Equal(doc["netPay"].(decimal.Decimal)))
}

func TestProfileRequiresExistingDepartment(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "emil", domain.RoleEmployee)

	_, err := env.svc.Create(context.Background(), admin, domain.KindEmployeeProfile, profilePayload(user.ID(), "no-such-dept"))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "department", verr.Errors[0].Field)
}

func TestProfileJoiningDateDefaults(t *testing.T) {
	env := newTestEnv(t)
	dept := env.createDepartment(t, "Sales")
	user := env.createUser(t, "emil", domain.RoleEmployee)

	profile := env.createProfile(t, user.ID(), dept.ID())

	joined, err := time.Parse(time.RFC3339Nano, profile.String("joiningDate"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), joined, time.Minute)
}

func TestUserEmailIsNormalized(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.svc.Create(context.Background(), admin, domain.KindUser, domain.Document{
		"name": "Ana", "email": "  Ana@Example.COM ", "role": "employee",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", res.Document["email"])
}

func TestDecimalField(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{name: "missing", value: nil, want: "0"},
		{name: "string", value: "12.50", want: "12.5"},
		{name: "number", value: float64(3), want: "3"},
		{name: "int", value: 4, want: "4"},
		{name: "garbage", value: "ten", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decimalField(domain.Document{"amount": tt.value}, "amount")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
