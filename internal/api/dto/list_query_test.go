package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/domain"
)

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery(domain.KindPayroll, map[string]string{
		"employeeProfileId": "p1",
		"month":             "4",
		"netPay":            "100",
		"sort":              "-year, month",
		"fields":            "netPay,month",
		"limit":             "10",
		"page":              "3",
		"includeInactive":   "true",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"employeeProfileId": "p1", "month": 4, "netPay": "100"}, q.Filter)
	assert.Equal(t, []SortField{{Field: "year", Desc: true}, {Field: "month"}}, q.Sort)
	assert.Equal(t, []string{"netPay", "month"}, q.Fields)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
	assert.True(t, q.IncludeInactive)
}

func TestParseListQueryCoercesByEntityField(t *testing.T) {
	q, err := ParseListQuery(domain.KindUser, map[string]string{"active": "false", "role": "hr"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"active": false, "role": "hr"}, q.Filter)

	q, err = ParseListQuery(domain.KindDepartment, map[string]string{"employeeCount": "3", "unknownField": "7"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"employeeCount": 3, "unknownField": "7"}, q.Filter)
}

func TestParseListQueryCanonicalizesMoneyFilters(t *testing.T) {
	q, err := ParseListQuery(domain.KindEmployeeProfile, map[string]string{"salary": "1000.50"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"salary": "1000.5"}, q.Filter)

	q, err = ParseListQuery(domain.KindPayroll, map[string]string{"bonus": "050", "paymentDate": "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bonus": "50", "paymentDate": "2024-01-31"}, q.Filter)
}

func TestParseListQueryRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		kind   domain.Kind
		params map[string]string
	}{
		{"negative limit", domain.KindUser, map[string]string{"limit": "-1"}},
		{"non numeric offset", domain.KindUser, map[string]string{"offset": "x"}},
		{"zero page", domain.KindUser, map[string]string{"page": "0"}},
		{"bad bool", domain.KindUser, map[string]string{"includeInactive": "maybe"}},
		{"bad bool filter", domain.KindUser, map[string]string{"active": "yes please"}},
		{"bad int filter", domain.KindPayroll, map[string]string{"year": "twenty"}},
		{"bad decimal filter", domain.KindEmployeeProfile, map[string]string{"salary": "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListQuery(tt.kind, tt.params)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestParseListQueryOffsetWithoutPage(t *testing.T) {
	q, err := ParseListQuery(domain.KindUser, map[string]string{"limit": "5", "offset": "7"})
	require.NoError(t, err)
	assert.Equal(t, 7, q.Offset)
	assert.Empty(t, q.Filter)
}
