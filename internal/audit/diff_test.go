package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/hr-service/internal/domain"
)

func TestDiffSingleField(t *testing.T) {
	before := domain.Document{"id": "p1", "department": "sales", "salary": "1000"}
	after := domain.Document{"id": "p1", "department": "engineering", "salary": "1000"}

	changes := Diff(before, after)

	assert.Equal(t, domain.ChangeSet{
		"department": {From: "sales", To: "engineering"},
	}, changes)
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	doc := domain.Document{"id": "d1", "name": "Sales", "employeeCount": float64(3)}

	assert.Empty(t, Diff(doc, doc.Clone()))
}

func TestDiffIgnoresBookkeepingFields(t *testing.T) {
	before := domain.Document{"name": "Sales", "createdBy": "u1", "updatedBy": "u1"}
	after := domain.Document{"name": "Sales", "createdBy": "u2", "updatedBy": "u2"}

	assert.Empty(t, Diff(before, after))
}

func TestDiffSkipsFieldsMissingBefore(t *testing.T) {
	before := domain.Document{"name": "Sales"}
	after := domain.Document{"name": "Sales", "description": "new field"}

	assert.Empty(t, Diff(before, after))
}

func TestDiffComparesStringForms(t *testing.T) {
	tests := []struct {
		name    string
		from    any
		to      any
		changed bool
	}{
		{name: "number and numeric string", from: float64(12), to: "12", changed: false},
		{name: "bool flip", from: true, to: false, changed: true},
		{name: "different textual decimal", from: "10.0", to: "10", changed: true},
		{name: "nil to value", from: nil, to: "x", changed: true},
		{name: "maps with same content", from: map[string]any{"a": 1, "b": 2}, to: map[string]any{"b": 2, "a": 1}, changed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Diff(domain.Document{"f": tt.from}, domain.Document{"f": tt.to})
			if tt.changed {
				assert.Equal(t, domain.ChangeSet{"f": {From: tt.from, To: tt.to}}, changes)
			} else {
				assert.Empty(t, changes)
			}
		})
	}
}
