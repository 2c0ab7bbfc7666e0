package audit

import (
	"fmt"

	"github.com/spec-kit/hr-service/internal/domain"
)

// ignoredFields are bookkeeping fields never reported as changes.
var ignoredFields = map[string]struct{}{
	domain.FieldCreatedBy: {},
	domain.FieldUpdatedBy: {},
}

// Diff compares two snapshots of the same entity. Only fields present in both are compared,
// by their string form, so equivalent values with a different textual form count as changed.
// An empty result means nothing to audit.
func Diff(before, after domain.Document) domain.ChangeSet {
	changes := domain.ChangeSet{}
	for field, to := range after {
		if _, skip := ignoredFields[field]; skip {
			continue
		}
		from, existed := before[field]
		if !existed {
			continue
		}
		if fmt.Sprint(from) != fmt.Sprint(to) {
			changes[field] = domain.Change{From: from, To: to}
		}
	}
	return changes
}
