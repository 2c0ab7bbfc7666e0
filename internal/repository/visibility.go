package repository

import "github.com/spec-kit/hr-service/internal/domain"

// visible reports whether doc passes the default scope of kind under opts.
func visible(kind domain.Kind, doc domain.Document, opts ReadOptions) bool {
	if opts.IncludeInactive || !kind.SoftDeletable() {
		return true
	}
	return doc.Active()
}

// visibilityClause returns the SQL predicate hiding inactive documents, or "" when unscoped.
func visibilityClause(kind domain.Kind, opts ReadOptions) string {
	if opts.IncludeInactive || !kind.SoftDeletable() {
		return ""
	}
	return "COALESCE(doc->>'active', 'true') <> 'false'"
}
