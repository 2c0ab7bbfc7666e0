package domain

import "time"

// AuditAction enumerates audited mutations.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// Valid reports whether a is a known action.
func (a AuditAction) Valid() bool {
	return a == AuditActionCreate || a == AuditActionUpdate || a == AuditActionDelete
}

// Change is the from/to pair of a single field.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ChangeSet maps field names to their change.
type ChangeSet map[string]Change

// AuditRecord is an immutable audit trail entry.
type AuditRecord struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	Entity    EntityRef   `json:"entity"`
	ActorID   string      `json:"actor"`
	Before    Document    `json:"before,omitempty"`
	After     Document    `json:"after,omitempty"`
	Changes   ChangeSet   `json:"changes,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
