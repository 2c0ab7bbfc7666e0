package domain

import "fmt"

// Kind names an entity collection handled by the resource engine.
type Kind string

const (
	KindUser            Kind = "User"
	KindEmployeeProfile Kind = "EmployeeProfile"
	KindDepartment      Kind = "Department"
	KindPayroll         Kind = "Payroll"
)

// Kinds lists every entity kind in registration order.
var Kinds = []Kind{KindUser, KindEmployeeProfile, KindDepartment, KindPayroll}

// SoftDeletable reports whether deletes flip the active flag instead of removing the document.
func (k Kind) SoftDeletable() bool {
	return k == KindUser || k == KindEmployeeProfile
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a raw discriminator into a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", raw)
	}
	return k, nil
}

// EntityRef is a polymorphic reference: the kind tag selects the collection the id lives in.
type EntityRef struct {
	Kind Kind   `json:"entityKind"`
	ID   string `json:"entityId"`
}

func (r EntityRef) String() string {
	return string(r.Kind) + "/" + r.ID
}
