package domain

import "time"

// Department groups employee profiles. EmployeeCount is derived by the aggregate cascade.
type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description" validate:"required"`
	EmployeeCount int       `json:"employeeCount" validate:"gte=0"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
}

// FieldEmployeeCount is the denormalized active-profile count.
const FieldEmployeeCount = "employeeCount"
