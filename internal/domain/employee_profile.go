package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeProfile links a User to a Department. Profiles are soft-deleted.
type EmployeeProfile struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employeeId" validate:"required"`
	Department  string          `json:"department" validate:"required"`
	Salary      decimal.Decimal `json:"salary"`
	Phone       string          `json:"phone" validate:"required,min=7,max=20"`
	Address     string          `json:"address" validate:"required"`
	DateOfBirth time.Time       `json:"dateOfBirth" validate:"required"`
	JoiningDate time.Time       `json:"joiningDate"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	UpdatedBy   string          `json:"updatedBy,omitempty"`
}

// Profile field names used by the engine.
const (
	FieldEmployeeID  = "employeeId"
	FieldDepartment  = "department"
	FieldSalary      = "salary"
	FieldJoiningDate = "joiningDate"
)
