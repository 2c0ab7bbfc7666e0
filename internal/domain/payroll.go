package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payroll is one monthly payment to an employee profile.
type Payroll struct {
	ID                string          `json:"id"`
	EmployeeProfileID string          `json:"employeeProfileId" validate:"required"`
	Bonus             decimal.Decimal `json:"bonus"`
	Deductions        decimal.Decimal `json:"deductions"`
	NetPay            decimal.Decimal `json:"netPay"`
	PaymentDate       time.Time       `json:"paymentDate"`
	Month             int             `json:"month" validate:"min=1,max=12"`
	Year              int             `json:"year" validate:"min=1970,max=9999"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatedBy         string          `json:"createdBy,omitempty"`
	UpdatedBy         string          `json:"updatedBy,omitempty"`
}

// Payroll field names used by the engine.
const (
	FieldEmployeeProfileID = "employeeProfileId"
	FieldBonus             = "bonus"
	FieldDeductions        = "deductions"
	FieldNetPay            = "netPay"
	FieldPaymentDate       = "paymentDate"
	FieldMonth             = "month"
	FieldYear              = "year"
)

// NetPay computes salary + bonus - deductions.
func NetPay(salary, bonus, deductions decimal.Decimal) decimal.Decimal {
	return salary.Add(bonus).Sub(deductions)
}
