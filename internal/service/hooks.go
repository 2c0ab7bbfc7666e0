package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// kindHooks fills defaults and derived fields per kind.
type kindHooks struct {
	departments repository.DocumentStore
	profiles    repository.DocumentStore
	now         func() time.Time
}

func (h *kindHooks) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now().UTC()
}

func (h *kindHooks) userBeforeCreate(_ context.Context, _ domain.Actor, doc domain.Document) error {
	normalizeEmail(doc)
	return nil
}

func (h *kindHooks) userBeforeUpdate(_ context.Context, _ domain.Actor, _, patch domain.Document) error {
	normalizeEmail(patch)
	return nil
}

func (h *kindHooks) departmentBeforeCreate(_ context.Context, _ domain.Actor, doc domain.Document) error {
	doc[domain.FieldEmployeeCount] = 0
	return nil
}

// departmentBeforeUpdate drops employeeCount: only the cascade writes it.
func (h *kindHooks) departmentBeforeUpdate(_ context.Context, _ domain.Actor, _, patch domain.Document) error {
	delete(patch, domain.FieldEmployeeCount)
	return nil
}

func (h *kindHooks) profileBeforeCreate(ctx context.Context, _ domain.Actor, doc domain.Document) error {
	if err := h.requireDepartment(ctx, doc.String(domain.FieldDepartment)); err != nil {
		return err
	}
	if _, ok := doc[domain.FieldJoiningDate]; !ok {
		doc[domain.FieldJoiningDate] = h.clock()
	}
	return canonicalDecimal(doc, domain.FieldSalary)
}

func (h *kindHooks) profileBeforeUpdate(ctx context.Context, _ domain.Actor, before, patch domain.Document) error {
	if err := canonicalDecimal(patch, domain.FieldSalary); err != nil {
		return err
	}
	dept, ok := patch[domain.FieldDepartment]
	if !ok || fmt.Sprint(dept) == before.String(domain.FieldDepartment) {
		return nil
	}
	return h.requireDepartment(ctx, patch.String(domain.FieldDepartment))
}

// payrollBeforeCreate resolves the profile and computes netPay from its current salary.
func (h *kindHooks) payrollBeforeCreate(ctx context.Context, _ domain.Actor, doc domain.Document) error {
	profile, err := h.profiles.FindByID(ctx, doc.String(domain.FieldEmployeeProfileID), repository.ReadOptions{})
	if err != nil {
		return err
	}
	salary, err := decimalField(profile, domain.FieldSalary)
	if err != nil {
		return err
	}
	bonus, err := decimalField(doc, domain.FieldBonus)
	if err != nil {
		return err
	}
	deductions, err := decimalField(doc, domain.FieldDeductions)
	if err != nil {
		return err
	}

	now := h.clock()
	if _, ok := doc[domain.FieldMonth]; !ok {
		doc[domain.FieldMonth] = int(now.Month())
	}
	if _, ok := doc[domain.FieldYear]; !ok {
		doc[domain.FieldYear] = now.Year()
	}
	if _, ok := doc[domain.FieldPaymentDate]; !ok {
		doc[domain.FieldPaymentDate] = now
	}
	doc[domain.FieldBonus] = bonus
	doc[domain.FieldDeductions] = deductions
	doc[domain.FieldNetPay] = domain.NetPay(salary, bonus, deductions)
	return nil
}

// payrollBeforeUpdate keeps netPay derived. The salary fixed at creation is recovered from
// the stored amounts, so later salary changes do not leak into old payrolls.
func (h *kindHooks) payrollBeforeUpdate(_ context.Context, _ domain.Actor, before, patch domain.Document) error {
	delete(patch, domain.FieldNetPay)
	_, bonusChanged := patch[domain.FieldBonus]
	_, deductionsChanged := patch[domain.FieldDeductions]
	if !bonusChanged && !deductionsChanged {
		return nil
	}

	netPay, err := decimalField(before, domain.FieldNetPay)
	if err != nil {
		return err
	}
	oldBonus, err := decimalField(before, domain.FieldBonus)
	if err != nil {
		return err
	}
	oldDeductions, err := decimalField(before, domain.FieldDeductions)
	if err != nil {
		return err
	}
	salary := netPay.Sub(oldBonus).Add(oldDeductions)

	bonus, deductions := oldBonus, oldDeductions
	if bonusChanged {
		if bonus, err = decimalField(patch, domain.FieldBonus); err != nil {
			return err
		}
		patch[domain.FieldBonus] = bonus
	}
	if deductionsChanged {
		if deductions, err = decimalField(patch, domain.FieldDeductions); err != nil {
			return err
		}
		patch[domain.FieldDeductions] = deductions
	}
	patch[domain.FieldNetPay] = domain.NetPay(salary, bonus, deductions)
	return nil
}

func (h *kindHooks) requireDepartment(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError(domain.FieldDepartment, "is required")
	}
	_, err := h.departments.FindByID(ctx, id, repository.ReadOptions{})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError(domain.FieldDepartment, "department does not exist")
	}
	return err
}

func normalizeEmail(doc domain.Document) {
	if email, ok := doc["email"].(string); ok {
		doc["email"] = strings.ToLower(strings.TrimSpace(email))
	}
}

// canonicalDecimal rewrites a present money field as a decimal.Decimal, so every amount is
// stored in the same string form whatever JSON type the client sent.
func canonicalDecimal(doc domain.Document, field string) error {
	if _, ok := doc[field]; !ok {
		return nil
	}
	d, err := decimalField(doc, field)
	if err != nil {
		return err
	}
	doc[field] = d
	return nil
}

// decimalField reads a money field stored as a JSON string or number. Missing is zero.
func decimalField(doc domain.Document, field string) (decimal.Decimal, error) {
	switch v := doc[field].(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, domain.NewValidationError(field, "must be a decimal amount")
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	}
	return decimal.Zero, domain.NewValidationError(field, "must be a decimal amount")
}
