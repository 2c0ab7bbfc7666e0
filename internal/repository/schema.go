package repository

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/hr-service/internal/domain"
)

// Schema describes one collection: its table, unique keys and document validation.
type Schema struct {
	Kind       domain.Kind
	Collection string
	Unique     [][]string
	Validate   func(domain.Document) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Schemas returns the schema of every entity kind.
func Schemas() map[domain.Kind]Schema {
	return map[domain.Kind]Schema{
		domain.KindUser: {
			Kind:       domain.KindUser,
			Collection: "users",
			Unique:     [][]string{{"email"}},
			Validate:   validateAs[domain.User](nil),
		},
		domain.KindEmployeeProfile: {
			Kind:       domain.KindEmployeeProfile,
			Collection: "employee_profiles",
			Unique:     [][]string{{domain.FieldEmployeeID}},
			Validate: validateAs(func(p *domain.EmployeeProfile) []domain.FieldError {
				return nonNegative(map[string]decimal.Decimal{domain.FieldSalary: p.Salary})
			}),
		},
		domain.KindDepartment: {
			Kind:       domain.KindDepartment,
			Collection: "departments",
			Unique:     [][]string{{"name"}},
			Validate:   validateAs[domain.Department](nil),
		},
		domain.KindPayroll: {
			Kind:       domain.KindPayroll,
			Collection: "payrolls",
			Unique:     [][]string{{domain.FieldEmployeeProfileID, domain.FieldMonth, domain.FieldYear}},
			Validate: validateAs(func(p *domain.Payroll) []domain.FieldError {
				return nonNegative(map[string]decimal.Decimal{
					domain.FieldBonus:      p.Bonus,
					domain.FieldDeductions: p.Deductions,
				})
			}),
		},
	}
}

// validateAs decodes the document into T, runs struct tags and then the extra checks.
func validateAs[T any](extra func(*T) []domain.FieldError) func(domain.Document) error {
	return func(doc domain.Document) error {
		entity, err := domain.FromDocument[T](doc)
		if err != nil {
			return domain.NewValidationError("document", err.Error())
		}
		var fieldErrs []domain.FieldError
		if err := validate.Struct(entity); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return err
			}
			for _, fe := range verrs {
				fieldErrs = append(fieldErrs, domain.FieldError{
					Field:   fe.Field(),
					Message: "failed " + fe.Tag() + " check",
				})
			}
		}
		if extra != nil {
			fieldErrs = append(fieldErrs, extra(entity)...)
		}
		if len(fieldErrs) > 0 {
			return &domain.ValidationError{Errors: fieldErrs}
		}
		return nil
	}
}

func nonNegative(values map[string]decimal.Decimal) []domain.FieldError {
	var out []domain.FieldError
	for field, v := range values {
		if v.IsNegative() {
			out = append(out, domain.FieldError{Field: field, Message: "must not be negative"})
		}
	}
	return out
}
