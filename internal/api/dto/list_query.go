package dto

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/hr-service/internal/domain"
)

// Reserved query parameters. Every other parameter is an equality filter.
const (
	QueryPage            = "page"
	QueryLimit           = "limit"
	QueryOffset          = "offset"
	QuerySort            = "sort"
	QueryFields          = "fields"
	QueryIncludeInactive = "includeInactive"
)

// ListQuery is the parsed form of a listing query string.
type ListQuery struct {
	Filter          map[string]any
	Sort            []SortField
	Fields          []string
	Limit           int
	Offset          int
	IncludeInactive bool
}

// SortField is one entry of the sort parameter; a leading '-' sorts descending.
type SortField struct {
	Field string
	Desc  bool
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// fieldTypes maps each entity's json field names to their Go type, used to coerce filter
// values from the query string.
var fieldTypes = map[domain.Kind]map[string]reflect.Type{
	domain.KindUser:            jsonFieldTypes(domain.User{}),
	domain.KindEmployeeProfile: jsonFieldTypes(domain.EmployeeProfile{}),
	domain.KindDepartment:      jsonFieldTypes(domain.Department{}),
	domain.KindPayroll:         jsonFieldTypes(domain.Payroll{}),
}

func jsonFieldTypes(v any) map[string]reflect.Type {
	t := reflect.TypeOf(v)
	out := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		out[name] = f.Type
	}
	return out
}

// ParseListQuery parses raw query parameters of a listing for kind.
func ParseListQuery(kind domain.Kind, params map[string]string) (ListQuery, error) {
	q := ListQuery{Filter: map[string]any{}}
	page := 0
	for key, raw := range params {
		switch key {
		case QueryLimit:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return q, domain.NewValidationError(key, "must be a non-negative integer")
			}
			q.Limit = n
		case QueryOffset:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return q, domain.NewValidationError(key, "must be a non-negative integer")
			}
			q.Offset = n
		case QueryPage:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return q, domain.NewValidationError(key, "must be a positive integer")
			}
			page = n
		case QuerySort:
			for _, part := range splitList(raw) {
				field := strings.TrimPrefix(part, "-")
				q.Sort = append(q.Sort, SortField{Field: field, Desc: strings.HasPrefix(part, "-")})
			}
		case QueryFields:
			q.Fields = splitList(raw)
		case QueryIncludeInactive:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return q, domain.NewValidationError(key, "must be a boolean")
			}
			q.IncludeInactive = b
		default:
			v, err := coerce(kind, key, raw)
			if err != nil {
				return q, err
			}
			q.Filter[key] = v
		}
	}
	if page > 0 && q.Limit > 0 {
		q.Offset = (page - 1) * q.Limit
	}
	return q, nil
}

func coerce(kind domain.Kind, field, raw string) (any, error) {
	t, ok := fieldTypes[kind][field]
	if !ok || t == timeType {
		return raw, nil
	}
	// Money is stored in decimal.Decimal's string form, so "1000.50" must match "1000.5".
	if t == decimalType {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, domain.NewValidationError(field, "must be a decimal amount")
		}
		return d.String(), nil
	}
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.NewValidationError(field, "must be a boolean")
		}
		return b, nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domain.NewValidationError(field, "must be an integer")
		}
		return n, nil
	}
	return raw, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
