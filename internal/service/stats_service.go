package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// Stats is the dashboard summary.
type Stats struct {
	ActiveEmployees   int               `json:"activeEmployees"`
	InactiveEmployees int               `json:"inactiveEmployees"`
	HRUsers           int               `json:"hrUsers"`
	AdminUsers        int               `json:"adminUsers"`
	NewUsersThisMonth int               `json:"newUsersThisMonth"`
	Payroll           PayrollTotals     `json:"payroll"`
	Departments       []DepartmentCount `json:"departments"`
}

// PayrollTotals sums the payrolls of one month.
type PayrollTotals struct {
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Count      int             `json:"count"`
	NetPay     decimal.Decimal `json:"netPay"`
	Bonus      decimal.Decimal `json:"bonus"`
	Deductions decimal.Decimal `json:"deductions"`
}

// DepartmentCount is a department with its employee count.
type DepartmentCount struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	EmployeeCount int    `json:"employeeCount"`
}

// StatsService computes the dashboard summary.
type StatsService struct {
	users       repository.DocumentStore
	profiles    repository.DocumentStore
	departments repository.DocumentStore
	payrolls    repository.DocumentStore
	now         func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(stores map[domain.Kind]repository.DocumentStore) *StatsService {
	return &StatsService{
		users:       stores[domain.KindUser],
		profiles:    stores[domain.KindEmployeeProfile],
		departments: stores[domain.KindDepartment],
		payrolls:    stores[domain.KindPayroll],
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Stats gathers the summary for the current month.
func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.ActiveEmployees, err = s.profiles.Count(ctx, nil, repository.ReadOptions{}); err != nil {
		return nil, err
	}
	if stats.InactiveEmployees, err = s.profiles.Count(ctx, repository.Filter{domain.FieldActive: false}, repository.ReadOptions{IncludeInactive: true}); err != nil {
		return nil, err
	}
	if stats.HRUsers, err = s.users.Count(ctx, repository.Filter{"role": string(domain.RoleHR)}, repository.ReadOptions{}); err != nil {
		return nil, err
	}
	if stats.AdminUsers, err = s.users.Count(ctx, repository.Filter{"role": string(domain.RoleAdmin)}, repository.ReadOptions{}); err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	users, err := findAll(ctx, s.users, nil, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		created, err := time.Parse(time.RFC3339Nano, u.String(domain.FieldCreatedAt))
		if err == nil && !created.Before(monthStart) {
			stats.NewUsersThisMonth++
		}
	}

	if stats.Payroll, err = s.payrollTotals(ctx, int(now.Month()), now.Year()); err != nil {
		return nil, err
	}

	departments, err := s.departments.Find(ctx, repository.Query{
		Sort:  []repository.SortField{{Field: domain.FieldEmployeeCount, Desc: true}},
		Limit: 1000,
	}, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}
	stats.Departments = make([]DepartmentCount, 0, len(departments))
	for _, d := range departments {
		dept, err := domain.FromDocument[domain.Department](d)
		if err != nil {
			return nil, err
		}
		stats.Departments = append(stats.Departments, DepartmentCount{
			ID:            dept.ID,
			Name:          dept.Name,
			EmployeeCount: dept.EmployeeCount,
		})
	}
	return &stats, nil
}

func (s *StatsService) payrollTotals(ctx context.Context, month, year int) (PayrollTotals, error) {
	totals := PayrollTotals{Month: month, Year: year}
	payrolls, err := findAll(ctx, s.payrolls, repository.Filter{
		domain.FieldMonth: month,
		domain.FieldYear:  year,
	}, repository.ReadOptions{})
	if err != nil {
		return totals, err
	}
	for _, doc := range payrolls {
		p, err := domain.FromDocument[domain.Payroll](doc)
		if err != nil {
			return totals, err
		}
		totals.Count++
		totals.NetPay = totals.NetPay.Add(p.NetPay)
		totals.Bonus = totals.Bonus.Add(p.Bonus)
		totals.Deductions = totals.Deductions.Add(p.Deductions)
	}
	return totals, nil
}
