package cascade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/repository"
)

// ProfileWrite describes the department side of an employee profile write.
// Create sets only CurrentDepartment, delete sets only PreviousDepartment.
type ProfileWrite struct {
	PreviousDepartment string
	CurrentDepartment  string
}

// departmentIDs returns the distinct non-empty department ids to recompute.
func (w ProfileWrite) departmentIDs() []string {
	ids := make([]string, 0, 2)
	if w.CurrentDepartment != "" {
		ids = append(ids, w.CurrentDepartment)
	}
	if w.PreviousDepartment != "" && w.PreviousDepartment != w.CurrentDepartment {
		ids = append(ids, w.PreviousDepartment)
	}
	return ids
}

// Counter maintains the denormalized employeeCount of departments. Each recomputation is a
// count followed by an unconditional overwrite, so it can be repeated at any time.
type Counter struct {
	departments repository.DocumentStore
	profiles    repository.DocumentStore
	queue       RepairQueue
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewCounter creates a Counter. queue and metrics may be nil.
func NewCounter(departments, profiles repository.DocumentStore, queue RepairQueue, metrics *observability.Metrics, logger *zap.Logger) *Counter {
	return &Counter{
		departments: departments,
		profiles:    profiles,
		queue:       queue,
		metrics:     metrics,
		logger:      logger.With(zap.String("component", "department_counter")),
	}
}

// OnEmployeeProfileWrite recomputes every department touched by the write. Failed
// departments are queued for repair and reported in the returned error.
func (c *Counter) OnEmployeeProfileWrite(ctx context.Context, write ProfileWrite) error {
	var (
		failed []string
		errs   []error
	)
	for _, id := range write.departmentIDs() {
		if err := c.Recompute(ctx, id); err != nil {
			failed = append(failed, id)
			errs = append(errs, fmt.Errorf("department %s: %w", id, err))
		}
	}
	if len(failed) == 0 {
		return nil
	}

	c.metrics.RecordCascadeFailure()
	c.logger.Warn("department count recompute failed",
		zap.Strings("department_ids", failed),
		zap.Error(errors.Join(errs...)))
	if c.queue != nil {
		// the request context may already be done
		if err := c.queue.Push(context.WithoutCancel(ctx), failed...); err != nil {
			c.logger.Error("queue department repair", zap.Strings("department_ids", failed), zap.Error(err))
		}
	}
	return errors.Join(errs...)
}

// Recompute sets the department's employeeCount to the number of its active profiles.
// A department that no longer exists is skipped.
func (c *Counter) Recompute(ctx context.Context, departmentID string) error {
	count, err := c.profiles.Count(ctx, repository.Filter{domain.FieldDepartment: departmentID}, repository.ReadOptions{})
	if err != nil {
		c.metrics.RecordRecompute("error")
		return fmt.Errorf("count profiles: %w", err)
	}

	_, err = c.departments.Update(ctx, departmentID, domain.Document{domain.FieldEmployeeCount: count})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.metrics.RecordRecompute("skipped")
		c.logger.Info("department missing, count not updated", zap.String("department_id", departmentID))
		return nil
	case err != nil:
		c.metrics.RecordRecompute("error")
		return fmt.Errorf("update employee count: %w", err)
	}
	c.metrics.RecordRecompute("ok")
	return nil
}

// RecomputeAll recomputes every department and returns how many were processed.
func (c *Counter) RecomputeAll(ctx context.Context) (int, error) {
	const page = 500
	var (
		processed int
		errs      []error
	)
	for offset := 0; ; offset += page {
		docs, err := c.departments.Find(ctx, repository.Query{
			Sort:   []repository.SortField{{Field: domain.FieldID}},
			Limit:  page,
			Offset: offset,
		}, repository.ReadOptions{})
		if err != nil {
			return processed, fmt.Errorf("list departments: %w", err)
		}
		for _, doc := range docs {
			if err := c.Recompute(ctx, doc.ID()); err != nil {
				errs = append(errs, fmt.Errorf("department %s: %w", doc.ID(), err))
				continue
			}
			processed++
		}
		if len(docs) < page {
			break
		}
	}
	return processed, errors.Join(errs...)
}

// Repair drains up to max queued departments and recomputes them. Departments that fail
// again are pushed back.
func (c *Counter) Repair(ctx context.Context, max int) (int, error) {
	if c.queue == nil {
		return 0, nil
	}
	ids, err := c.queue.Pop(ctx, max)
	if err != nil {
		return 0, fmt.Errorf("pop repair queue: %w", err)
	}

	var (
		repaired int
		failed   []string
		errs     []error
	)
	for _, id := range ids {
		if err := c.Recompute(ctx, id); err != nil {
			failed = append(failed, id)
			errs = append(errs, fmt.Errorf("department %s: %w", id, err))
			continue
		}
		repaired++
	}
	if len(failed) > 0 {
		if err := c.queue.Push(context.WithoutCancel(ctx), failed...); err != nil {
			errs = append(errs, fmt.Errorf("requeue: %w", err))
		}
	}
	return repaired, errors.Join(errs...)
}
