package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

var (
	// ErrEmptyChanges is returned for an update entry without changes.
	ErrEmptyChanges = errors.New("audit: update without changes")
	// ErrInvalidEntry is returned when an entry breaks the per-action contract.
	ErrInvalidEntry = errors.New("audit: invalid entry")
)

// Entry is one mutation to be recorded.
type Entry struct {
	Action  domain.AuditAction
	Entity  domain.EntityRef
	ActorID string
	Before  domain.Document
	After   domain.Document
	Changes domain.ChangeSet
}

// Writer appends audit records. It never updates or removes existing ones.
type Writer struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter creates a Writer over the audit repository.
func NewWriter(repo repository.AuditRepository, logger *zap.Logger) *Writer {
	return &Writer{
		repo:   repo,
		logger: logger.With(zap.String("component", "audit_writer")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record validates the entry and appends exactly one record. The timestamp is taken here,
// after the mutation it describes has completed.
func (w *Writer) Record(ctx context.Context, entry Entry) (*domain.AuditRecord, error) {
	if err := checkEntry(entry); err != nil {
		return nil, err
	}

	record := &domain.AuditRecord{
		Action:    entry.Action,
		Entity:    entry.Entity,
		ActorID:   entry.ActorID,
		Timestamp: w.now(),
	}
	switch entry.Action {
	case domain.AuditActionCreate:
		record.Before = entry.Before
		record.After = entry.After
	case domain.AuditActionUpdate:
		record.Changes = entry.Changes
	case domain.AuditActionDelete:
		record.Before = entry.Before
	}

	if err := w.repo.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("append audit record: %w", err)
	}
	w.logger.Debug("audit record written",
		zap.String("action", string(record.Action)),
		zap.String("entity", record.Entity.String()),
		zap.String("actor", record.ActorID))
	return record, nil
}

func checkEntry(entry Entry) error {
	if !entry.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidEntry, entry.Action)
	}
	if !entry.Entity.Kind.Valid() || entry.Entity.ID == "" {
		return fmt.Errorf("%w: entity reference %s", ErrInvalidEntry, entry.Entity)
	}
	if entry.ActorID == "" {
		return fmt.Errorf("%w: missing actor", ErrInvalidEntry)
	}
	switch entry.Action {
	case domain.AuditActionUpdate:
		if len(entry.Changes) == 0 {
			return ErrEmptyChanges
		}
	case domain.AuditActionDelete:
		if entry.Before == nil {
			return fmt.Errorf("%w: delete requires the pre-delete snapshot", ErrInvalidEntry)
		}
		if entry.After != nil {
			return fmt.Errorf("%w: delete must not carry an after snapshot", ErrInvalidEntry)
		}
	}
	return nil
}
