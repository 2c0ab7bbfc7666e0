package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/audit"
	"github.com/spec-kit/hr-service/internal/cascade"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/repository"
)

// Warning codes attached to a Result when a secondary step failed after the mutation
// committed.
const (
	WarningAuditWriteFailed             = "AUDIT_WRITE_FAILED"
	WarningCascadeFailed                = "CASCADE_FAILED"
	WarningLinkedUserDeactivationFailed = "LINKED_USER_DEACTIVATION_FAILED"
	WarningCredentialsWriteFailed       = "CREDENTIALS_WRITE_FAILED"
)

// Warning reports a degraded secondary step. The primary mutation stands.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of a mutation.
type Result struct {
	Document domain.Document
	Warnings []Warning
}

func (r *Result) warn(code string, err error) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: err.Error()})
}

// ListOptions are caller supplied listing parameters.
type ListOptions struct {
	Filter          repository.Filter
	Sort            []repository.SortField
	Limit           int
	Offset          int
	Fields          []string
	IncludeInactive bool
}

// ListResult is one page of documents plus the total matching the filter.
type ListResult struct {
	Documents []domain.Document
	Total     int
}

// AuditRecorder appends audit records.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) (*domain.AuditRecord, error)
}

// CascadeTrigger reacts to employee profile writes.
type CascadeTrigger interface {
	OnEmployeeProfileWrite(ctx context.Context, write cascade.ProfileWrite) error
}

// ResourceDependencies bundles collaborators of the resource service.
type ResourceDependencies struct {
	Resources  map[domain.Kind]Resource
	Audit      AuditRecorder
	Cascade    CascadeTrigger
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// ResourceService performs audited list/get/create/update/delete for every entity kind.
type ResourceService struct {
	resources  map[domain.Kind]Resource
	audit      AuditRecorder
	cascade    CascadeTrigger
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewResourceService constructs the service.
func NewResourceService(deps ResourceDependencies) *ResourceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{
		resources:  deps.Resources,
		audit:      deps.Audit,
		cascade:    deps.Cascade,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger.With(zap.String("component", "resource_service")),
	}
}

// Store returns the document store of kind.
func (s *ResourceService) Store(kind domain.Kind) (repository.DocumentStore, error) {
	res, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	return res.Store, nil
}

// List returns one page of kind under the visibility scope unless the caller opts out.
func (s *ResourceService) List(ctx context.Context, actor domain.Actor, kind domain.Kind, opts ListOptions) (*ListResult, error) {
	res, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	readOpts, err := readOptionsFor(actor, opts.IncludeInactive)
	if err != nil {
		return nil, err
	}

	docs, err := res.Store.Find(ctx, repository.Query{
		Filter: opts.Filter,
		Sort:   opts.Sort,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}, readOpts)
	if err != nil {
		return nil, err
	}
	total, err := res.Store.Count(ctx, opts.Filter, readOpts)
	if err != nil {
		return nil, err
	}
	if len(opts.Fields) > 0 {
		for i, doc := range docs {
			docs[i] = project(doc, opts.Fields)
		}
	}
	return &ListResult{Documents: docs, Total: total}, nil
}

// Get returns one document of kind.
func (s *ResourceService) Get(ctx context.Context, actor domain.Actor, kind domain.Kind, id string, includeInactive bool) (domain.Document, error) {
	res, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	readOpts, err := readOptionsFor(actor, includeInactive)
	if err != nil {
		return nil, err
	}
	return res.Store.FindByID(ctx, id, readOpts)
}

// Create inserts a document stamped with the actor and records a create audit entry.
func (s *ResourceService) Create(ctx context.Context, actor domain.Actor, kind domain.Kind, payload domain.Document) (*Result, error) {
	res, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	if res.Guard != nil {
		if err := res.Guard(ctx, actor, OpCreate, "", payload); err != nil {
			return nil, err
		}
	}

	doc := stripBookkeeping(payload)
	doc[domain.FieldCreatedBy] = actor.ID
	if kind.SoftDeletable() {
		doc[domain.FieldActive] = true
	}
	if res.BeforeCreate != nil {
		if err := res.BeforeCreate(ctx, actor, doc); err != nil {
			return nil, err
		}
	}

	created, err := res.Store.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation(string(kind), string(domain.AuditActionCreate))

	ref := domain.EntityRef{Kind: kind, ID: created.ID()}
	result := &Result{Document: created}
	s.recordAudit(ctx, result, audit.Entry{
		Action:  domain.AuditActionCreate,
		Entity:  ref,
		ActorID: actor.ID,
		After:   created,
	})
	if kind == domain.KindEmployeeProfile {
		s.runCascade(ctx, result, actor, ref, domain.AuditActionCreate, cascade.ProfileWrite{
			CurrentDepartment: created.String(domain.FieldDepartment),
		})
	}
	s.publishEvent(ctx, events.New(events.EventEntityCreated, ref, actor.ID, nil))
	return result, nil
}

// Update merges payload into the document. The pre-image is read with the visibility scope
// bypassed; an audit entry is written only when a tracked field changed.
func (s *ResourceService) Update(ctx context.Context, actor domain.Actor, kind domain.Kind, id string, payload domain.Document) (*Result, error) {
	res, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	if res.Guard != nil {
		if err := res.Guard(ctx, actor, OpUpdate, id, payload); err != nil {
			return nil, err
		}
	}

	before, err := res.Store.FindByID(ctx, id, repository.ReadOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}

	patch := stripBookkeeping(payload)
	patch[domain.FieldUpdatedBy] = actor.ID
	if res.BeforeUpdate != nil {
		if err := res.BeforeUpdate(ctx, actor, before, patch); err != nil {
			return nil, err
		}
	}

	// a concurrent delete between the two reads surfaces here as NotFound
	after, err := res.Store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation(string(kind), string(domain.AuditActionUpdate))

	ref := domain.EntityRef{Kind: kind, ID: id}
	result := &Result{Document: after}
	changes := audit.Diff(before, after)
	if len(changes) > 0 {
		s.recordAudit(ctx, result, audit.Entry{
			Action:  domain.AuditActionUpdate,
			Entity:  ref,
			ActorID: actor.ID,
			Changes: changes,
		})
	}
	if kind == domain.KindEmployeeProfile && affectsHeadcount(changes) {
		s.runCascade(ctx, result, actor, ref, domain.AuditActionUpdate, cascade.ProfileWrite{
			PreviousDepartment: before.String(domain.FieldDepartment),
			CurrentDepartment:  after.String(domain.FieldDepartment),
		})
	}
	if len(changes) > 0 {
		s.publishEvent(ctx, events.New(events.EventEntityUpdated, ref, actor.ID, events.EntityUpdatedPayload{Changes: changes}))
	}
	return result, nil
}

// Delete soft-deletes User and EmployeeProfile documents and removes the others. Deleting
// a profile also deactivates its user.
func (s *ResourceService) Delete(ctx context.Context, actor domain.Actor, kind domain.Kind, id string) (*Result, error) {
	res, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	if res.Guard != nil {
		if err := res.Guard(ctx, actor, OpDelete, id, nil); err != nil {
			return nil, err
		}
	}

	before, err := res.Store.FindByID(ctx, id, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}

	var after domain.Document
	if kind.SoftDeletable() {
		after, err = res.Store.Update(ctx, id, domain.Document{
			domain.FieldActive:    false,
			domain.FieldUpdatedBy: actor.ID,
		})
	} else {
		after, err = res.Store.Delete(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation(string(kind), string(domain.AuditActionDelete))

	ref := domain.EntityRef{Kind: kind, ID: id}
	result := &Result{Document: after}
	s.recordAudit(ctx, result, audit.Entry{
		Action:  domain.AuditActionDelete,
		Entity:  ref,
		ActorID: actor.ID,
		Before:  before,
	})
	if kind == domain.KindEmployeeProfile {
		s.runCascade(ctx, result, actor, ref, domain.AuditActionDelete, cascade.ProfileWrite{
			PreviousDepartment: before.String(domain.FieldDepartment),
		})
		s.deactivateLinkedUser(ctx, result, actor, before.String(domain.FieldEmployeeID))
	}
	s.publishEvent(ctx, events.New(events.EventEntityDeleted, ref, actor.ID, nil))
	return result, nil
}

func (s *ResourceService) deactivateLinkedUser(ctx context.Context, result *Result, actor domain.Actor, userID string) {
	if userID == "" {
		return
	}
	linked, err := s.Update(ctx, actor, domain.KindUser, userID, domain.Document{domain.FieldActive: false})
	if err != nil {
		s.logger.Warn("deactivate linked user",
			zap.String("user_id", userID),
			zap.Error(err))
		result.warn(WarningLinkedUserDeactivationFailed, err)
		return
	}
	result.Warnings = append(result.Warnings, linked.Warnings...)
}

func (s *ResourceService) recordAudit(ctx context.Context, result *Result, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, entry); err != nil {
		s.metrics.RecordAuditFailure(string(entry.Entity.Kind), string(entry.Action))
		s.logger.Error("audit write failed after committed mutation",
			zap.String("entity", entry.Entity.String()),
			zap.String("action", string(entry.Action)),
			zap.String("actor", entry.ActorID),
			zap.Error(err))
		result.warn(WarningAuditWriteFailed, fmt.Errorf("audit record not written: %w", err))
		s.publishEvent(ctx, events.New(events.EventAuditWriteFailed, entry.Entity, entry.ActorID, events.FailurePayload{
			Action: entry.Action,
			Error:  err.Error(),
		}))
	}
}

func (s *ResourceService) runCascade(ctx context.Context, result *Result, actor domain.Actor, ref domain.EntityRef, action domain.AuditAction, write cascade.ProfileWrite) {
	if s.cascade == nil {
		return
	}
	if err := s.cascade.OnEmployeeProfileWrite(ctx, write); err != nil {
		result.warn(WarningCascadeFailed, fmt.Errorf("department count not refreshed: %w", err))
		s.publishEvent(ctx, events.New(events.EventCascadeFailed, ref, actor.ID, events.FailurePayload{
			Action: action,
			Error:  err.Error(),
		}))
	}
}

func (s *ResourceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (s *ResourceService) resource(kind domain.Kind) (Resource, error) {
	res, ok := s.resources[kind]
	if !ok {
		return Resource{}, domain.NewValidationError("kind", fmt.Sprintf("unsupported entity kind %q", kind))
	}
	return res, nil
}

// readOptionsFor lets only admin and hr callers bypass the visibility scope.
func readOptionsFor(actor domain.Actor, includeInactive bool) (repository.ReadOptions, error) {
	if includeInactive && actor.Role != domain.RoleAdmin && actor.Role != domain.RoleHR {
		return repository.ReadOptions{}, domain.Forbidden("only admin and hr may read inactive records")
	}
	return repository.ReadOptions{IncludeInactive: includeInactive}, nil
}

// affectsHeadcount reports whether a profile change can move a department's employee count.
func affectsHeadcount(changes domain.ChangeSet) bool {
	_, moved := changes[domain.FieldDepartment]
	_, toggled := changes[domain.FieldActive]
	return moved || toggled
}

// stripBookkeeping copies the payload without fields only the engine may set.
func stripBookkeeping(payload domain.Document) domain.Document {
	doc := payload.Without(domain.FieldID, domain.FieldCreatedBy, domain.FieldUpdatedBy, domain.FieldCreatedAt)
	if doc == nil {
		doc = domain.Document{}
	}
	return doc
}

func project(doc domain.Document, fields []string) domain.Document {
	out := domain.Document{domain.FieldID: doc[domain.FieldID]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
