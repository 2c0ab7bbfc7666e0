package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/audit"
	"github.com/spec-kit/hr-service/internal/cascade"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/repository"
)

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, audit.Entry) (*domain.AuditRecord, error) {
	return nil, errors.New("audit store unavailable")
}

type brokenUpdates struct {
	repository.DocumentStore
}

func (brokenUpdates) Update(context.Context, string, domain.Document) (domain.Document, error) {
	return nil, errors.New("write rejected")
}

type failingCascade struct{}

func (failingCascade) OnEmployeeProfileWrite(context.Context, cascade.ProfileWrite) error {
	return errors.New("department store unavailable")
}

func TestCreateStampsActorAndAudits(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.svc.Create(context.Background(), admin, domain.KindDepartment, domain.Document{
		"name":          "Sales",
		"description":   "Revenue",
		"employeeCount": 12,
		"createdBy":     "someone-else",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, admin.ID, res.Document["createdBy"])
	assert.Equal(t, float64(0), res.Document["employeeCount"])

	records := env.auditFor(t, domain.KindDepartment, res.Document.ID())
	require.Len(t, records, 1)
	assert.Equal(t, domain.AuditActionCreate, records[0].Action)
	assert.Equal(t, admin.ID, records[0].ActorID)
	assert.Equal(t, "Sales", records[0].After["name"])
	assert.Nil(t, records[0].Before)
}

func TestCreateRejectsInvalidDocumentWithoutAudit(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), admin, domain.KindDepartment, domain.Document{"name": "Sales"})
	require.ErrorIs(t, err, domain.ErrValidation)

	records, listErr := env.auditRepo.List(context.Background(), repository.AuditFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, records)
}

func TestCreateSoftDeletableKindStartsActive(t *testing.T) {
	env := newTestEnv(t)

	user := env.createUser(t, "ana", domain.RoleEmployee)

	assert.Equal(t, true, user["active"])
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createDepartment(t, "Sales")

	_, err := env.svc.Create(context.Background(), admin, domain.KindDepartment, domain.Document{
		"name": "Sales", "description": "again",
	})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"name"}, conflict.Fields)
}

func TestEmployeeMovesBetweenDepartments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sales := env.createDepartment(t, "Sales")
	engineering := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "ana", domain.RoleEmployee)
	profile := env.createProfile(t, user.ID(), sales.ID())
	require.Equal(t, float64(1), env.employeeCount(t, sales.ID()))
	require.Equal(t, float64(0), env.employeeCount(t, engineering.ID()))

	res, err := env.svc.Update(ctx, admin, domain.KindEmployeeProfile, profile.ID(), domain.Document{
		"department": engineering.ID(),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, engineering.ID(), res.Document["department"])
	assert.Equal(t, admin.ID, res.Document["updatedBy"])

	assert.Equal(t, float64(0), env.employeeCount(t, sales.ID()))
	assert.Equal(t, float64(1), env.employeeCount(t, engineering.ID()))

	records := env.auditFor(t, domain.KindEmployeeProfile, profile.ID())
	require.Len(t, records, 2)
	update := records[0]
	assert.Equal(t, domain.AuditActionUpdate, update.Action)
	assert.Equal(t, domain.ChangeSet{
		"department": {From: sales.ID(), To: engineering.ID()},
	}, update.Changes)
}

func TestNoOpUpdateWritesNoAudit(t *testing.T) {
	env := newTestEnv(t)
	dept := env.createDepartment(t, "Sales")

	res, err := env.svc.Update(context.Background(), admin, domain.KindDepartment, dept.ID(), domain.Document{
		"name": "Sales",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	records := env.auditFor(t, domain.KindDepartment, dept.ID())
	require.Len(t, records, 1)
	assert.Equal(t, domain.AuditActionCreate, records[0].Action)
}

func TestUpdateIgnoresEmployeeCountPatch(t *testing.T) {
	env := newTestEnv(t)
	dept := env.createDepartment(t, "Sales")

	_, err := env.svc.Update(context.Background(), admin, domain.KindDepartment, dept.ID(), domain.Document{
		"employeeCount": 40,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(0), env.employeeCount(t, dept.ID()))
	assert.Len(t, env.auditFor(t, domain.KindDepartment, dept.ID()), 1)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Update(context.Background(), admin, domain.KindDepartment, "missing", domain.Document{"name": "x"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateReachesInactiveDocuments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ana", domain.RoleEmployee)
	_, err := env.svc.Delete(ctx, admin, domain.KindUser, user.ID())
	require.NoError(t, err)

	res, err := env.svc.Update(ctx, admin, domain.KindUser, user.ID(), domain.Document{"active": true})
	require.NoError(t, err)
	assert.Equal(t, true, res.Document["active"])

	records := env.auditFor(t, domain.KindUser, user.ID())
	require.Len(t, records, 3)
	assert.Equal(t, domain.ChangeSet{"active": {From: false, To: true}}, records[0].Changes)
}

func TestAuditFailureKeepsMutation(t *testing.T) {
	env := newTestEnv(t, func(d *ResourceDependencies) { d.Audit = failingRecorder{} })
	var degraded []events.Event
	env.dispatcher.Subscribe(events.EventAuditWriteFailed, func(_ context.Context, e events.Event) error {
		degraded = append(degraded, e)
		return nil
	})

	res, err := env.svc.Create(context.Background(), admin, domain.KindDepartment, domain.Document{
		"name": "Sales", "description": "Revenue",
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarningAuditWriteFailed, res.Warnings[0].Code)

	_, err = env.stores[domain.KindDepartment].FindByID(context.Background(), res.Document.ID(), repository.ReadOptions{})
	assert.NoError(t, err)
	require.Len(t, degraded, 1)
	assert.Equal(t, res.Document.ID(), degraded[0].Entity.ID)
}

func TestCascadeFailureIsAWarning(t *testing.T) {
	env := newTestEnv(t, func(d *ResourceDependencies) { d.Cascade = failingCascade{} })
	dept := env.createDepartment(t, "Sales")
	user := env.createUser(t, "ana", domain.RoleEmployee)

	res, err := env.svc.Create(context.Background(), admin, domain.KindEmployeeProfile, profilePayload(user.ID(), dept.ID()))
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarningCascadeFailed, res.Warnings[0].Code)
	assert.Len(t, env.auditFor(t, domain.KindEmployeeProfile, res.Document.ID()), 1)
}

type countingCascade struct {
	writes []cascade.ProfileWrite
}

func (c *countingCascade) OnEmployeeProfileWrite(_ context.Context, write cascade.ProfileWrite) error {
	c.writes = append(c.writes, write)
	return nil
}

func TestProfileUpdateCascadesOnlyOnHeadcountChanges(t *testing.T) {
	counter := &countingCascade{}
	env := newTestEnv(t, func(d *ResourceDependencies) { d.Cascade = counter })
	ctx := context.Background()
	sales := env.createDepartment(t, "Sales")
	engineering := env.createDepartment(t, "Engineering")
	profile := env.createProfile(t, env.createUser(t, "ana", domain.RoleEmployee).ID(), sales.ID())
	require.Len(t, counter.writes, 1)

	_, err := env.svc.Update(ctx, admin, domain.KindEmployeeProfile, profile.ID(), domain.Document{"department": sales.ID()})
	require.NoError(t, err)
	_, err = env.svc.Update(ctx, admin, domain.KindEmployeeProfile, profile.ID(), domain.Document{"salary": "1500"})
	require.NoError(t, err)
	assert.Len(t, counter.writes, 1)

	_, err = env.svc.Update(ctx, admin, domain.KindEmployeeProfile, profile.ID(), domain.Document{"department": engineering.ID()})
	require.NoError(t, err)
	_, err = env.svc.Update(ctx, admin, domain.KindEmployeeProfile, profile.ID(), domain.Document{"active": false})
	require.NoError(t, err)

	require.Len(t, counter.writes, 3)
	assert.Equal(t, cascade.ProfileWrite{PreviousDepartment: sales.ID(), CurrentDepartment: engineering.ID()}, counter.writes[1])
	assert.Equal(t, cascade.ProfileWrite{PreviousDepartment: engineering.ID(), CurrentDepartment: engineering.ID()}, counter.writes[2])
}

func TestDeleteProfileSoftDeletesAndDeactivatesUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Sales")
	user := env.createUser(t, "ana", domain.RoleEmployee)
	profile := env.createProfile(t, user.ID(), dept.ID())

	res, err := env.svc.Delete(ctx, admin, domain.KindEmployeeProfile, profile.ID())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, false, res.Document["active"])

	_, err = env.svc.Get(ctx, admin, domain.KindEmployeeProfile, profile.ID(), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	stored, err := env.svc.Get(ctx, admin, domain.KindEmployeeProfile, profile.ID(), true)
	require.NoError(t, err)
	assert.Equal(t, false, stored["active"])

	_, err = env.svc.Get(ctx, admin, domain.KindUser, user.ID(), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, float64(0), env.employeeCount(t, dept.ID()))

	profileAudit := env.auditFor(t, domain.KindEmployeeProfile, profile.ID())
	require.Len(t, profileAudit, 2)
	assert.Equal(t, domain.AuditActionDelete, profileAudit[0].Action)
	assert.Equal(t, true, profileAudit[0].Before["active"])
	assert.Nil(t, profileAudit[0].After)

	userAudit := env.auditFor(t, domain.KindUser, user.ID())
	require.Len(t, userAudit, 2)
	assert.Equal(t, domain.ChangeSet{"active": {From: true, To: false}}, userAudit[0].Changes)

	_, err = env.svc.Delete(ctx, admin, domain.KindEmployeeProfile, profile.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProfileWarnsWhenUserStaysActive(t *testing.T) {
	env := newTestEnv(t, func(d *ResourceDependencies) {
		users := d.Resources[domain.KindUser]
		users.Store = brokenUpdates{users.Store}
		d.Resources[domain.KindUser] = users
	})
	ctx := context.Background()
	dept := env.createDepartment(t, "Sales")
	user := env.createUser(t, "ana", domain.RoleEmployee)
	profile := env.createProfile(t, user.ID(), dept.ID())

	res, err := env.svc.Delete(ctx, admin, domain.KindEmployeeProfile, profile.ID())
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarningLinkedUserDeactivationFailed, res.Warnings[0].Code)
	assert.Equal(t, false, res.Document["active"])
	stillActive, err := env.svc.Get(ctx, admin, domain.KindUser, user.ID(), false)
	require.NoError(t, err)
	assert.Equal(t, true, stillActive["active"])
}

func TestDeleteDepartmentIsHardDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Sales")

	_, err := env.svc.Delete(ctx, admin, domain.KindDepartment, dept.ID())
	require.NoError(t, err)

	_, err = env.svc.Get(ctx, admin, domain.KindDepartment, dept.ID(), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	records := env.auditFor(t, domain.KindDepartment, dept.ID())
	require.Len(t, records, 2)
	assert.Equal(t, domain.AuditActionDelete, records[0].Action)
	assert.Equal(t, "Sales", records[0].Before["name"])
}

func TestListScopesAndProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "ana", domain.RoleEmployee)
	env.createUser(t, "bo", domain.RoleHR)
	_, err := env.svc.Delete(ctx, admin, domain.KindUser, ana.ID())
	require.NoError(t, err)

	visible, err := env.svc.List(ctx, admin, domain.KindUser, ListOptions{Fields: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, 1, visible.Total)
	require.Len(t, visible.Documents, 1)
	assert.Equal(t, domain.Document{"id": visible.Documents[0].ID(), "name": "bo"}, visible.Documents[0])

	all, err := env.svc.List(ctx, admin, domain.KindUser, ListOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	_, err = env.svc.List(ctx, domain.Actor{ID: "e1", Role: domain.RoleEmployee}, domain.KindUser, ListOptions{IncludeInactive: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListFiltersOnSalaryWhateverItsJSONType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Sales")

	payload := profilePayload(env.createUser(t, "ana", domain.RoleEmployee).ID(), dept.ID())
	payload["salary"] = float64(1000)
	res, err := env.svc.Create(ctx, admin, domain.KindEmployeeProfile, payload)
	require.NoError(t, err)
	assert.Equal(t, "1000", res.Document["salary"])
	env.createProfile(t, env.createUser(t, "bo", domain.RoleEmployee).ID(), dept.ID())

	byNumber, err := env.svc.List(ctx, admin, domain.KindEmployeeProfile, ListOptions{Filter: repository.Filter{"salary": "1000"}})
	require.NoError(t, err)
	assert.Equal(t, 2, byNumber.Total)

	_, err = env.svc.Update(ctx, admin, domain.KindEmployeeProfile, res.Document.ID(), domain.Document{"salary": 1250.5})
	require.NoError(t, err)

	raised, err := env.svc.List(ctx, admin, domain.KindEmployeeProfile, ListOptions{Filter: repository.Filter{"salary": "1250.5"}})
	require.NoError(t, err)
	require.Equal(t, 1, raised.Total)
	assert.Equal(t, res.Document.ID(), raised.Documents[0].ID())

	_, err = env.svc.Update(ctx, admin, domain.KindEmployeeProfile, res.Document.ID(), domain.Document{"salary": "plenty"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUnknownKindIsValidationError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), admin, domain.Kind("Invoice"), domain.Document{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventsPublishedForMutations(t *testing.T) {
	env := newTestEnv(t)
	var seen []events.EventType
	record := func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	}
	env.dispatcher.Subscribe(events.EventEntityCreated, record)
	env.dispatcher.Subscribe(events.EventEntityUpdated, record)
	env.dispatcher.Subscribe(events.EventEntityDeleted, record)
	ctx := context.Background()

	dept := env.createDepartment(t, "Sales")
	_, err := env.svc.Update(ctx, admin, domain.KindDepartment, dept.ID(), domain.Document{"name": "Sales"})
	require.NoError(t, err)
	_, err = env.svc.Update(ctx, admin, domain.KindDepartment, dept.ID(), domain.Document{"name": "Revenue"})
	require.NoError(t, err)
	_, err = env.svc.Delete(ctx, admin, domain.KindDepartment, dept.ID())
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.EventEntityCreated,
		events.EventEntityUpdated,
		events.EventEntityDeleted,
	}, seen)
}
