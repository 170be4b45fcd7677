package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"mixhouse_backend/internal/notify"
	"mixhouse_backend/internal/services/domain"
	"mixhouse_backend/internal/services/repository"
	"mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

type fakeRepo struct {
	services  map[uuid.UUID]repository.UserService
	customers map[uuid.UUID]repository.Customer
	staff     map[uuid.UUID]repository.Staff

	markPaidCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		services:  make(map[uuid.UUID]repository.UserService),
		customers: make(map[uuid.UUID]repository.Customer),
		staff:     make(map[uuid.UUID]repository.Staff),
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.UserService, error) {
	svc, ok := f.services[id]
	if !ok {
		return repository.UserService{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

func (f *fakeRepo) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (repository.UserService, error) {
	svc, err := f.GetByID(ctx, id)
	if err != nil || svc.CustomerID != customerID {
		return repository.UserService{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

func (f *fakeRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]repository.UserService, error) {
	var out []repository.UserService
	for _, svc := range f.services {
		if svc.CustomerID == customerID {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByAssignee(_ context.Context, staffID uuid.UUID) ([]repository.UserService, error) {
	var out []repository.UserService
	for _, svc := range f.services {
		if svc.Paid && svc.AssignedTo != nil && *svc.AssignedTo == staffID {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetCustomer(_ context.Context, id uuid.UUID) (repository.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return repository.Customer{}, apperr.NotFound("customer not found")
	}
	return c, nil
}

func (f *fakeRepo) GetStaff(_ context.Context, id uuid.UUID) (repository.Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return repository.Staff{}, apperr.NotFound("staff member not found")
	}
	return s, nil
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.UserService, error) {
	svc := repository.UserService{
		ID:                    uuid.New(),
		CustomerID:            params.CustomerID,
		ServiceName:           params.ServiceName,
		SubService:            params.SubService,
		ProjectName:           params.ProjectName,
		PricePaise:            params.PricePaise,
		DeliveryDays:          params.DeliveryDays,
		SetOfRevisions:        params.SetOfRevisions,
		RevisionsDeliveryDays: params.RevisionsDeliveryDays,
		StatusType:            domain.StagePendingUpload,
		Ledger:                domain.DefaultLedger(),
	}
	f.services[svc.ID] = svc
	return svc, nil
}

func (f *fakeRepo) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time) error {
	svc, ok := f.services[id]
	if !ok {
		return apperr.NotFound("service not found")
	}
	f.markPaidCalls++
	svc.Paid = true
	svc.PaidAt = &paidAt
	f.services[id] = svc
	return nil
}

func (f *fakeRepo) SetAddonFlags(_ context.Context, id uuid.UUID, update repository.AddonUpdate) error {
	svc, ok := f.services[id]
	if !ok {
		return apperr.NotFound("service not found")
	}
	svc.AddOnExportsMultitrack = svc.AddOnExportsMultitrack || update.Multitrack
	svc.AddOnExportsBusStems = svc.AddOnExportsBusStems || update.Stems
	if update.ExtraRevision && !svc.AddOnExtraRevision {
		svc.AddOnExtraRevision = true
		svc.SetOfRevisions++
	}
	f.services[id] = svc
	return nil
}

func (f *fakeRepo) SaveAddonFile(_ context.Context, id uuid.UUID, multitrackFile, stemsFile *string) error {
	svc, ok := f.services[id]
	if !ok {
		return apperr.NotFound("service not found")
	}
	if multitrackFile != nil {
		svc.MultitrackFile = multitrackFile
	}
	if stemsFile != nil {
		svc.StemsFile = stemsFile
	}
	f.services[id] = svc
	return nil
}

func (f *fakeRepo) Assign(_ context.Context, id, assignedTo, assignedBy uuid.UUID, assignedAt time.Time) error {
	svc, ok := f.services[id]
	if !ok {
		return apperr.NotFound("service not found")
	}
	svc.AssignedTo = &assignedTo
	svc.AssignedBy = &assignedBy
	svc.AssignedTime = &assignedAt
	f.services[id] = svc
	return nil
}

func (f *fakeRepo) UpdateProjectName(_ context.Context, customerID, id uuid.UUID, projectName string) error {
	svc, ok := f.services[id]
	if !ok || svc.CustomerID != customerID {
		return apperr.NotFound("service not found")
	}
	svc.ProjectName = &projectName
	f.services[id] = svc
	return nil
}

func (f *fakeRepo) DeleteUnpaid(_ context.Context, customerID, id uuid.UUID) error {
	svc, ok := f.services[id]
	if !ok || svc.CustomerID != customerID || svc.Paid {
		return apperr.NotFound("service not found")
	}
	delete(f.services, id)
	return nil
}

func (f *fakeRepo) cas(id uuid.UUID, expected, target domain.Stage, mutate func(*repository.UserService)) error {
	svc, ok := f.services[id]
	if !ok {
		return apperr.NotFound("service not found")
	}
	if svc.StatusType != expected {
		return apperr.Precondition("service is no longer in the expected stage")
	}
	mutate(&svc)
	svc.StatusType = target
	svc.Ledger = domain.LedgerFor(target)
	f.services[id] = svc
	return nil
}

func (f *fakeRepo) SaveUpload(_ context.Context, id uuid.UUID, expected, target domain.Stage, update repository.UploadUpdate) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.UploadedFiles = update.Files
		svc.ReferenceFiles = update.ReferenceFiles
		if update.ProjectName != nil {
			svc.ProjectName = update.ProjectName
		}
		svc.SubmissionDate = &update.SubmissionDate
		svc.IsReupload = update.IsReupload
	})
}

func (f *fakeRepo) ClearUploadsForReupload(_ context.Context, id uuid.UUID, expected, target domain.Stage, note string) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.UploadedFiles = nil
		svc.ReferenceFiles = nil
		svc.ReuploadNote = &note
		svc.RequestReuploadCounter++
	})
}

func (f *fakeRepo) ConfirmUpload(_ context.Context, id uuid.UUID, expected, target domain.Stage, estDelivery time.Time) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.EstDeliveryDate = &estDelivery
	})
}

func (f *fakeRepo) SaveQASubmission(_ context.Context, id uuid.UUID, expected, target domain.Stage, deliveredFiles []string) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.DeliveredFiles = deliveredFiles
	})
}

func (f *fakeRepo) RejectQASubmission(_ context.Context, id uuid.UUID, expected, target domain.Stage, notes string) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.DeliveredFiles = nil
		svc.RevisionNotesByMaster = &notes
		svc.NumberOfRevisionsByMaster++
	})
}

func (f *fakeRepo) ApproveQASubmission(_ context.Context, id uuid.UUID, expected, target domain.Stage, approvedAt time.Time) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.MasterProjectApprovalTime = &approvedAt
	})
}

func (f *fakeRepo) SaveRevisions(_ context.Context, id uuid.UUID, expected, target domain.Stage, revisions []repository.RevisionFile, estDelivery *time.Time) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.RevisionFiles = revisions
		if estDelivery != nil {
			svc.EstDeliveryDate = estDelivery
		}
	})
}

func (f *fakeRepo) CompleteService(_ context.Context, id uuid.UUID, expected, target domain.Stage, completedAt time.Time, completedFor string) error {
	return f.cas(id, expected, target, func(svc *repository.UserService) {
		svc.CompletionDate = &completedAt
		svc.CompletedFor = &completedFor
	})
}

var _ repository.Repository = (*fakeRepo)(nil)

type deleteCall struct {
	bucket string
	keys   []string
}

type fakeStore struct {
	calls    []deleteCall
	failWith error
}

func (f *fakeStore) DeleteObjects(_ context.Context, bucket string, fileKeys []string) ([]string, []error) {
	f.calls = append(f.calls, deleteCall{bucket: bucket, keys: fileKeys})
	if f.failWith != nil {
		return nil, []error{f.failWith}
	}
	return fileKeys, nil
}

type fakeQueue struct {
	jobs []notify.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job notify.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type fixture struct {
	svc        *Service
	repo       *fakeRepo
	store      *fakeStore
	queue      *fakeQueue
	customerID uuid.UUID
	engineerID uuid.UUID
	serviceID  uuid.UUID
}

func ptr[T any](v T) *T { return &v }

func newFixture(t *testing.T, stage domain.Stage, mutate func(*repository.UserService)) *fixture {
	t.Helper()

	repo := newFakeRepo()
	store := &fakeStore{}
	queue := &fakeQueue{}

	customerID := uuid.New()
	engineerID := uuid.New()
	repo.customers[customerID] = repository.Customer{ID: customerID, Name: "Asha Rao", Email: "asha@example.com"}
	repo.staff[engineerID] = repository.Staff{ID: engineerID, Name: "Dev Menon", Email: "dev@mixhouse.test", Role: "employee"}

	svc := repository.UserService{
		ID:                    uuid.New(),
		CustomerID:            customerID,
		ServiceName:           "Mixing",
		SubService:            ptr("Stereo Mix"),
		ProjectName:           ptr("Midnight Drive"),
		PricePaise:            499900,
		DeliveryDays:          7,
		SetOfRevisions:        2,
		RevisionsDeliveryDays: 3,
		StatusType:            stage,
		Ledger:                domain.LedgerFor(stage),
		Paid:                  true,
		AssignedTo:            &engineerID,
	}
	if mutate != nil {
		mutate(&svc)
	}
	repo.services[svc.ID] = svc

	engine := New(repo, store, queue, Config{
		BucketUploads:    "uploads",
		BucketDeliveries: "deliveries",
		MasterMail:       "master@mixhouse.test",
	}, logger.New("error"))

	return &fixture{
		svc:        engine,
		repo:       repo,
		store:      store,
		queue:      queue,
		customerID: customerID,
		engineerID: engineerID,
		serviceID:  svc.ID,
	}
}

func (fx *fixture) current(t *testing.T) repository.UserService {
	t.Helper()
	svc, ok := fx.repo.services[fx.serviceID]
	if !ok {
		t.Fatal("service disappeared")
	}
	return svc
}

func TestUploadFilesFirstUploadIsSilent(t *testing.T) {
	fx := newFixture(t, domain.StagePendingUpload, nil)

	resp, err := fx.svc.UploadFiles(context.Background(), fx.customerID, fx.serviceID, transport.UploadFilesRequest{
		Files: []string{"song.wav"},
	})
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if resp.StatusType != string(domain.StageUnderReview) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageUnderReview)
	}
	if resp.IsReupload {
		t.Error("first upload marked as reupload")
	}
	if len(fx.queue.jobs) != 0 {
		t.Errorf("first upload enqueued %d jobs, want none", len(fx.queue.jobs))
	}
}

func TestUploadFilesReuploadNotifiesEngineer(t *testing.T) {
	fx := newFixture(t, domain.StagePendingUpload, func(svc *repository.UserService) {
		svc.RequestReuploadCounter = 1
	})

	resp, err := fx.svc.UploadFiles(context.Background(), fx.customerID, fx.serviceID, transport.UploadFilesRequest{
		Files: []string{"song-v2.wav"},
	})
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if !resp.IsReupload {
		t.Error("reupload not flagged")
	}
	if len(fx.queue.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(fx.queue.jobs))
	}
	job := fx.queue.jobs[0]
	if job.Type != notify.TriggerServiceReupload {
		t.Errorf("trigger = %q, want %q", job.Type, notify.TriggerServiceReupload)
	}
	if job.Email != "dev@mixhouse.test" {
		t.Errorf("recipient = %q, want engineer", job.Email)
	}
}

func TestUploadFilesRejectsWrongStage(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, nil)

	_, err := fx.svc.UploadFiles(context.Background(), fx.customerID, fx.serviceID, transport.UploadFilesRequest{
		Files: []string{"song.wav"},
	})
	assertKind(t, err, apperr.KindPrecondition)
	if len(fx.queue.jobs) != 0 {
		t.Error("rejected transition enqueued a notification")
	}
}

func TestUploadFilesRejectsUnpaid(t *testing.T) {
	fx := newFixture(t, domain.StagePendingUpload, func(svc *repository.UserService) {
		svc.Paid = false
	})

	_, err := fx.svc.UploadFiles(context.Background(), fx.customerID, fx.serviceID, transport.UploadFilesRequest{
		Files: []string{"song.wav"},
	})
	assertKind(t, err, apperr.KindPrecondition)
}

func TestRequestReuploadDeletesBeforeTransition(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReview, func(svc *repository.UserService) {
		svc.UploadedFiles = []string{"song.wav", "stems.zip"}
	})

	resp, err := fx.svc.RequestReupload(context.Background(), fx.serviceID, transport.RequestReuploadRequest{
		Note: "the session files are missing",
	})
	if err != nil {
		t.Fatalf("RequestReupload: %v", err)
	}
	if resp.StatusType != string(domain.StagePendingUpload) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StagePendingUpload)
	}
	if resp.RequestReuploadCounter != 1 {
		t.Errorf("counter = %d, want 1", resp.RequestReuploadCounter)
	}
	if len(fx.store.calls) != 1 || fx.store.calls[0].bucket != "uploads" {
		t.Fatalf("storage calls = %+v, want one delete from uploads", fx.store.calls)
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceReuploadRequest {
		t.Fatalf("jobs = %+v, want one reupload request to customer", fx.queue.jobs)
	}
	if fx.queue.jobs[0].Email != "asha@example.com" {
		t.Errorf("recipient = %q, want customer", fx.queue.jobs[0].Email)
	}
}

func TestRequestReuploadPurgesReferenceFiles(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReview, func(svc *repository.UserService) {
		svc.UploadedFiles = []string{"song.wav"}
		svc.ReferenceFiles = []string{"ref.mp3"}
	})

	_, err := fx.svc.RequestReupload(context.Background(), fx.serviceID, transport.RequestReuploadRequest{
		Note: "wrong reference mix",
	})
	if err != nil {
		t.Fatalf("RequestReupload: %v", err)
	}
	if len(fx.store.calls) != 1 {
		t.Fatalf("storage calls = %+v, want one delete", fx.store.calls)
	}
	deleted := fx.store.calls[0].keys
	if len(deleted) != 2 || deleted[0] != "song.wav" || deleted[1] != "ref.mp3" {
		t.Errorf("deleted keys = %v, want both uploaded and reference files", deleted)
	}

	after := fx.current(t)
	if len(after.UploadedFiles) != 0 {
		t.Errorf("uploaded_files not cleared, still %v", after.UploadedFiles)
	}
	if len(after.ReferenceFiles) != 0 {
		t.Errorf("reference_files not cleared, still %v", after.ReferenceFiles)
	}
}

func TestRequestReuploadAbortsOnStorageFailure(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReview, func(svc *repository.UserService) {
		svc.UploadedFiles = []string{"song.wav"}
	})
	fx.store.failWith = errors.New("connection reset")

	_, err := fx.svc.RequestReupload(context.Background(), fx.serviceID, transport.RequestReuploadRequest{
		Note: "please reupload",
	})
	assertKind(t, err, apperr.KindInternal)

	after := fx.current(t)
	if after.StatusType != domain.StageUnderReview {
		t.Errorf("stage moved to %q despite storage failure", after.StatusType)
	}
	if after.RequestReuploadCounter != 0 {
		t.Error("counter bumped despite storage failure")
	}
	if len(fx.queue.jobs) != 0 {
		t.Error("notification enqueued despite storage failure")
	}
}

func TestConfirmUploadSetsEstimateAndNotifiesEngineer(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReview, nil)

	resp, err := fx.svc.ConfirmUpload(context.Background(), fx.serviceID)
	if err != nil {
		t.Fatalf("ConfirmUpload: %v", err)
	}
	if resp.StatusType != string(domain.StageWorkInProgress) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageWorkInProgress)
	}
	if resp.EstDeliveryDate == nil {
		t.Fatal("no delivery estimate set")
	}
	wantEst := time.Now().UTC().AddDate(0, 0, 7)
	if got := *resp.EstDeliveryDate; got.Before(wantEst.Add(-time.Minute)) || got.After(wantEst.Add(time.Minute)) {
		t.Errorf("estimate = %v, want about %v", got, wantEst)
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceReview {
		t.Fatalf("jobs = %+v, want one review notification", fx.queue.jobs)
	}
}

func TestAssignNotifiesEngineerWithoutMovingStage(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, func(svc *repository.UserService) {
		svc.AssignedTo = nil
	})
	managerID := uuid.New()

	resp, err := fx.svc.Assign(context.Background(), fx.serviceID, managerID, transport.AssignRequest{
		AssignedTo: fx.engineerID,
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.StatusType != string(domain.StageWorkInProgress) {
		t.Errorf("assignment moved the stage to %q", resp.StatusType)
	}
	if resp.AssignedTo == nil || *resp.AssignedTo != fx.engineerID {
		t.Error("engineer not recorded")
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceAssign {
		t.Fatalf("jobs = %+v, want one assignment notification", fx.queue.jobs)
	}
}

func TestSubmitForQANotifiesMaster(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, nil)

	resp, err := fx.svc.SubmitForQA(context.Background(), fx.serviceID, transport.SubmitForQARequest{
		DeliveredFiles: []string{"final-mix.wav"},
	})
	if err != nil {
		t.Fatalf("SubmitForQA: %v", err)
	}
	if resp.StatusType != string(domain.StageUnderReviewInternal) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageUnderReviewInternal)
	}
	if len(fx.queue.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(fx.queue.jobs))
	}
	job := fx.queue.jobs[0]
	if job.Type != notify.TriggerServiceSubmitted {
		t.Errorf("trigger = %q, want %q", job.Type, notify.TriggerServiceSubmitted)
	}
	if job.Email != "master@mixhouse.test" {
		t.Errorf("recipient = %q, want master mailbox", job.Email)
	}
}

func TestSubmitForQAAfterRejectionIsResubmission(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, func(svc *repository.UserService) {
		svc.NumberOfRevisionsByMaster = 1
	})

	_, err := fx.svc.SubmitForQA(context.Background(), fx.serviceID, transport.SubmitForQARequest{
		DeliveredFiles: []string{"final-mix-v2.wav"},
	})
	if err != nil {
		t.Fatalf("SubmitForQA: %v", err)
	}
	if fx.queue.jobs[0].Type != notify.TriggerServiceResubmission {
		t.Errorf("trigger = %q, want %q", fx.queue.jobs[0].Type, notify.TriggerServiceResubmission)
	}
}

func TestRejectQADeletesDeliveryAndNotifiesEngineer(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReviewInternal, func(svc *repository.UserService) {
		svc.DeliveredFiles = []string{"final-mix.wav"}
	})

	resp, err := fx.svc.RejectQA(context.Background(), fx.serviceID, transport.RejectQARequest{
		Notes: "vocals are buried in the chorus",
	})
	if err != nil {
		t.Fatalf("RejectQA: %v", err)
	}
	if resp.StatusType != string(domain.StageWorkInProgress) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageWorkInProgress)
	}
	if resp.NumberOfRevisionsByMaster != 1 {
		t.Errorf("master revision counter = %d, want 1", resp.NumberOfRevisionsByMaster)
	}
	if len(resp.DeliveredFiles) != 0 {
		t.Error("delivered files not cleared")
	}
	if len(fx.store.calls) != 1 || fx.store.calls[0].bucket != "deliveries" {
		t.Fatalf("storage calls = %+v, want one delete from deliveries", fx.store.calls)
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceRejected {
		t.Fatalf("jobs = %+v, want one rejection notification", fx.queue.jobs)
	}
}

func TestRejectQAAbortsOnStorageFailure(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReviewInternal, func(svc *repository.UserService) {
		svc.DeliveredFiles = []string{"final-mix.wav"}
	})
	fx.store.failWith = errors.New("bucket unavailable")

	_, err := fx.svc.RejectQA(context.Background(), fx.serviceID, transport.RejectQARequest{Notes: "redo"})
	assertKind(t, err, apperr.KindInternal)

	after := fx.current(t)
	if after.StatusType != domain.StageUnderReviewInternal {
		t.Errorf("stage moved to %q despite storage failure", after.StatusType)
	}
	if len(after.DeliveredFiles) != 1 {
		t.Error("delivered files cleared despite storage failure")
	}
}

func TestApproveQADeliversToCustomer(t *testing.T) {
	fx := newFixture(t, domain.StageUnderReviewInternal, nil)

	resp, err := fx.svc.ApproveQA(context.Background(), fx.serviceID)
	if err != nil {
		t.Fatalf("ApproveQA: %v", err)
	}
	if resp.StatusType != string(domain.StageDelivered) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageDelivered)
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceDelivery {
		t.Fatalf("jobs = %+v, want one delivery notification", fx.queue.jobs)
	}
	if fx.queue.jobs[0].Email != "asha@example.com" {
		t.Errorf("recipient = %q, want customer", fx.queue.jobs[0].Email)
	}
}

func TestRequestRevisionHappyPath(t *testing.T) {
	fx := newFixture(t, domain.StageDelivered, nil)

	resp, err := fx.svc.RequestRevision(context.Background(), fx.customerID, fx.serviceID, transport.RequestRevisionRequest{
		RevisionNumber: 1,
		Description:    "raise the bass in the intro",
	})
	if err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}
	if resp.StatusType != string(domain.StageRevisionRequest) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageRevisionRequest)
	}
	if len(resp.RevisionFiles) != 1 || resp.RevisionFiles[0].Revision != 1 {
		t.Fatalf("revision history = %+v, want one entry numbered 1", resp.RevisionFiles)
	}
	if resp.EstDeliveryDate == nil {
		t.Error("delivery estimate not extended")
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceRevisionRequest {
		t.Fatalf("jobs = %+v, want one revision request notification", fx.queue.jobs)
	}
}

func TestRequestRevisionGuards(t *testing.T) {
	tests := []struct {
		name     string
		stage    domain.Stage
		existing int
		quota    int
		number   int
	}{
		{"before delivery", domain.StageWorkInProgress, 0, 2, 1},
		{"out of sequence", domain.StageDelivered, 0, 2, 2},
		{"over quota", domain.StageRevisionDelivered, 2, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.stage, func(svc *repository.UserService) {
				svc.SetOfRevisions = tt.quota
				for i := 1; i <= tt.existing; i++ {
					svc.RevisionFiles = append(svc.RevisionFiles, repository.RevisionFile{
						Revision: i, File: "rev.wav",
					})
				}
			})

			_, err := fx.svc.RequestRevision(context.Background(), fx.customerID, fx.serviceID, transport.RequestRevisionRequest{
				RevisionNumber: tt.number,
				Description:    "tweak",
			})
			assertKind(t, err, apperr.KindPrecondition)
			if len(fx.queue.jobs) != 0 {
				t.Error("refused revision enqueued a notification")
			}
			if fx.current(t).StatusType != tt.stage {
				t.Error("refused revision moved the stage")
			}
		})
	}
}

func TestExtraRevisionAddonExtendsQuota(t *testing.T) {
	fx := newFixture(t, domain.StageRevisionDelivered, func(svc *repository.UserService) {
		svc.SetOfRevisions = 1
		svc.RevisionFiles = []repository.RevisionFile{{Revision: 1, File: "rev1.wav"}}
	})

	// Quota of one is spent; a second request must be refused.
	_, err := fx.svc.RequestRevision(context.Background(), fx.customerID, fx.serviceID, transport.RequestRevisionRequest{
		RevisionNumber: 2, Description: "more reverb",
	})
	assertKind(t, err, apperr.KindPrecondition)

	if err := fx.svc.SettleAddon(context.Background(), fx.serviceID, AddonExtraRevision, 99900); err != nil {
		t.Fatalf("SettleAddon: %v", err)
	}

	resp, err := fx.svc.RequestRevision(context.Background(), fx.customerID, fx.serviceID, transport.RequestRevisionRequest{
		RevisionNumber: 2, Description: "more reverb",
	})
	if err != nil {
		t.Fatalf("RequestRevision after addon: %v", err)
	}
	if resp.SetOfRevisions != 2 {
		t.Errorf("quota = %d, want 2", resp.SetOfRevisions)
	}
}

func TestDeliverRevision(t *testing.T) {
	fx := newFixture(t, domain.StageRevisionRequest, func(svc *repository.UserService) {
		svc.RevisionFiles = []repository.RevisionFile{{Revision: 1, Description: "raise the bass"}}
	})

	resp, err := fx.svc.DeliverRevision(context.Background(), fx.serviceID, transport.DeliverRevisionRequest{
		RevisionNumber: 1,
		File:           "mix-rev1.wav",
	})
	if err != nil {
		t.Fatalf("DeliverRevision: %v", err)
	}
	if resp.StatusType != string(domain.StageRevisionDelivered) {
		t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageRevisionDelivered)
	}
	if resp.RevisionFiles[0].File != "mix-rev1.wav" {
		t.Error("revision file not recorded")
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceRevisionDelivery {
		t.Fatalf("jobs = %+v, want one revision delivery notification", fx.queue.jobs)
	}
}

func TestDeliverRevisionTwiceConflicts(t *testing.T) {
	fx := newFixture(t, domain.StageRevisionRequest, func(svc *repository.UserService) {
		svc.RevisionFiles = []repository.RevisionFile{{Revision: 1, File: "mix-rev1.wav"}}
	})

	_, err := fx.svc.DeliverRevision(context.Background(), fx.serviceID, transport.DeliverRevisionRequest{
		RevisionNumber: 1,
		File:           "mix-rev1-again.wav",
	})
	assertKind(t, err, apperr.KindConflict)
}

func TestCompleteFromAnyStage(t *testing.T) {
	for _, stage := range []domain.Stage{domain.StageDelivered, domain.StageWorkInProgress, domain.StageRevisionDelivered} {
		t.Run(string(stage), func(t *testing.T) {
			fx := newFixture(t, stage, nil)

			resp, err := fx.svc.Complete(context.Background(), fx.serviceID, "customer")
			if err != nil {
				t.Fatalf("Complete from %s: %v", stage, err)
			}
			if resp.StatusType != string(domain.StageCompleted) {
				t.Errorf("stage = %q, want %q", resp.StatusType, domain.StageCompleted)
			}
			if resp.CompletedFor == nil || *resp.CompletedFor != "customer" {
				t.Error("completedFor not recorded")
			}
			if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceComplete {
				t.Fatalf("jobs = %+v, want one completion notification", fx.queue.jobs)
			}
		})
	}
}

func TestCompleteTwiceConflicts(t *testing.T) {
	fx := newFixture(t, domain.StageCompleted, nil)

	_, err := fx.svc.Complete(context.Background(), fx.serviceID, "admin")
	assertKind(t, err, apperr.KindConflict)
}

func TestSettlePurchaseIsIdempotent(t *testing.T) {
	fx := newFixture(t, domain.StagePendingUpload, func(svc *repository.UserService) {
		svc.Paid = false
	})

	if err := fx.svc.SettlePurchase(context.Background(), fx.serviceID, time.Now()); err != nil {
		t.Fatalf("SettlePurchase: %v", err)
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServicePurchase {
		t.Fatalf("jobs = %+v, want one purchase notification", fx.queue.jobs)
	}
	if fx.queue.jobs[0].AmountPaise != 499900 {
		t.Errorf("amount = %d, want 499900", fx.queue.jobs[0].AmountPaise)
	}

	// A duplicate callback settles nothing and sends nothing.
	if err := fx.svc.SettlePurchase(context.Background(), fx.serviceID, time.Now()); err != nil {
		t.Fatalf("second SettlePurchase: %v", err)
	}
	if fx.repo.markPaidCalls != 1 {
		t.Errorf("markPaid called %d times, want 1", fx.repo.markPaidCalls)
	}
	if len(fx.queue.jobs) != 1 {
		t.Errorf("duplicate settlement enqueued %d extra jobs", len(fx.queue.jobs)-1)
	}
}

func TestSettleAddonNotifiesEngineerAndCustomer(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, nil)

	if err := fx.svc.SettleAddon(context.Background(), fx.serviceID, AddonMultitrack, 149900); err != nil {
		t.Fatalf("SettleAddon: %v", err)
	}
	if len(fx.queue.jobs) != 2 {
		t.Fatalf("enqueued %d jobs, want 2", len(fx.queue.jobs))
	}
	if fx.queue.jobs[0].Type != notify.TriggerServiceAddonRequest || fx.queue.jobs[0].Email != "dev@mixhouse.test" {
		t.Errorf("first job = %+v, want addon request to engineer", fx.queue.jobs[0])
	}
	if fx.queue.jobs[1].Type != notify.TriggerServiceAddonPurchase || fx.queue.jobs[1].Email != "asha@example.com" {
		t.Errorf("second job = %+v, want addon receipt to customer", fx.queue.jobs[1])
	}
	if !fx.current(t).AddOnExportsMultitrack {
		t.Error("multitrack flag not set")
	}
}

func TestSettleBothExportsEnablesBothFlags(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, nil)

	if err := fx.svc.SettleAddon(context.Background(), fx.serviceID, AddonBothExports, 249900); err != nil {
		t.Fatalf("SettleAddon: %v", err)
	}

	after := fx.current(t)
	if !after.AddOnExportsMultitrack {
		t.Error("multitrack flag not set")
	}
	if !after.AddOnExportsBusStems {
		t.Error("bus stems flag not set")
	}
	if after.SetOfRevisions != 2 {
		t.Errorf("revision quota = %d, want unchanged 2", after.SetOfRevisions)
	}
	if len(fx.queue.jobs) != 2 {
		t.Fatalf("enqueued %d jobs, want 2", len(fx.queue.jobs))
	}
	want := "Exports: Multitrack, Exports: Bus Stems"
	if fx.queue.jobs[0].Notes != want || fx.queue.jobs[1].Notes != want {
		t.Errorf("notes = %q / %q, want %q", fx.queue.jobs[0].Notes, fx.queue.jobs[1].Notes, want)
	}
}

func TestDeliverAddonRequiresPurchase(t *testing.T) {
	fx := newFixture(t, domain.StageDelivered, nil)

	_, err := fx.svc.DeliverAddon(context.Background(), fx.serviceID, AddonBusStems, "stems.zip")
	assertKind(t, err, apperr.KindPrecondition)
}

func TestDeliverAddonStoresFile(t *testing.T) {
	fx := newFixture(t, domain.StageDelivered, func(svc *repository.UserService) {
		svc.AddOnExportsBusStems = true
	})

	resp, err := fx.svc.DeliverAddon(context.Background(), fx.serviceID, AddonBusStems, "stems.zip")
	if err != nil {
		t.Fatalf("DeliverAddon: %v", err)
	}
	if resp.StemsFile == nil || *resp.StemsFile != "stems.zip" {
		t.Error("stems file not recorded")
	}
	if len(fx.queue.jobs) != 1 || fx.queue.jobs[0].Type != notify.TriggerServiceAddonDelivery {
		t.Fatalf("jobs = %+v, want one addon delivery notification", fx.queue.jobs)
	}
}

func TestRemoveUnpaidService(t *testing.T) {
	fx := newFixture(t, domain.StagePendingUpload, func(svc *repository.UserService) {
		svc.Paid = false
	})

	if err := fx.svc.RemoveUnpaidService(context.Background(), fx.customerID, fx.serviceID); err != nil {
		t.Fatalf("RemoveUnpaidService: %v", err)
	}
	if _, ok := fx.repo.services[fx.serviceID]; ok {
		t.Error("unpaid service still present")
	}
}

func TestRemoveUnpaidServiceRefusesPaid(t *testing.T) {
	fx := newFixture(t, domain.StageWorkInProgress, nil)

	err := fx.svc.RemoveUnpaidService(context.Background(), fx.customerID, fx.serviceID)
	assertKind(t, err, apperr.KindConflict)
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an apperr", err)
	}
	if appErr.Kind != kind {
		t.Fatalf("error kind = %v, want %v (message %q)", appErr.Kind, kind, appErr.Message)
	}
}
