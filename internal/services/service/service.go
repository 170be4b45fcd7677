package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mixhouse_backend/internal/notify"
	"mixhouse_backend/internal/services/domain"
	"mixhouse_backend/internal/services/repository"
	"mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

// ObjectStore removes uploaded objects from object storage. Deletions run
// before the database transition they enable; a failed deletion aborts the
// transition so the database never claims files are gone while they are not.
type ObjectStore interface {
	DeleteObjects(ctx context.Context, bucket string, fileKeys []string) (deleted []string, errs []error)
}

// Enqueuer pushes notification jobs onto the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job notify.Job) error
}

// Addon is a purchasable extension of a delivered service.
type Addon string

const (
	AddonExtraRevision Addon = "extra-revision"
	AddonBusStems      Addon = "bus-stems"
	AddonMultitrack    Addon = "multitrack"
	// AddonBothExports bundles the multitrack and bus-stems exports into
	// one purchase.
	AddonBothExports Addon = "both"
)

// KnownAddon reports whether the value names a sellable add-on.
func KnownAddon(a Addon) bool {
	switch a {
	case AddonExtraRevision, AddonBusStems, AddonMultitrack, AddonBothExports:
		return true
	}
	return false
}

// DisplayName is the add-on label used in notifications.
func (a Addon) DisplayName() string {
	switch a {
	case AddonExtraRevision:
		return "Extra Revision"
	case AddonBusStems:
		return "Exports: Bus Stems"
	case AddonMultitrack:
		return "Exports: Multitrack"
	case AddonBothExports:
		return "Exports: Multitrack, Exports: Bus Stems"
	}
	return string(a)
}

func (a Addon) update() repository.AddonUpdate {
	return repository.AddonUpdate{
		ExtraRevision: a == AddonExtraRevision,
		Stems:         a == AddonBusStems || a == AddonBothExports,
		Multitrack:    a == AddonMultitrack || a == AddonBothExports,
	}
}

// Config carries the storage buckets and the master mailbox address.
type Config struct {
	BucketUploads    string
	BucketDeliveries string
	MasterMail       string
}

// Service is the lifecycle engine for purchased services. It is the only
// writer of the status ledger: every stage movement goes through one of its
// transition methods, which validate guards, perform side effects in their
// required order, apply the guarded database update, and enqueue the
// notifications the transition owes.
type Service struct {
	repo  repository.Repository
	store ObjectStore
	queue Enqueuer
	cfg   Config
	log   *logger.Logger
}

// New creates the lifecycle engine.
func New(repo repository.Repository, store ObjectStore, queue Enqueuer, cfg Config, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, queue: queue, cfg: cfg, log: log}
}

// GetForCustomer returns one of the customer's own services.
func (s *Service) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(svc), nil
}

// GetByID returns any service (staff view).
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(svc), nil
}

// ListForCustomer returns all services owned by a customer.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) (transport.ServiceListResponse, error) {
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}
	return toListResponse(items), nil
}

// ListAssigned returns all paid services assigned to a staff member.
func (s *Service) ListAssigned(ctx context.Context, staffID uuid.UUID) (transport.ServiceListResponse, error) {
	items, err := s.repo.ListByAssignee(ctx, staffID)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}
	return toListResponse(items), nil
}

// UploadFiles stores the customer's project files and moves the service to
// review. The first upload is silent; a reupload after an admin request
// notifies the assigned engineer that the files are back.
func (s *Service) UploadFiles(ctx context.Context, customerID, id uuid.UUID, req transport.UploadFilesRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if !svc.Paid {
		return transport.ServiceResponse{}, apperr.Precondition("service is not paid yet")
	}
	if svc.StatusType != domain.StagePendingUpload {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("files can only be uploaded while the service is pending upload, current stage is %s", svc.StatusType))
	}

	isReupload := svc.RequestReuploadCounter > 0
	update := repository.UploadUpdate{
		Files:          req.Files,
		ReferenceFiles: req.ReferenceFiles,
		ProjectName:    req.ProjectName,
		SubmissionDate: time.Now().UTC(),
		IsReupload:     isReupload,
	}
	if err := s.repo.SaveUpload(ctx, id, domain.StagePendingUpload, domain.StageUnderReview, update); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(domain.StagePendingUpload), string(domain.StageUnderReview))

	if isReupload {
		if engineer, ok := s.assignedEngineer(ctx, svc); ok {
			if err := s.queue.Enqueue(ctx, notify.Job{
				Type:     notify.TriggerServiceReupload,
				Email:    engineer.Email,
				Engineer: engineer.Name,
				Service:  svc.DisplayName(),
				Project:  svc.ProjectTitle(),
			}); err != nil {
				return transport.ServiceResponse{}, err
			}
		}
	}

	return s.GetForCustomer(ctx, customerID, id)
}

// RequestReupload rejects the customer's upload. The uploaded and reference
// objects are removed from storage first; if that fails the service stays
// under review and the customer keeps their files.
func (s *Service) RequestReupload(ctx context.Context, id uuid.UUID, req transport.RequestReuploadRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if svc.StatusType != domain.StageUnderReview && svc.StatusType != domain.StageUnderReviewInternal {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("a reupload can only be requested while the upload is under review, current stage is %s", svc.StatusType))
	}

	purge := append(append([]string{}, svc.UploadedFiles...), svc.ReferenceFiles...)
	if err := s.deleteObjects(ctx, s.cfg.BucketUploads, purge); err != nil {
		return transport.ServiceResponse{}, err
	}

	if err := s.repo.ClearUploadsForReupload(ctx, id, svc.StatusType, domain.StagePendingUpload, req.Note); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(svc.StatusType), string(domain.StagePendingUpload))

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:     notify.TriggerServiceReuploadRequest,
		Email:    customer.Email,
		Customer: customer.Name,
		Service:  svc.DisplayName(),
		Notes:    req.Note,
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// ConfirmUpload accepts the customer's files, sets the delivery estimate from
// the purchased turnaround, and tells the engineer to start.
func (s *Service) ConfirmUpload(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if svc.StatusType != domain.StageUnderReview {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("only an upload under review can be confirmed, current stage is %s", svc.StatusType))
	}

	estDelivery := time.Now().UTC().AddDate(0, 0, svc.DeliveryDays)
	if err := s.repo.ConfirmUpload(ctx, id, domain.StageUnderReview, domain.StageWorkInProgress, estDelivery); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(domain.StageUnderReview), string(domain.StageWorkInProgress))

	if engineer, ok := s.assignedEngineer(ctx, svc); ok {
		if err := s.queue.Enqueue(ctx, notify.Job{
			Type:     notify.TriggerServiceReview,
			Email:    engineer.Email,
			Engineer: engineer.Name,
			Service:  svc.DisplayName(),
			Project:  svc.ProjectTitle(),
		}); err != nil {
			return transport.ServiceResponse{}, err
		}
	}

	return s.GetByID(ctx, id)
}

// Assign puts an engineer on the service. The stage cursor never moves.
func (s *Service) Assign(ctx context.Context, id, assignedBy uuid.UUID, req transport.AssignRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	engineer, err := s.repo.GetStaff(ctx, req.AssignedTo)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	if err := s.repo.Assign(ctx, id, engineer.ID, assignedBy, time.Now().UTC()); err != nil {
		return transport.ServiceResponse{}, err
	}

	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:     notify.TriggerServiceAssign,
		Email:    engineer.Email,
		Engineer: engineer.Name,
		Service:  svc.DisplayName(),
		Project:  svc.ProjectTitle(),
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// SubmitForQA routes the engineer's finished files through internal review.
// A resubmission after a rejection gets its own notification so the master
// can tell a rework apart from a first pass.
func (s *Service) SubmitForQA(ctx context.Context, id uuid.UUID, req transport.SubmitForQARequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if svc.StatusType != domain.StageWorkInProgress {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("only work in progress can be submitted for review, current stage is %s", svc.StatusType))
	}

	if err := s.repo.SaveQASubmission(ctx, id, domain.StageWorkInProgress, domain.StageUnderReviewInternal, req.DeliveredFiles); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(domain.StageWorkInProgress), string(domain.StageUnderReviewInternal))

	trigger := notify.TriggerServiceSubmitted
	if svc.NumberOfRevisionsByMaster > 0 {
		trigger = notify.TriggerServiceResubmission
	}
	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:    trigger,
		Email:   s.cfg.MasterMail,
		Service: svc.DisplayName(),
		Project: svc.ProjectTitle(),
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// RejectQA sends the delivery back to the engineer with the master's notes.
// The rejected objects are removed from storage before the transition.
func (s *Service) RejectQA(ctx context.Context, id uuid.UUID, req transport.RejectQARequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if svc.StatusType != domain.StageUnderReviewInternal {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("only a submission under internal review can be rejected, current stage is %s", svc.StatusType))
	}

	if err := s.deleteObjects(ctx, s.cfg.BucketDeliveries, svc.DeliveredFiles); err != nil {
		return transport.ServiceResponse{}, err
	}

	if err := s.repo.RejectQASubmission(ctx, id, domain.StageUnderReviewInternal, domain.StageWorkInProgress, req.Notes); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(domain.StageUnderReviewInternal), string(domain.StageWorkInProgress))

	if engineer, ok := s.assignedEngineer(ctx, svc); ok {
		if err := s.queue.Enqueue(ctx, notify.Job{
			Type:     notify.TriggerServiceRejected,
			Email:    engineer.Email,
			Engineer: engineer.Name,
			Service:  svc.DisplayName(),
			Notes:    req.Notes,
		}); err != nil {
			return transport.ServiceResponse{}, err
		}
	}

	return s.GetByID(ctx, id)
}

// ApproveQA releases the delivery to the customer.
func (s *Service) ApproveQA(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if svc.StatusType != domain.StageUnderReviewInternal {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("only a submission under internal review can be approved, current stage is %s", svc.StatusType))
	}

	if err := s.repo.ApproveQASubmission(ctx, id, domain.StageUnderReviewInternal, domain.StageDelivered, time.Now().UTC()); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(domain.StageUnderReviewInternal), string(domain.StageDelivered))

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:     notify.TriggerServiceDelivery,
		Email:    customer.Email,
		Customer: customer.Name,
		Service:  svc.DisplayName(),
		Project:  svc.ProjectTitle(),
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// RequestRevision records a numbered customer revision request. Revisions
// must be requested in sequence, within the purchased quota, and only after
// a delivery.
func (s *Service) RequestRevision(ctx context.Context, customerID, id uuid.UUID, req transport.RequestRevisionRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if reason := domain.ValidateRevisionRequest(svc.StatusType, req.RevisionNumber, len(svc.RevisionFiles), svc.SetOfRevisions); reason != "" {
		return transport.ServiceResponse{}, apperr.Precondition(reason)
	}

	now := time.Now().UTC()
	revisions := append(append([]repository.RevisionFile(nil), svc.RevisionFiles...), repository.RevisionFile{
		Revision:     req.RevisionNumber,
		RevisionFor:  req.RevisionNumber - 1,
		Description:  req.Description,
		RevisionTime: &now,
	})
	estDelivery := now.AddDate(0, 0, svc.RevisionsDeliveryDays)

	if err := s.repo.SaveRevisions(ctx, id, svc.StatusType, domain.StageRevisionRequest, revisions, &estDelivery); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(svc.StatusType), string(domain.StageRevisionRequest))

	if engineer, ok := s.assignedEngineer(ctx, svc); ok {
		if err := s.queue.Enqueue(ctx, notify.Job{
			Type:     notify.TriggerServiceRevisionRequest,
			Email:    engineer.Email,
			Engineer: engineer.Name,
			Service:  svc.DisplayName(),
			Project:  svc.ProjectTitle(),
			Notes:    req.Description,
		}); err != nil {
			return transport.ServiceResponse{}, err
		}
	}

	return s.GetForCustomer(ctx, customerID, id)
}

// DeliverRevision attaches the reworked file to the open revision entry.
func (s *Service) DeliverRevision(ctx context.Context, id uuid.UUID, req transport.DeliverRevisionRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if svc.StatusType != domain.StageRevisionRequest {
		return transport.ServiceResponse{}, apperr.Precondition(
			fmt.Sprintf("no revision is awaiting delivery, current stage is %s", svc.StatusType))
	}

	revisions := append([]repository.RevisionFile(nil), svc.RevisionFiles...)
	found := false
	for i := range revisions {
		if revisions[i].Revision == req.RevisionNumber {
			if revisions[i].File != "" {
				return transport.ServiceResponse{}, apperr.Conflict(
					fmt.Sprintf("revision %d was already delivered", req.RevisionNumber))
			}
			revisions[i].File = req.File
			found = true
			break
		}
	}
	if !found {
		return transport.ServiceResponse{}, apperr.NotFound(
			fmt.Sprintf("revision %d was never requested", req.RevisionNumber))
	}

	if err := s.repo.SaveRevisions(ctx, id, domain.StageRevisionRequest, domain.StageRevisionDelivered, revisions, nil); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(domain.StageRevisionRequest), string(domain.StageRevisionDelivered))

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:     notify.TriggerServiceRevisionDelivery,
		Email:    customer.Email,
		Customer: customer.Name,
		Service:  svc.DisplayName(),
		Project:  svc.ProjectTitle(),
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// Complete closes the service out. Any non-terminal stage qualifies; the
// caller records on whose behalf the service was closed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, completedFor string) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if reason := domain.ValidateCompletion(svc.StatusType); reason != "" {
		return transport.ServiceResponse{}, apperr.Conflict(reason)
	}

	if err := s.repo.CompleteService(ctx, id, svc.StatusType, domain.StageCompleted, time.Now().UTC(), completedFor); err != nil {
		return transport.ServiceResponse{}, err
	}
	s.log.StageTransition(id.String(), string(svc.StatusType), string(domain.StageCompleted))

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:     notify.TriggerServiceComplete,
		Email:    customer.Email,
		Customer: customer.Name,
		Service:  svc.DisplayName(),
		Project:  svc.ProjectTitle(),
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// UpdateProjectName renames the customer's project.
func (s *Service) UpdateProjectName(ctx context.Context, customerID, id uuid.UUID, req transport.UpdateProjectNameRequest) (transport.ServiceResponse, error) {
	if err := s.repo.UpdateProjectName(ctx, customerID, id, req.ProjectName); err != nil {
		return transport.ServiceResponse{}, err
	}
	return s.GetForCustomer(ctx, customerID, id)
}

// RemoveUnpaidService deletes a service the customer abandoned before paying.
func (s *Service) RemoveUnpaidService(ctx context.Context, customerID, id uuid.UUID) error {
	svc, err := s.repo.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return err
	}
	if svc.Paid {
		return apperr.Conflict("a paid service cannot be removed")
	}
	return s.repo.DeleteUnpaid(ctx, customerID, id)
}

// Purchase creates an unpaid service from a catalog snapshot. Payment
// settlement later flips it live.
func (s *Service) Purchase(ctx context.Context, params repository.CreateParams) (transport.ServiceResponse, error) {
	svc, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(svc), nil
}

// SettlePurchase marks the service paid and sends the purchase
// notifications. Settling an already-paid service is a no-op: a duplicate
// payment callback must not repeat side effects.
func (s *Service) SettlePurchase(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if svc.Paid {
		return nil
	}

	if err := s.repo.MarkPaid(ctx, id, paidAt); err != nil {
		return err
	}

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, notify.Job{
		Type:        notify.TriggerServicePurchase,
		Email:       customer.Email,
		Customer:    customer.Name,
		Service:     svc.DisplayName(),
		AmountPaise: svc.PricePaise,
	})
}

// SettleAddon enables a paid add-on. The extra-revision add-on raises the
// revision quota by one. The engineer is told about the new work and the
// customer gets a receipt.
func (s *Service) SettleAddon(ctx context.Context, id uuid.UUID, addon Addon, amountPaise int64) error {
	if !KnownAddon(addon) {
		return apperr.BadRequest(fmt.Sprintf("unknown add-on %q", addon))
	}

	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetAddonFlags(ctx, id, addon.update()); err != nil {
		return err
	}

	if engineer, ok := s.assignedEngineer(ctx, svc); ok {
		if err := s.queue.Enqueue(ctx, notify.Job{
			Type:     notify.TriggerServiceAddonRequest,
			Email:    engineer.Email,
			Engineer: engineer.Name,
			Project:  svc.ProjectTitle(),
			Notes:    addon.DisplayName(),
		}); err != nil {
			return err
		}
	}

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, notify.Job{
		Type:        notify.TriggerServiceAddonPurchase,
		Email:       customer.Email,
		Customer:    customer.Name,
		Notes:       addon.DisplayName(),
		AmountPaise: amountPaise,
	})
}

// DeliverAddon stores a delivered add-on export file and tells the
// customer. Only a purchased export add-on can be delivered.
func (s *Service) DeliverAddon(ctx context.Context, id uuid.UUID, addon Addon, file string) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	var multitrackFile, stemsFile *string
	switch addon {
	case AddonMultitrack:
		if !svc.AddOnExportsMultitrack {
			return transport.ServiceResponse{}, apperr.Precondition("the multitrack export add-on was not purchased")
		}
		multitrackFile = &file
	case AddonBusStems:
		if !svc.AddOnExportsBusStems {
			return transport.ServiceResponse{}, apperr.Precondition("the bus stems export add-on was not purchased")
		}
		stemsFile = &file
	default:
		return transport.ServiceResponse{}, apperr.BadRequest(fmt.Sprintf("add-on %q has no deliverable file", addon))
	}

	if err := s.repo.SaveAddonFile(ctx, id, multitrackFile, stemsFile); err != nil {
		return transport.ServiceResponse{}, err
	}

	customer, err := s.repo.GetCustomer(ctx, svc.CustomerID)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	if err := s.queue.Enqueue(ctx, notify.Job{
		Type:     notify.TriggerServiceAddonDelivery,
		Email:    customer.Email,
		Customer: customer.Name,
		Service:  svc.DisplayName(),
		Notes:    addon.DisplayName(),
	}); err != nil {
		return transport.ServiceResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// assignedEngineer resolves the service's assigned engineer. Transitions
// that would notify an engineer skip the notification while nobody is
// assigned.
func (s *Service) assignedEngineer(ctx context.Context, svc repository.UserService) (repository.Staff, bool) {
	if svc.AssignedTo == nil {
		s.log.QueueEvent("notification_skipped_unassigned", string(svc.StatusType), "")
		return repository.Staff{}, false
	}
	engineer, err := s.repo.GetStaff(ctx, *svc.AssignedTo)
	if err != nil {
		s.log.QueueEvent("notification_skipped_missing_staff", string(svc.StatusType), "")
		return repository.Staff{}, false
	}
	return engineer, true
}

// deleteObjects removes file keys from a bucket. Any failed deletion aborts
// the caller's transition.
func (s *Service) deleteObjects(ctx context.Context, bucket string, fileKeys []string) error {
	if len(fileKeys) == 0 {
		return nil
	}
	_, errs := s.store.DeleteObjects(ctx, bucket, fileKeys)
	if len(errs) > 0 {
		return apperr.Wrap(apperr.KindInternal, "failed to remove stored files", errs[0])
	}
	return nil
}

func toResponse(svc repository.UserService) transport.ServiceResponse {
	ledger := make([]transport.LedgerEntryView, 0, len(svc.Ledger))
	for _, entry := range svc.Ledger {
		ledger = append(ledger, transport.LedgerEntryView{
			Name:  string(entry.Name),
			State: string(entry.State),
		})
	}
	revisions := make([]transport.RevisionFileView, 0, len(svc.RevisionFiles))
	for _, rev := range svc.RevisionFiles {
		revisions = append(revisions, transport.RevisionFileView{
			Revision:     rev.Revision,
			RevisionFor:  rev.RevisionFor,
			File:         rev.File,
			Description:  rev.Description,
			RevisionTime: rev.RevisionTime,
		})
	}

	return transport.ServiceResponse{
		ID:                        svc.ID,
		CustomerID:                svc.CustomerID,
		ServiceName:               svc.ServiceName,
		SubService:                svc.SubService,
		ProjectName:               svc.ProjectName,
		PricePaise:                svc.PricePaise,
		DeliveryDays:              svc.DeliveryDays,
		SetOfRevisions:            svc.SetOfRevisions,
		RevisionsDeliveryDays:     svc.RevisionsDeliveryDays,
		StatusType:                string(svc.StatusType),
		Ledger:                    ledger,
		Paid:                      svc.Paid,
		PaidAt:                    svc.PaidAt,
		UploadedFiles:             emptyIfNil(svc.UploadedFiles),
		ReferenceFiles:            emptyIfNil(svc.ReferenceFiles),
		DeliveredFiles:            emptyIfNil(svc.DeliveredFiles),
		RevisionFiles:             revisions,
		Notes:                     svc.Notes,
		ReuploadNote:              svc.ReuploadNote,
		RequestReuploadCounter:    svc.RequestReuploadCounter,
		IsReupload:                svc.IsReupload,
		RevisionNotesByMaster:     svc.RevisionNotesByMaster,
		NumberOfRevisionsByMaster: svc.NumberOfRevisionsByMaster,
		AssignedTo:                svc.AssignedTo,
		AssignedTime:              svc.AssignedTime,
		SubmissionDate:            svc.SubmissionDate,
		EstDeliveryDate:           svc.EstDeliveryDate,
		CompletionDate:            svc.CompletionDate,
		CompletedFor:              svc.CompletedFor,
		AddOnExtraRevision:        svc.AddOnExtraRevision,
		AddOnExportsBusStems:      svc.AddOnExportsBusStems,
		AddOnExportsMultitrack:    svc.AddOnExportsMultitrack,
		MultitrackFile:            svc.MultitrackFile,
		StemsFile:                 svc.StemsFile,
		CreatedAt:                 svc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                 svc.UpdatedAt.Format(time.RFC3339),
	}
}

func toListResponse(items []repository.UserService) transport.ServiceListResponse {
	responses := make([]transport.ServiceResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}
	return transport.ServiceListResponse{Items: responses, Total: len(responses)}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
