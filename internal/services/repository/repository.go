package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mixhouse_backend/internal/services/domain"
	"mixhouse_backend/platform/apperr"
)

const (
	serviceNotFoundMessage  = "service not found"
	customerNotFoundMessage = "customer not found"
	staffNotFoundMessage    = "staff member not found"
	stageConflictMessage    = "service is no longer in the expected stage"
)

const serviceColumns = `
	id, customer_id, service_name, sub_service, project_name, price_paise,
	delivery_days, set_of_revisions, revisions_delivery_days,
	status_type, ledger, paid, paid_at,
	uploaded_files, reference_files, delivered_files, revision_files,
	notes, reupload_note, request_reupload_counter, is_reupload,
	revision_notes_by_master, number_of_revisions_by_master,
	assigned_to, assigned_by, assigned_time,
	master_project_approval_time, submission_date, est_delivery_date,
	completion_date, completed_for,
	addon_extra_revision, addon_exports_bus_stems, addon_exports_multitrack,
	multitrack_file, stems_file, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new purchased-services repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a purchased service by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (UserService, error) {
	query := `SELECT ` + serviceColumns + ` FROM user_services WHERE id = $1`

	svc, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserService{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return UserService{}, fmt.Errorf("get service by id: %w", err)
	}
	return svc, nil
}

// GetForCustomer retrieves a service only when the given customer owns it.
func (r *Repo) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (UserService, error) {
	query := `SELECT ` + serviceColumns + ` FROM user_services WHERE id = $1 AND customer_id = $2`

	svc, err := scanService(r.pool.QueryRow(ctx, query, id, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserService{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return UserService{}, fmt.Errorf("get service for customer: %w", err)
	}
	return svc, nil
}

// ListByCustomer retrieves all services owned by a customer, newest first.
func (r *Repo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]UserService, error) {
	query := `SELECT ` + serviceColumns + ` FROM user_services
		WHERE customer_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list services by customer: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// ListByAssignee retrieves all paid services assigned to a staff member.
func (r *Repo) ListByAssignee(ctx context.Context, staffID uuid.UUID) ([]UserService, error) {
	query := `SELECT ` + serviceColumns + ` FROM user_services
		WHERE assigned_to = $1 AND paid = true
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("list services by assignee: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// GetCustomer retrieves a customer by ID.
func (r *Repo) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	query := `SELECT id, name, email, phone FROM customers WHERE id = $1`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetStaff retrieves a staff member by ID.
func (r *Repo) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	query := `SELECT id, name, email, role FROM staff WHERE id = $1`

	var s Staff
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Email, &s.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Staff{}, apperr.NotFound(staffNotFoundMessage)
		}
		return Staff{}, fmt.Errorf("get staff: %w", err)
	}
	return s, nil
}

// Create inserts a new unpaid service with the catalog snapshot. The ledger
// starts at the first stage of the pipeline.
func (r *Repo) Create(ctx context.Context, params CreateParams) (UserService, error) {
	ledger, err := marshalLedger(domain.DefaultLedger())
	if err != nil {
		return UserService{}, err
	}

	query := `
		INSERT INTO user_services (
			customer_id, service_name, sub_service, project_name, price_paise,
			delivery_days, set_of_revisions, revisions_delivery_days,
			status_type, ledger
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + serviceColumns

	svc, err := scanService(r.pool.QueryRow(ctx, query,
		params.CustomerID, params.ServiceName, params.SubService, params.ProjectName, params.PricePaise,
		params.DeliveryDays, params.SetOfRevisions, params.RevisionsDeliveryDays,
		string(domain.StagePendingUpload), ledger,
	))
	if err != nil {
		return UserService{}, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

// MarkPaid records the payment settlement timestamp.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	query := `UPDATE user_services SET paid = true, paid_at = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, paidAt)
	if err != nil {
		return fmt.Errorf("mark service paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// SetAddonFlags enables purchased add-ons. An extra-revision add-on also
// raises the revision quota by one.
func (r *Repo) SetAddonFlags(ctx context.Context, id uuid.UUID, update AddonUpdate) error {
	query := `
		UPDATE user_services SET
			addon_exports_multitrack = addon_exports_multitrack OR $2,
			addon_exports_bus_stems = addon_exports_bus_stems OR $3,
			addon_extra_revision = addon_extra_revision OR $4,
			set_of_revisions = set_of_revisions + CASE WHEN $4 THEN 1 ELSE 0 END,
			updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, update.Multitrack, update.Stems, update.ExtraRevision)
	if err != nil {
		return fmt.Errorf("set addon flags: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// SaveAddonFile stores delivered add-on export files. Nil arguments leave
// the corresponding column untouched.
func (r *Repo) SaveAddonFile(ctx context.Context, id uuid.UUID, multitrackFile, stemsFile *string) error {
	query := `
		UPDATE user_services SET
			multitrack_file = COALESCE($2, multitrack_file),
			stems_file = COALESCE($3, stems_file),
			updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, multitrackFile, stemsFile)
	if err != nil {
		return fmt.Errorf("save addon file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// Assign records the responsible engineer. Assignment never moves the stage.
func (r *Repo) Assign(ctx context.Context, id, assignedTo, assignedBy uuid.UUID, assignedAt time.Time) error {
	query := `
		UPDATE user_services SET
			assigned_to = $2, assigned_by = $3, assigned_time = $4, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, assignedTo, assignedBy, assignedAt)
	if err != nil {
		return fmt.Errorf("assign service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// UpdateProjectName renames the customer's project.
func (r *Repo) UpdateProjectName(ctx context.Context, customerID, id uuid.UUID, projectName string) error {
	query := `UPDATE user_services SET project_name = $3, updated_at = now() WHERE id = $1 AND customer_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, customerID, projectName)
	if err != nil {
		return fmt.Errorf("update project name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// DeleteUnpaid removes a service that was never paid for. Paid services are
// part of the customer's history and cannot be deleted.
func (r *Repo) DeleteUnpaid(ctx context.Context, customerID, id uuid.UUID) error {
	query := `DELETE FROM user_services WHERE id = $1 AND customer_id = $2 AND paid = false`

	tag, err := r.pool.Exec(ctx, query, id, customerID)
	if err != nil {
		return fmt.Errorf("delete unpaid service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// SaveUpload stores the customer's files and advances the pipeline. The
// rewritten ledger places the cursor on the target stage.
func (r *Repo) SaveUpload(ctx context.Context, id uuid.UUID, expected, target domain.Stage, update UploadUpdate) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			uploaded_files = $3,
			reference_files = $4,
			project_name = COALESCE($5, project_name),
			submission_date = $6,
			is_reupload = $7,
			status_type = $8,
			ledger = $9,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "save upload", id, query,
		id, string(expected),
		update.Files, update.ReferenceFiles, update.ProjectName, update.SubmissionDate,
		update.IsReupload, string(target), ledger,
	)
}

// ClearUploadsForReupload wipes the previous upload after the objects were
// removed from storage, records the reason, and bumps the reupload counter.
func (r *Repo) ClearUploadsForReupload(ctx context.Context, id uuid.UUID, expected, target domain.Stage, note string) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			uploaded_files = '{}',
			reference_files = '{}',
			reupload_note = $3,
			request_reupload_counter = request_reupload_counter + 1,
			status_type = $4,
			ledger = $5,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "clear uploads for reupload", id, query,
		id, string(expected), note, string(target), ledger,
	)
}

// ConfirmUpload accepts the customer's files and starts the work clock.
func (r *Repo) ConfirmUpload(ctx context.Context, id uuid.UUID, expected, target domain.Stage, estDelivery time.Time) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			est_delivery_date = $3,
			status_type = $4,
			ledger = $5,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "confirm upload", id, query,
		id, string(expected), estDelivery, string(target), ledger,
	)
}

// SaveQASubmission stores the engineer's delivery for internal review.
func (r *Repo) SaveQASubmission(ctx context.Context, id uuid.UUID, expected, target domain.Stage, deliveredFiles []string) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			delivered_files = $3,
			status_type = $4,
			ledger = $5,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "save qa submission", id, query,
		id, string(expected), deliveredFiles, string(target), ledger,
	)
}

// RejectQASubmission clears the rejected delivery after the objects were
// removed from storage, records the master's notes and counts the rejection.
func (r *Repo) RejectQASubmission(ctx context.Context, id uuid.UUID, expected, target domain.Stage, notes string) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			delivered_files = '{}',
			revision_notes_by_master = $3,
			number_of_revisions_by_master = number_of_revisions_by_master + 1,
			status_type = $4,
			ledger = $5,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "reject qa submission", id, query,
		id, string(expected), notes, string(target), ledger,
	)
}

// ApproveQASubmission releases the delivery to the customer.
func (r *Repo) ApproveQASubmission(ctx context.Context, id uuid.UUID, expected, target domain.Stage, approvedAt time.Time) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			master_project_approval_time = $3,
			status_type = $4,
			ledger = $5,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "approve qa submission", id, query,
		id, string(expected), approvedAt, string(target), ledger,
	)
}

// SaveRevisions replaces the revision history wholesale. It serves both the
// customer's revision request (new entry appended, delivery estimate pushed
// out) and the engineer's revision delivery (file set on the open entry).
func (r *Repo) SaveRevisions(ctx context.Context, id uuid.UUID, expected, target domain.Stage, revisions []RevisionFile, estDelivery *time.Time) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}
	revisionsJSON, err := json.Marshal(revisions)
	if err != nil {
		return fmt.Errorf("marshal revision files: %w", err)
	}

	query := `
		UPDATE user_services SET
			revision_files = $3,
			est_delivery_date = COALESCE($4, est_delivery_date),
			status_type = $5,
			ledger = $6,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "save revisions", id, query,
		id, string(expected), revisionsJSON, estDelivery, string(target), ledger,
	)
}

// CompleteService closes the service and records who closed it.
func (r *Repo) CompleteService(ctx context.Context, id uuid.UUID, expected, target domain.Stage, completedAt time.Time, completedFor string) error {
	ledger, err := marshalLedger(domain.LedgerFor(target))
	if err != nil {
		return err
	}

	query := `
		UPDATE user_services SET
			completion_date = $3,
			completed_for = $4,
			status_type = $5,
			ledger = $6,
			updated_at = now()
		WHERE id = $1 AND status_type = $2`

	return r.casExec(ctx, "complete service", id, query,
		id, string(expected), completedAt, completedFor, string(target), ledger,
	)
}

// casExec runs a guarded stage update. A zero row count means the row either
// vanished or a concurrent transition already moved the cursor; the loser
// gets a precondition failure rather than silently overwriting.
func (r *Repo) casExec(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM user_services WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("%s: check service exists: %w", op, err)
		}
		if !exists {
			return apperr.NotFound(serviceNotFoundMessage)
		}
		return apperr.Precondition(stageConflictMessage)
	}
	return nil
}

func marshalLedger(ledger domain.Ledger) ([]byte, error) {
	data, err := json.Marshal(ledger)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (UserService, error) {
	var svc UserService
	var ledgerJSON, revisionsJSON []byte
	var statusType string

	err := row.Scan(
		&svc.ID, &svc.CustomerID, &svc.ServiceName, &svc.SubService, &svc.ProjectName, &svc.PricePaise,
		&svc.DeliveryDays, &svc.SetOfRevisions, &svc.RevisionsDeliveryDays,
		&statusType, &ledgerJSON, &svc.Paid, &svc.PaidAt,
		&svc.UploadedFiles, &svc.ReferenceFiles, &svc.DeliveredFiles, &revisionsJSON,
		&svc.Notes, &svc.ReuploadNote, &svc.RequestReuploadCounter, &svc.IsReupload,
		&svc.RevisionNotesByMaster, &svc.NumberOfRevisionsByMaster,
		&svc.AssignedTo, &svc.AssignedBy, &svc.AssignedTime,
		&svc.MasterProjectApprovalTime, &svc.SubmissionDate, &svc.EstDeliveryDate,
		&svc.CompletionDate, &svc.CompletedFor,
		&svc.AddOnExtraRevision, &svc.AddOnExportsBusStems, &svc.AddOnExportsMultitrack,
		&svc.MultitrackFile, &svc.StemsFile, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		return UserService{}, err
	}

	svc.StatusType = domain.Stage(statusType)
	if err := json.Unmarshal(ledgerJSON, &svc.Ledger); err != nil {
		return UserService{}, fmt.Errorf("unmarshal ledger: %w", err)
	}
	if len(revisionsJSON) > 0 {
		if err := json.Unmarshal(revisionsJSON, &svc.RevisionFiles); err != nil {
			return UserService{}, fmt.Errorf("unmarshal revision files: %w", err)
		}
	}
	return svc, nil
}

func scanServices(rows pgx.Rows) ([]UserService, error) {
	var results []UserService

	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		results = append(results, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return results, nil
}
