package repository

import (
	"context"
	"time"

	"mixhouse_backend/internal/services/domain"

	"github.com/google/uuid"
)

// UserService is a purchased service instance owned by a customer. The
// catalog columns are snapshotted at purchase time so later catalog edits
// never change a running project.
type UserService struct {
	ID                        uuid.UUID
	CustomerID                uuid.UUID
	ServiceName               string
	SubService                *string
	ProjectName               *string
	PricePaise                int64
	DeliveryDays              int
	SetOfRevisions            int
	RevisionsDeliveryDays     int
	StatusType                domain.Stage
	Ledger                    domain.Ledger
	Paid                      bool
	PaidAt                    *time.Time
	UploadedFiles             []string
	ReferenceFiles            []string
	DeliveredFiles            []string
	RevisionFiles             []RevisionFile
	Notes                     *string
	ReuploadNote              *string
	RequestReuploadCounter    int
	IsReupload                bool
	RevisionNotesByMaster     *string
	NumberOfRevisionsByMaster int
	AssignedTo                *uuid.UUID
	AssignedBy                *uuid.UUID
	AssignedTime              *time.Time
	MasterProjectApprovalTime *time.Time
	SubmissionDate            *time.Time
	EstDeliveryDate           *time.Time
	CompletionDate            *time.Time
	CompletedFor              *string
	AddOnExtraRevision        bool
	AddOnExportsBusStems      bool
	AddOnExportsMultitrack    bool
	MultitrackFile            *string
	StemsFile                 *string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// DisplayName is the service name shown in notifications: the sub-service
// when set, otherwise the top-level service name.
func (s UserService) DisplayName() string {
	if s.SubService != nil && *s.SubService != "" {
		return *s.SubService
	}
	return s.ServiceName
}

// ProjectTitle returns the project name or empty string.
func (s UserService) ProjectTitle() string {
	if s.ProjectName != nil {
		return *s.ProjectName
	}
	return ""
}

// RevisionFile is one entry of a service's revision history. RevisionFor
// back-references which delivered revision the request targets; File is set
// when the engineer delivers the reworked files.
type RevisionFile struct {
	Revision     int        `json:"revision"`
	RevisionFor  int        `json:"revisionFor"`
	File         string     `json:"file,omitempty"`
	Description  string     `json:"description,omitempty"`
	RevisionTime *time.Time `json:"revisionTime,omitempty"`
}

// Customer owns purchased services by composition: services are reachable
// only through their owning customer.
type Customer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone *string
}

// Staff is an internal user (engineer, manager or master).
type Staff struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

// CreateParams contains the snapshot taken from the catalog when a service
// is purchased.
type CreateParams struct {
	CustomerID            uuid.UUID
	ServiceName           string
	SubService            *string
	ProjectName           *string
	PricePaise            int64
	DeliveryDays          int
	SetOfRevisions        int
	RevisionsDeliveryDays int
}

// UploadUpdate carries a customer file upload (first upload or reupload).
type UploadUpdate struct {
	Files          []string
	ReferenceFiles []string
	ProjectName    *string
	SubmissionDate time.Time
	IsReupload     bool
}

// AddonUpdate flips add-on flags after a settled add-on payment.
// ExtraRevision additionally raises the purchased revision quota by one.
type AddonUpdate struct {
	Multitrack    bool
	Stems         bool
	ExtraRevision bool
}

// ServiceReader provides read operations for purchased services.
type ServiceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (UserService, error)
	GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (UserService, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]UserService, error)
	ListByAssignee(ctx context.Context, staffID uuid.UUID) ([]UserService, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
	GetStaff(ctx context.Context, id uuid.UUID) (Staff, error)
}

// ServiceWriter provides write operations. Every stage-changing method is a
// compare-and-swap: the update only applies while status_type still equals
// the expected pre-transition stage, and a stale expectation surfaces as a
// precondition failure for the losing racer.
type ServiceWriter interface {
	Create(ctx context.Context, params CreateParams) (UserService, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	SetAddonFlags(ctx context.Context, id uuid.UUID, update AddonUpdate) error
	SaveAddonFile(ctx context.Context, id uuid.UUID, multitrackFile, stemsFile *string) error
	Assign(ctx context.Context, id, assignedTo, assignedBy uuid.UUID, assignedAt time.Time) error
	UpdateProjectName(ctx context.Context, customerID, id uuid.UUID, projectName string) error
	DeleteUnpaid(ctx context.Context, customerID, id uuid.UUID) error

	SaveUpload(ctx context.Context, id uuid.UUID, expected, target domain.Stage, update UploadUpdate) error
	ClearUploadsForReupload(ctx context.Context, id uuid.UUID, expected, target domain.Stage, note string) error
	ConfirmUpload(ctx context.Context, id uuid.UUID, expected, target domain.Stage, estDelivery time.Time) error
	SaveQASubmission(ctx context.Context, id uuid.UUID, expected, target domain.Stage, deliveredFiles []string) error
	RejectQASubmission(ctx context.Context, id uuid.UUID, expected, target domain.Stage, notes string) error
	ApproveQASubmission(ctx context.Context, id uuid.UUID, expected, target domain.Stage, approvedAt time.Time) error
	SaveRevisions(ctx context.Context, id uuid.UUID, expected, target domain.Stage, revisions []RevisionFile, estDelivery *time.Time) error
	CompleteService(ctx context.Context, id uuid.UUID, expected, target domain.Stage, completedAt time.Time, completedFor string) error
}

// Repository combines all purchased-service repository operations.
type Repository interface {
	ServiceReader
	ServiceWriter
}
