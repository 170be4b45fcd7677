package transport

import (
	"time"

	"github.com/google/uuid"
)

// UploadFilesRequest carries the customer's project files. ReferenceFiles are
// optional mix references; ProjectName may be set on the first upload.
type UploadFilesRequest struct {
	Files          []string `json:"files" validate:"required,min=1,dive,min=1"`
	ReferenceFiles []string `json:"referenceFiles,omitempty" validate:"omitempty,dive,min=1"`
	ProjectName    *string  `json:"projectName,omitempty" validate:"omitempty,min=1,max=200"`
}

// RequestReuploadRequest asks the customer to upload their files again.
type RequestReuploadRequest struct {
	Note string `json:"note" validate:"required,min=1,max=2000"`
}

// SubmitForQARequest carries the engineer's finished files for internal review.
type SubmitForQARequest struct {
	DeliveredFiles []string `json:"deliveredFiles" validate:"required,min=1,dive,min=1"`
}

// RejectQARequest carries the master's rework notes for the engineer.
type RejectQARequest struct {
	Notes string `json:"notes" validate:"required,min=1,max=5000"`
}

// RequestRevisionRequest is the customer's numbered revision request.
type RequestRevisionRequest struct {
	RevisionNumber int    `json:"revisionNumber" validate:"required,min=1"`
	Description    string `json:"description" validate:"required,min=1,max=5000"`
}

// DeliverRevisionRequest attaches the reworked file to an open revision.
type DeliverRevisionRequest struct {
	RevisionNumber int    `json:"revisionNumber" validate:"required,min=1"`
	File           string `json:"file" validate:"required,min=1"`
}

// AssignRequest puts an engineer on a service.
type AssignRequest struct {
	AssignedTo uuid.UUID `json:"assignedTo" validate:"required"`
}

// UpdateProjectNameRequest renames the customer's project.
type UpdateProjectNameRequest struct {
	ProjectName string `json:"projectName" validate:"required,min=1,max=200"`
}

// LedgerEntryView is one row of the customer's progress tracker.
type LedgerEntryView struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// RevisionFileView is one entry of the revision history.
type RevisionFileView struct {
	Revision     int        `json:"revision"`
	RevisionFor  int        `json:"revisionFor"`
	File         string     `json:"file,omitempty"`
	Description  string     `json:"description,omitempty"`
	RevisionTime *time.Time `json:"revisionTime,omitempty"`
}

// ServiceResponse is the full purchased-service view.
type ServiceResponse struct {
	ID                        uuid.UUID          `json:"id"`
	CustomerID                uuid.UUID          `json:"customerId"`
	ServiceName               string             `json:"serviceName"`
	SubService                *string            `json:"subService,omitempty"`
	ProjectName               *string            `json:"projectName,omitempty"`
	PricePaise                int64              `json:"pricePaise"`
	DeliveryDays              int                `json:"deliveryDays"`
	SetOfRevisions            int                `json:"setOfRevisions"`
	RevisionsDeliveryDays     int                `json:"revisionsDeliveryDays"`
	StatusType                string             `json:"statusType"`
	Ledger                    []LedgerEntryView  `json:"ledger"`
	Paid                      bool               `json:"paid"`
	PaidAt                    *time.Time         `json:"paidAt,omitempty"`
	UploadedFiles             []string           `json:"uploadedFiles"`
	ReferenceFiles            []string           `json:"referenceFiles"`
	DeliveredFiles            []string           `json:"deliveredFiles"`
	RevisionFiles             []RevisionFileView `json:"revisionFiles"`
	Notes                     *string            `json:"notes,omitempty"`
	ReuploadNote              *string            `json:"reuploadNote,omitempty"`
	RequestReuploadCounter    int                `json:"requestReuploadCounter"`
	IsReupload                bool               `json:"isReupload"`
	RevisionNotesByMaster     *string            `json:"revisionNotesByMaster,omitempty"`
	NumberOfRevisionsByMaster int                `json:"numberOfRevisionsByMaster"`
	AssignedTo                *uuid.UUID         `json:"assignedTo,omitempty"`
	AssignedTime              *time.Time         `json:"assignedTime,omitempty"`
	SubmissionDate            *time.Time         `json:"submissionDate,omitempty"`
	EstDeliveryDate           *time.Time         `json:"estDeliveryDate,omitempty"`
	CompletionDate            *time.Time         `json:"completionDate,omitempty"`
	CompletedFor              *string            `json:"completedFor,omitempty"`
	AddOnExtraRevision        bool               `json:"addOnExtraRevision"`
	AddOnExportsBusStems      bool               `json:"addOnExportsBusStems"`
	AddOnExportsMultitrack    bool               `json:"addOnExportsMultitrack"`
	MultitrackFile            *string            `json:"multitrackFile,omitempty"`
	StemsFile                 *string            `json:"stemsFile,omitempty"`
	CreatedAt                 string             `json:"createdAt"`
	UpdatedAt                 string             `json:"updatedAt"`
}

// ServiceListResponse wraps a list of purchased services.
type ServiceListResponse struct {
	Items []ServiceResponse `json:"items"`
	Total int               `json:"total"`
}

// PresignUploadRequest asks for a signed PUT URL for one file.
type PresignUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required,min=1"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// PresignedURLResponse carries a short-lived signed URL for direct object
// access. FileKey is what the client reports back once the transfer is done.
type PresignedURLResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
