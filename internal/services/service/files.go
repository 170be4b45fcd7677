package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"mixhouse_backend/internal/adapters/storage"
	"mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

// Presigner issues short-lived signed URLs for direct object access.
type Presigner interface {
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*storage.PresignedURL, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// Files issues presigned URLs so audio moves between the client and object
// storage directly, never through the API. Uploads are keyed under the
// customer's own prefix; downloads can target either bucket.
type Files struct {
	presigner Presigner
	cfg       Config
	log       *logger.Logger
}

// NewFiles creates the file-transfer service.
func NewFiles(presigner Presigner, cfg Config, log *logger.Logger) *Files {
	return &Files{presigner: presigner, cfg: cfg, log: log}
}

// PresignUpload validates the announced file and returns a signed PUT URL
// into the uploads bucket under the customer's prefix.
func (f *Files) PresignUpload(ctx context.Context, customerID uuid.UUID, req transport.PresignUploadRequest) (transport.PresignedURLResponse, error) {
	if err := f.presigner.ValidateContentType(req.ContentType); err != nil {
		return transport.PresignedURLResponse{}, apperr.BadRequest(err.Error())
	}
	if err := f.presigner.ValidateFileSize(req.SizeBytes); err != nil {
		return transport.PresignedURLResponse{}, apperr.BadRequest(err.Error())
	}

	signed, err := f.presigner.GenerateUploadURL(ctx, f.cfg.BucketUploads, customerID.String(), req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PresignedURLResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign upload URL", err)
	}

	return transport.PresignedURLResponse{
		URL:       signed.URL,
		FileKey:   signed.FileKey,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

// PresignDownload returns a signed GET URL for a stored object. The bucket
// name is logical ("uploads" or "deliveries"); the physical bucket stays a
// server-side concern.
func (f *Files) PresignDownload(ctx context.Context, bucket, fileKey string) (transport.PresignedURLResponse, error) {
	var physical string
	switch bucket {
	case "uploads":
		physical = f.cfg.BucketUploads
	case "deliveries":
		physical = f.cfg.BucketDeliveries
	default:
		return transport.PresignedURLResponse{}, apperr.BadRequest(fmt.Sprintf("unknown bucket %q", bucket))
	}
	if fileKey == "" {
		return transport.PresignedURLResponse{}, apperr.BadRequest("file key is required")
	}

	signed, err := f.presigner.GenerateDownloadURL(ctx, physical, fileKey)
	if err != nil {
		return transport.PresignedURLResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign download URL", err)
	}

	return transport.PresignedURLResponse{
		URL:       signed.URL,
		FileKey:   signed.FileKey,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}
