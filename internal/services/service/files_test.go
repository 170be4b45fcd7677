package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mixhouse_backend/internal/adapters/storage"
	"mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

type presignCall struct {
	bucket string
	folder string
	key    string
}

type fakePresigner struct {
	uploads   []presignCall
	downloads []presignCall
	badType   bool
	badSize   bool
}

func (f *fakePresigner) GenerateUploadURL(_ context.Context, bucket, folder, fileName, _ string, _ int64) (*storage.PresignedURL, error) {
	f.uploads = append(f.uploads, presignCall{bucket: bucket, folder: folder, key: folder + "/" + fileName})
	return &storage.PresignedURL{
		URL:       "https://storage.test/" + bucket + "/" + folder + "/" + fileName,
		FileKey:   folder + "/" + fileName,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (f *fakePresigner) GenerateDownloadURL(_ context.Context, bucket, fileKey string) (*storage.PresignedURL, error) {
	f.downloads = append(f.downloads, presignCall{bucket: bucket, key: fileKey})
	return &storage.PresignedURL{
		URL:       "https://storage.test/" + bucket + "/" + fileKey,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (f *fakePresigner) ValidateContentType(string) error {
	if f.badType {
		return errors.New("content type is not allowed")
	}
	return nil
}

func (f *fakePresigner) ValidateFileSize(int64) error {
	if f.badSize {
		return errors.New("file too large")
	}
	return nil
}

func newFiles(p *fakePresigner) *Files {
	return NewFiles(p, Config{BucketUploads: "uploads", BucketDeliveries: "deliveries"}, logger.New("test"))
}

func TestPresignUploadScopesKeyToCustomer(t *testing.T) {
	presigner := &fakePresigner{}
	files := newFiles(presigner)
	customerID := uuid.New()

	resp, err := files.PresignUpload(context.Background(), customerID, transport.PresignUploadRequest{
		FileName:    "song.wav",
		ContentType: "audio/wav",
		SizeBytes:   1024,
	})
	if err != nil {
		t.Fatalf("PresignUpload: %v", err)
	}
	if len(presigner.uploads) != 1 || presigner.uploads[0].bucket != "uploads" {
		t.Fatalf("presign calls = %+v, want one against the uploads bucket", presigner.uploads)
	}
	if presigner.uploads[0].folder != customerID.String() {
		t.Errorf("folder = %q, want the customer id", presigner.uploads[0].folder)
	}
	if !strings.HasPrefix(resp.FileKey, customerID.String()+"/") {
		t.Errorf("file key %q not under the customer prefix", resp.FileKey)
	}
	if resp.URL == "" || resp.ExpiresAt.IsZero() {
		t.Errorf("response = %+v, want a signed URL with an expiry", resp)
	}
}

func TestPresignUploadRejectsBadFile(t *testing.T) {
	tests := []struct {
		name      string
		presigner *fakePresigner
	}{
		{"disallowed content type", &fakePresigner{badType: true}},
		{"oversized file", &fakePresigner{badSize: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := newFiles(tt.presigner)

			_, err := files.PresignUpload(context.Background(), uuid.New(), transport.PresignUploadRequest{
				FileName:    "song.wav",
				ContentType: "audio/wav",
				SizeBytes:   1024,
			})
			assertKind(t, err, apperr.KindBadRequest)
			if len(tt.presigner.uploads) != 0 {
				t.Error("rejected file still got a signed URL")
			}
		})
	}
}

func TestPresignDownloadMapsBuckets(t *testing.T) {
	presigner := &fakePresigner{}
	files := newFiles(presigner)

	if _, err := files.PresignDownload(context.Background(), "deliveries", "svc/mix.wav"); err != nil {
		t.Fatalf("PresignDownload: %v", err)
	}
	if len(presigner.downloads) != 1 || presigner.downloads[0].bucket != "deliveries" {
		t.Fatalf("presign calls = %+v, want one against the deliveries bucket", presigner.downloads)
	}

	_, err := files.PresignDownload(context.Background(), "secrets", "svc/mix.wav")
	assertKind(t, err, apperr.KindBadRequest)

	_, err = files.PresignDownload(context.Background(), "uploads", "")
	assertKind(t, err, apperr.KindBadRequest)
}
