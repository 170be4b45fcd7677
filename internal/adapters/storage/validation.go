package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes defines the allowed MIME types for uploads. Customers
// upload session audio and references; engineers deliver mixes, stems and
// multitrack archives.
var AllowedContentTypes = map[string]bool{
	// Audio
	"audio/mpeg":   true,
	"audio/wav":    true,
	"audio/x-wav":  true,
	"audio/aiff":   true,
	"audio/x-aiff": true,
	"audio/flac":   true,
	"audio/ogg":    true,
	"audio/mp4":    true,
	"audio/aac":    true,

	// Multitrack/stems archives
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/x-rar-compressed": true,
	"application/x-7z-compressed":  true,

	// Reference documents and session notes
	"application/pdf": true,
	"text/plain":      true,
}

// ValidateContentType checks if the content type is allowed.
func (s *MinIOService) ValidateContentType(contentType string) error {
	// Normalize content type (remove parameters like charset)
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))

	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > s.maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, s.maxFileSize)
	}
	return nil
}
