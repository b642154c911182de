package storage

import (
	"context"
	"fmt"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ReportKey is the object key of a tournament's final report.
func ReportKey(chatID int64, tournamentID string) string {
	return fmt.Sprintf("reports/%d/%s.json", chatID, tournamentID)
}
