package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// XLSXContentType is the MIME type of archived reports
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportRepository stores generated reports and hands out time-limited download links
type ReportRepository interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
	DownloadURL(ctx context.Context, key, fileName string, expiry time.Duration) (string, error)
}

// ReportKey creates a unique object key for a user's monthly report
func ReportKey(userID, month, fileName string) string {
	return path.Join("reports", userID, month, fmt.Sprintf("%s_%s", uuid.New().String(), fileName))
}
