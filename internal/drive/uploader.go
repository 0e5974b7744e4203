package drive

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/util"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Uploader publishes documents to a shared Drive folder and returns a public
// direct-download URL.
type Uploader struct {
	service  *drive.Service
	folderID string
	logger   *zap.Logger
}

// NewUploader creates a Drive uploader from a service-account credentials
// file. Returns nil service when credentialsFile is empty; Upload then fails
// with an upstream error instead of panicking at startup.
func NewUploader(ctx context.Context, credentialsFile, folderID string) (*Uploader, error) {
	u := &Uploader{folderID: folderID, logger: util.GetLogger()}

	if credentialsFile == "" {
		u.logger.Warn("Drive credentials not configured, uploads will fail")
		return u, nil
	}

	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	u.service = service
	return u, nil
}

// Upload stores a base64 payload under the configured folder, grants
// anyone-with-the-link read access and returns the direct download URL.
func (u *Uploader) Upload(ctx context.Context, filename, contentBase64 string) (string, error) {
	ctx, span := util.StartSpan(ctx, "drive.Upload")
	defer span.End()

	start := time.Now()
	defer func() {
		util.DriveUploadLatency.Observe(time.Since(start).Seconds())
	}()

	if u.service == nil {
		return "", apperrors.NewUpstreamError("drive", "file hosting not configured", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return "", apperrors.NewValidationError("content is not valid base64")
	}

	meta := &drive.File{
		Name:     filename,
		MimeType: "application/pdf",
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	created, err := u.service.Files.Create(meta).
		Media(bytes.NewReader(raw)).
		Context(ctx).
		Do()
	if err != nil {
		return "", apperrors.NewUpstreamError("drive", "upload failed", err)
	}

	permission := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := u.service.Permissions.Create(created.Id, permission).Context(ctx).Do(); err != nil {
		return "", apperrors.NewUpstreamError("drive", "failed to set public permission", err)
	}

	u.logger.Info("File uploaded to Drive",
		zap.String("filename", filename),
		zap.String("file_id", created.Id))

	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", created.Id), nil
}
