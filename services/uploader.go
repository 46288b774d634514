package services

import (
	"backup-courier/contract"
	"backup-courier/domain"
	"backup-courier/domain/mimetypes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const maxBodyInLog = 500

var partNamePattern = regexp.MustCompile(`\.part\d+$`)

// DocumentUploader pushes one file to the transport as a document attachment.
// Every failure is logged and reported as false, nothing is raised to the caller.
type DocumentUploader struct {
	log       *slog.Logger
	transport contract.Transport
	recorder  contract.DeliveryRecorder
	chatID    string
}

func NewDocumentUploader(log *slog.Logger, transport contract.Transport, recorder contract.DeliveryRecorder, chatID string) *DocumentUploader {
	return &DocumentUploader{
		log:       log,
		transport: transport,
		recorder:  recorder,
		chatID:    chatID,
	}
}

func (u *DocumentUploader) Upload(ctx context.Context, path string, caption string) bool {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			u.log.Warn("File no longer exists at upload time", "path", path)
		} else {
			u.log.Error("Unable to open file for upload", "path", path, "error", err)
		}
		return false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		u.log.Error("Unable to stat file for upload", "path", path, "error", err)
		return false
	}

	ct := contentType(path)
	if ct != string(mimetypes.OctetStream) && !mimetypes.IsArchive(ct) {
		u.log.Debug("Uploading a file that does not look like an archive", "path", path, "content_type", ct)
	}

	doc := domain.Document{
		FileName:    filepath.Base(path),
		Caption:     caption,
		ContentType: ct,
		Size:        info.Size(),
		Body:        file,
	}

	start := time.Now()
	status, body, err := u.transport.SendDocument(ctx, u.chatID, doc)
	ok := err == nil && status == http.StatusOK
	u.record(time.Since(start), doc.Size, ok)

	if err != nil {
		u.log.Error("Upload exception", "path", path, "error", err)
		return false
	}
	if status != http.StatusOK {
		u.log.Error("Upload failed", "path", path, "status", status, "body", truncate(body, maxBodyInLog))
		return false
	}
	u.log.Info("Upload succeeded", "path", path, "bytes", doc.Size, "duration", time.Since(start).Round(time.Millisecond))
	return true
}

func (u *DocumentUploader) record(duration time.Duration, bytes int64, ok bool) {
	if u.recorder != nil {
		u.recorder.ObserveUpload(duration, bytes, ok)
	}
}

// contentType sniffs whole files. Parts are opaque slices of an archive.
func contentType(path string) string {
	if partNamePattern.MatchString(path) {
		return string(mimetypes.OctetStream)
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return string(mimetypes.OctetStream)
	}
	return mime.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
