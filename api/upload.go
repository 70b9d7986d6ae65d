package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/models"
)

// allowed document types: extension and sniffed content type must both pass
var allowedExtensions = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/zip", "application/octet-stream"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip", "application/octet-stream"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
}

var errFileTooLarge = errors.New("file exceeds maximum allowed size")

func validateUpload(header *multipart.FileHeader, sniffed string) error {
	if header.Size > app.Config.Uploads.MaxSizeBytes {
		return fmt.Errorf("%w: %d bytes", errFileTooLarge, header.Size)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed, ok := allowedExtensions[ext]
	if !ok {
		return fmt.Errorf("file type %q is not allowed", ext)
	}
	for _, contentType := range allowed {
		if strings.HasPrefix(sniffed, contentType) {
			return nil
		}
	}
	return fmt.Errorf("file content does not match its %q extension", ext)
}

// saveUpload stores one uploaded document under a random name and returns its
// metadata. The original filename is kept for display only and never used on
// disk.
func saveUpload(header *multipart.FileHeader) (models.ApplicationDocument, error) {
	var doc models.ApplicationDocument

	file, err := header.Open()
	if err != nil {
		return doc, err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return doc, err
	}
	sniffed := http.DetectContentType(head[:n])
	if err := validateUpload(header, sniffed); err != nil {
		return doc, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return doc, err
	}

	if err := os.MkdirAll(app.Config.Uploads.Dir, 0o755); err != nil {
		return doc, err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	fileName := uuid.New().String() + ext
	path := filepath.Join(app.Config.Uploads.Dir, fileName)

	out, err := os.Create(path)
	if err != nil {
		return doc, err
	}
	defer out.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, hasher), file)
	if err != nil {
		os.Remove(path)
		return doc, err
	}

	doc = models.ApplicationDocument{
		FileName:     fileName,
		OriginalName: filepath.Base(header.Filename),
		ContentHash:  hex.EncodeToString(hasher.Sum(nil)),
		Size:         size,
	}
	return doc, nil
}

// removeUploads best-effort deletes stored files after a failed submission.
func removeUploads(docs []models.ApplicationDocument) {
	for _, doc := range docs {
		os.Remove(filepath.Join(app.Config.Uploads.Dir, doc.FileName))
	}
}
