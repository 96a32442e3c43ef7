package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload constraints for proposal attachments.
const (
	MaxFileSize     = 4 << 20 // 4MB
	AllowedMimeType = "application/pdf"
	fileExtension   = ".pdf"
)

// FileStore writes proposal attachments to a local directory under
// generated UUID names, so uploaded filenames never reach the filesystem.
type FileStore struct {
	dir string
}

// NewFileStore creates the store and its backing directory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveUpload streams a multipart upload into the store and returns the
// stored path relative to the store root.
func (fs *FileStore) SaveUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return fs.Save(src)
}

// Save streams content into a new file and returns its stored path.
func (fs *FileStore) Save(src io.Reader) (string, error) {
	name := uuid.NewString() + fileExtension
	dst, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}

	return name, nil
}

// AbsPath resolves a stored path to an absolute filesystem path,
// rejecting anything that escapes the store root.
func (fs *FileStore) AbsPath(storedPath string) (string, error) {
	cleaned := filepath.Clean(storedPath)
	if cleaned != filepath.Base(cleaned) || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("invalid stored path")
	}
	return filepath.Join(fs.dir, cleaned), nil
}

// Exists reports whether a stored file is present.
func (fs *FileStore) Exists(storedPath string) bool {
	path, err := fs.AbsPath(storedPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Remove deletes a stored file. A missing file is not an error; removal
// runs on delete/replace paths where the row may outlive the file.
func (fs *FileStore) Remove(storedPath string) error {
	path, err := fs.AbsPath(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// ValidUpload checks the PDF-only and size constraints for an upload.
func ValidUpload(file *multipart.FileHeader) error {
	if file.Size > MaxFileSize {
		return fmt.Errorf("file exceeds %d bytes", MaxFileSize)
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), fileExtension) {
		return fmt.Errorf("only PDF files are accepted")
	}

	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.EqualFold(ct, AllowedMimeType) {
		return fmt.Errorf("only PDF files are accepted")
	}

	return nil
}
