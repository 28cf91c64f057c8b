package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/config"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/logger"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// Store keeps uploaded files on local disk under a single uploads
// directory. Stored paths are relative and served under /uploads/.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(cfg config.StorageConfig, logg *logger.Logger) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadsDir)
	if dir == "" {
		return nil, errors.New("uploads directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}

	if logg != nil {
		logg.Info(context.Background(), "local storage initialized")
	}

	return &Store{
		dir:      dir,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
	}, nil
}

// Dir returns the uploads directory for static file serving.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Save writes the upload to disk and returns the relative stored path.
// The original filename only contributes its extension; stored names are
// generated so callers cannot control paths.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if s == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "storage not configured")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type").
			WithDetails(map[string]string{"extension": ext})
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload file")
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file exceeds maximum upload size")
	}

	select {
	case <-ctx.Done():
		_ = os.Remove(path)
		return "", ctx.Err()
	default:
	}

	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(storedPath string) error {
	if s == nil {
		return nil
	}
	name := filepath.Base(storedPath)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove upload file")
	}
	return nil
}
