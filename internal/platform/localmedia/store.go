package localmedia

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yungbote/unibridge-backend/internal/platform/envutil"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type Config struct {
	// Root is the directory objects are written under.
	Root string
	// BaseURL prefixes public URLs, e.g. "/files" when the router serves Root there.
	BaseURL string
}

func ConfigFromEnv() Config {
	return Config{
		Root:    envutil.String("DOCUMENTS_LOCAL_DIR", "/tmp/unibridge-documents"),
		BaseURL: strings.TrimRight(envutil.String("DOCUMENTS_LOCAL_BASE_URL", "/files"), "/"),
	}
}

// DiskStore keeps application documents on the local filesystem. It is the fallback
// when no bucket is configured.
type DiskStore struct {
	log *logger.Logger
	cfg Config
}

func NewDiskStore(log *logger.Logger, cfg Config) (*DiskStore, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("local document root required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create document root: %w", err)
	}
	slog := log.With("service", "DiskStore")
	slog.Info("Local document storage initialized", "root", cfg.Root)
	return &DiskStore{log: slog, cfg: cfg}, nil
}

func (s *DiskStore) Root() string { return s.cfg.Root }

// pathFor maps key to a file under Root, rejecting keys that escape it.
func (s *DiskStore) pathFor(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.cfg.Root, filepath.FromSlash(clean)), nil
}

func (s *DiskStore) Upload(ctx context.Context, key string, _ string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		cleanup()
		return fmt.Errorf("publish object: %w", err)
	}
	return nil
}

// Delete removes key. A missing file is not an error.
func (s *DiskStore) Delete(_ context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *DiskStore) PublicURL(key string) string {
	return s.cfg.BaseURL + "/" + strings.TrimLeft(strings.TrimSpace(key), "/")
}
