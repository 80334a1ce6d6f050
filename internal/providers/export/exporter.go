package export

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
)

// URLPrefix is the route that serves exported files
const URLPrefix = "/exports/"

// ErrNotExported is returned for names that were never exported
var ErrNotExported = errors.New("no such export")

// Download is an exported file ready to be served
type Download struct {
	Name        string
	Path        string
	ContentType string
	Size        int64
}

// Exporter writes saved client sources to a download directory
type Exporter struct {
	dir    string
	logger *logging.Logger
}

// New creates an exporter writing into dir
func New(dir string, logger *logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{dir: dir, logger: logger}
}

// Export writes content as name and returns its download URL
func (e *Exporter) Export(ctx context.Context, name, content string) (string, error) {
	if err := paths.ValidateName(name); err != nil {
		return "", fmt.Errorf("export %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	target := filepath.Join(e.dir, name)
	tmp, err := os.CreateTemp(e.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("export %s: %w", name, err)
	}

	e.logger.Info("Source exported", zap.String("name", name), zap.Int("bytes", len(content)))
	return URLPrefix + name, nil
}

// Lookup resolves an exported file for download
func (e *Exporter) Lookup(name string) (*Download, error) {
	if paths.ValidateName(name) != nil || strings.HasPrefix(name, ".") {
		return nil, ErrNotExported
	}

	target := filepath.Join(e.dir, name)
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExported
		}
		return nil, fmt.Errorf("stat export %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, ErrNotExported
	}

	return &Download{
		Name:        name,
		Path:        target,
		ContentType: contentType(target),
		Size:        info.Size(),
	}, nil
}

// contentType prefers the extension and falls back to content sniffing
func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
