package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

const reportPerm = 0o644

// MarkdownStore keeps one markdown report per category and day under a root folder:
// <root>/<category>/<YYYY>/<MM>/<DD>.md
type MarkdownStore struct {
	root string
}

var _ ports.ReportStore = (*MarkdownStore)(nil)

// NewMarkdownStore roots the store at folder.
func NewMarkdownStore(folder string) *MarkdownStore {
	return &MarkdownStore{root: folder}
}

// Path returns where the report of day lives.
func (s *MarkdownStore) Path(day domain.Day) string {
	return filepath.Join(
		s.root,
		day.Category.Name,
		day.Date.Format("2006"),
		day.Date.Format("01"),
		day.Date.Format("02")+".md",
	)
}

// Load reads the existing report. A missing file is not an error.
func (s *MarkdownStore) Load(ctx context.Context, day domain.Day) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	content, err := os.ReadFile(s.Path(day))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read report: %w", err)
	}
	return content, true, nil
}

// Save replaces the report atomically through a temp file and rename.
func (s *MarkdownStore) Save(ctx context.Context, day domain.Day, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := renameio.WriteFile(path, content, reportPerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
