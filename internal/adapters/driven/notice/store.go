package notice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.NoticeStore = (*Store)(nil)

// templateDay replaces the day of month in template filenames.
const templateDay = "xx"

// Store opens dated notices in one directory.
type Store struct {
	dir    string
	label  string
	format domain.NoticeFormat
}

// NewStore creates a store for the configured directory, label and format.
func NewStore(cfg domain.NoticeSettings) *Store {
	format := cfg.Format
	if format == "" {
		format = domain.NoticeFormatDocx
	}
	return &Store{dir: cfg.Dir, label: cfg.Label, format: format}
}

// DatedPath returns the notice file for day.
func (s *Store) DatedPath(day time.Time) string {
	return filepath.Join(s.dir, s.filename(day.Format("2006-01-02")))
}

// TemplatePath returns the monthly template the notice for day is seeded from.
func (s *Store) TemplatePath(day time.Time) string {
	return filepath.Join(s.dir, s.filename(day.Format("2006-01")+"-"+templateDay))
}

func (s *Store) filename(date string) string {
	name := date
	if label := strings.TrimSpace(s.label); label != "" {
		name += " " + label
	}
	return name + "." + s.format.String()
}

// Open returns the notice for day, seeding it from the monthly template
// when it does not exist yet.
func (s *Store) Open(ctx context.Context, day time.Time) (driven.NoticeDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.DatedPath(day)
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat notice: %w", err)
		}
		template := s.TemplatePath(day)
		if err := copyFile(template, path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: neither %s nor %s exists",
					domain.ErrLocalArtifactMissing, filepath.Base(path), filepath.Base(template))
			}
			return nil, fmt.Errorf("seed notice from template: %w", err)
		}
		logger.Info("created %s from %s", filepath.Base(path), filepath.Base(template))
	}

	return s.load(path)
}

func (s *Store) load(path string) (*Document, error) {
	var (
		ed    editor
		paras []string
		err   error
	)
	switch s.format {
	case domain.NoticeFormatDocx:
		ed, paras, err = loadDocx(path)
	case domain.NoticeFormatXlsx:
		ed, paras, err = loadXlsx(path)
	case domain.NoticeFormatText:
		ed, paras, err = loadText(path)
	default:
		return nil, fmt.Errorf("%w: notice format %q", domain.ErrInvalidInput, s.format)
	}
	if err != nil {
		return nil, fmt.Errorf("open notice %s: %w", filepath.Base(path), err)
	}
	return newDocument(path, ed, paras), nil
}

// copyFile copies src to a new file dst. It fails if dst already exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// writeAtomic replaces path with data through a temporary file.
func writeAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".notice-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
