package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Store errors
var (
	ErrNotEmpty    = errors.New("directory is not empty")
	ErrIsDirectory = errors.New("path is a directory")
	ErrNotDir      = errors.New("parent is not a directory")
)

type row struct {
	path     string
	name     string
	typ      string
	content  []byte
	encoding string
	updated  int64
}

func (s *Store) toEntry(r row, withContent bool) (types.Entry, error) {
	e := types.Entry{
		Path:      r.path,
		Name:      r.name,
		Type:      types.EntryType(r.typ),
		Timestamp: time.UnixMilli(r.updated),
	}
	if withContent && e.Type == types.EntryFile {
		data, err := s.codec.decode(r.content, r.encoding)
		if err != nil {
			return types.Entry{}, fmt.Errorf("%s: %w", r.path, err)
		}
		text := string(data)
		e.Content = &text
	}
	return e, nil
}

func notFound(path string) error {
	return fmt.Errorf("%w: %s", types.ErrNotFound, path)
}

// List returns the direct children of dir without their content
func (s *Store) List(ctx context.Context, dir string) ([]types.Entry, error) {
	dir = paths.AsDir(dir)
	if dir != paths.Root {
		if _, err := s.lookup(ctx, s.db, dir); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, name, type, updated_at FROM entries WHERE parent = ? ORDER BY path`, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	defer rows.Close()

	entries := []types.Entry{}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.path, &r.name, &r.typ, &r.updated); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e, _ := s.toEntry(r, false)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) lookup(ctx context.Context, q querier, path string) (row, error) {
	var r row
	err := q.QueryRowContext(ctx,
		`SELECT path, name, type, content, encoding, updated_at FROM entries WHERE path = ?`, path).
		Scan(&r.path, &r.name, &r.typ, &r.content, &r.encoding, &r.updated)
	if errors.Is(err, sql.ErrNoRows) {
		return row{}, notFound(path)
	}
	if err != nil {
		return row{}, fmt.Errorf("get %s: %w", path, err)
	}
	return r, nil
}

// Get returns the entry at path with its content
func (s *Store) Get(ctx context.Context, path string) (*types.Entry, error) {
	r, err := s.lookup(ctx, s.db, path)
	if err != nil && !paths.IsDir(path) && errors.Is(err, types.ErrNotFound) {
		// a directory may be addressed without its trailing slash
		if dr, derr := s.lookup(ctx, s.db, paths.AsDir(path)); derr == nil {
			r, err = dr, nil
		}
	}
	if err != nil {
		return nil, err
	}
	e, err := s.toEntry(r, true)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Put writes content to the file at path, creating missing parent directories
func (s *Store) Put(ctx context.Context, path, content string) (*types.Entry, error) {
	if path == "" || paths.IsDir(path) {
		return nil, fmt.Errorf("put %s: %w", path, ErrIsDirectory)
	}
	now := s.now()

	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		if r, err := s.lookup(ctx, tx, paths.AsDir(path)); err == nil && r.typ == string(types.EntryDirectory) {
			return fmt.Errorf("put %s: %w", path, ErrIsDirectory)
		}
		if err := s.ensureDirs(ctx, tx, paths.Dir(path), now); err != nil {
			return err
		}
		return s.upsertFile(ctx, tx, path, []byte(content), "", now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Entry written", zap.String("path", path), zap.Int("bytes", len(content)))
	return &types.Entry{
		Path:      path,
		Name:      paths.Base(path),
		Type:      types.EntryFile,
		Content:   &content,
		Timestamp: time.UnixMilli(now.UnixMilli()),
	}, nil
}

func (s *Store) upsertFile(ctx context.Context, tx *sql.Tx, path string, content []byte, encoding string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entries (path, parent, name, type, content, encoding, updated_at)
		VALUES (?, ?, ?, 'file', ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content = excluded.content,
			encoding = excluded.encoding,
			updated_at = excluded.updated_at`,
		path, paths.Dir(path), paths.Base(path), content, encoding, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EnsureDirectory creates dir and its ancestors; existing directories are left alone
func (s *Store) EnsureDirectory(ctx context.Context, dir string) error {
	dir = paths.AsDir(dir)
	now := s.now()
	return s.withRetry(ctx, func(tx *sql.Tx) error {
		return s.ensureDirs(ctx, tx, dir, now)
	})
}

func (s *Store) ensureDirs(ctx context.Context, tx *sql.Tx, dir string, now time.Time) error {
	if dir == paths.Root {
		return nil
	}
	if err := s.ensureDirs(ctx, tx, paths.Dir(dir), now); err != nil {
		return err
	}

	r, err := s.lookup(ctx, tx, strings.TrimSuffix(dir, "/"))
	if err == nil && r.typ == string(types.EntryFile) {
		return fmt.Errorf("create %s: %w", dir, ErrNotDir)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (path, parent, name, type, content, encoding, updated_at)
		VALUES (?, ?, ?, 'directory', NULL, '', ?)
		ON CONFLICT(path) DO NOTHING`,
		dir, paths.Dir(dir), paths.Base(dir), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// Delete removes the entry at path. Files outside the backup directory are
// copied into it first; directories must be empty.
func (s *Store) Delete(ctx context.Context, path string) error {
	now := s.now()
	var backup string

	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		r, err := s.lookup(ctx, tx, path)
		if err != nil {
			return err
		}

		if r.typ == string(types.EntryDirectory) {
			var children int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM entries WHERE parent = ?`, path).Scan(&children); err != nil {
				return fmt.Errorf("count children of %s: %w", path, err)
			}
			if children > 0 {
				return fmt.Errorf("delete %s: %w", path, ErrNotEmpty)
			}
		} else if paths.Dir(path) != paths.Backup {
			backup, err = s.backup(ctx, tx, r, now)
			if err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE path = ?`, path); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Entry deleted", zap.String("path", path), zap.String("backup", backup))
	return nil
}

func (s *Store) backup(ctx context.Context, tx *sql.Tx, r row, now time.Time) (string, error) {
	data, err := s.codec.decode(r.content, r.encoding)
	if err != nil {
		return "", err
	}
	if err := s.ensureDirs(ctx, tx, paths.Backup, now); err != nil {
		return "", err
	}

	target := paths.Join(paths.Backup, BackupName(r.name, now))
	content, encoding := s.codec.encode(data, s.opts.CompressAbove)
	if err := s.upsertFile(ctx, tx, target, content, encoding, now); err != nil {
		return "", err
	}
	return target, nil
}

// BackupName derives the name of the backup copy of name taken at t
func BackupName(name string, t time.Time) string {
	stamp := t.UTC().Format("20060102T150405.000Z")
	stamp = strings.Replace(stamp, ".", "", 1)
	ext := paths.Ext(name)
	stem := strings.TrimSuffix(name, name[len(name)-len(ext):])
	return stem + "_" + stamp + ext
}

// Glob returns the entries whose path matches pattern.
// Patterns use doublestar syntax, for example "/agents/*.json" or "/**/*.md".
func (s *Store) Glob(ctx context.Context, pattern string) ([]types.Entry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, name, type, updated_at FROM entries ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	defer rows.Close()

	matches := []types.Entry{}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.path, &r.name, &r.typ, &r.updated); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		candidate := strings.TrimSuffix(r.path, "/")
		ok, err := doublestar.Match(pattern, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			e, _ := s.toEntry(r, false)
			matches = append(matches, e)
		}
	}
	return matches, rows.Err()
}
