// Package csvfile stores responses in a local CSV file using the persisted column layout.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

const backend = core.BackendCSV

type Store struct {
	path  string
	mutex sync.Mutex
}

var _ feedback.Store = (*Store)(nil) // interface compliance check

// Open returns a Store backed by the file at path, creating it (with its header row) if absent.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("csv path is required")
	}
	s := &Store{path: filepath.Clean(path)}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "creating csv file")
	}
	defer func() { _ = f.Close() }()

	buf, err := encode(feedback.Header)
	if err != nil {
		return nil, err
	}
	if _, err = f.Write(buf); err != nil {
		return nil, errors.Wrap(err, "writing csv header")
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func encode(rows ...[]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "encoding csv row")
	}
	return buf.Bytes(), nil
}

// Append writes the encoded row with a single write call and rolls the file back on failure.
// A file whose last row lacks its line break gets one first.
func (s *Store) Append(ctx context.Context, r feedback.Response) error {
	if err := ctx.Err(); err != nil {
		return core.NewStoreError(core.Unwritable, backend, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return core.NewStoreError(core.Unwritable, backend, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return core.NewStoreError(core.Unwritable, backend, err)
	}
	rows := [][]string{r.Row()}
	if fi.Size() == 0 {
		rows = append([][]string{feedback.Header}, rows...)
	}
	buf, err := encode(rows...)
	if err != nil {
		return core.NewStoreError(core.Unwritable, backend, err)
	}
	if fi.Size() > 0 {
		last := make([]byte, 1)
		if _, err = f.ReadAt(last, fi.Size()-1); err != nil {
			return core.NewStoreError(core.Unwritable, backend, err)
		}
		if last[0] != '\n' {
			buf = append([]byte("\n"), buf...)
		}
	}

	if _, err = f.Write(buf); err == nil {
		err = f.Sync()
	}
	if err != nil {
		_ = f.Truncate(fi.Size())
		return core.NewStoreError(core.Unwritable, backend, err)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]feedback.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewStoreError(core.Unreadable, backend, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []feedback.Response{}, nil
		}
		return nil, core.NewStoreError(core.Unreadable, backend, err)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // column count is checked per row
	rows, err := cr.ReadAll()
	if err != nil {
		var pErr *csv.ParseError
		if errors.As(err, &pErr) {
			return nil, core.NewSchemaMismatchError(pErr.StartLine, "%v", pErr.Err)
		}
		return nil, core.NewStoreError(core.Unreadable, backend, err)
	}
	return feedback.ParseRows(rows)
}
