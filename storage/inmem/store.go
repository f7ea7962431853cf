package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

const backend = core.BackendMemory

// Store keeps responses in process memory; it is lost on restart.
type Store struct {
	mutex sync.RWMutex
	table []feedback.Response
}

var _ feedback.Store = (*Store)(nil) // interface compliance check

func NewStore(seed ...feedback.Response) *Store {
	s := &Store{table: make([]feedback.Response, 0, len(seed))}
	for _, r := range seed {
		s.table = append(s.table, clone(r))
	}
	return s
}

func clone(r feedback.Response) feedback.Response {
	r.Ratings = append([]int(nil), r.Ratings...)
	return r
}

func (s *Store) Append(ctx context.Context, r feedback.Response) error {
	if err := ctx.Err(); err != nil {
		return core.NewStoreError(core.Unwritable, backend, err)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table = append(s.table, clone(r))
	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]feedback.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewStoreError(core.Unreadable, backend, err)
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	responses := make([]feedback.Response, 0, len(s.table))
	for _, r := range s.table {
		responses = append(responses, clone(r))
	}
	return responses, nil
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
