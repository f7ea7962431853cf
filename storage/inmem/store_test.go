package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/tests"
)

var t0 = time.Date(2024, 12, 5, 10, 30, 0, 0, feedback.IST)

func TestStore(t *testing.T) {
	seed := testutil.NewResponse("Asha", t0, 4)
	s := NewStore(seed)
	assert.Equal(t, 1, s.Len())

	r := testutil.CreateResponse(t, s, "Ravi", t0.Add(time.Minute), 2)
	responses, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.True(t, responses[0].Equal(seed))
	assert.True(t, responses[1].Equal(r))

	// rows are copies
	responses[0].Ratings[0] = 1
	responses, err = s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, responses[0].Ratings[0])
}

func TestStore_canceled(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Append(ctx, testutil.NewResponse("Asha", t0, 4))
	assert.True(t, core.IsStoreError(err, core.Unwritable))
	assert.Equal(t, 0, s.Len())

	_, err = s.ReadAll(ctx)
	assert.True(t, core.IsStoreError(err, core.Unreadable))
}

func TestStore_concurrentAppends(t *testing.T) {
	s := NewStore()
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_ = s.Append(context.Background(), testutil.NewResponse("r", t0.Add(time.Duration(i)*time.Second), 3))
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	assert.Equal(t, 20, s.Len())
}
