package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg), "registering twice is a noop")
}

func TestObserveSubmission(t *testing.T) {
	before := promtest.ToFloat64(submissionsTotal.WithLabelValues(OutcomeError))
	beforeOK := promtest.ToFloat64(submissionsTotal.WithLabelValues(OutcomeSuccess))

	ObserveSubmission(OutcomeSuccess)
	ObserveSubmission("bogus")

	assert.Equal(t, beforeOK+1, promtest.ToFloat64(submissionsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, before+1, promtest.ToFloat64(submissionsTotal.WithLabelValues(OutcomeError)))
}

func TestObserveStoreOperation(t *testing.T) {
	ObserveStoreOperation("csv", "append", 20*time.Millisecond, nil)
	ObserveStoreOperation("csv", "append", -time.Second, errors.New("disk full"))

	// one series per outcome
	assert.Equal(t, 2, promtest.CollectAndCount(storeOperationSeconds, "fdp_feedback_store_operation_seconds"))
}
