package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.Result("repo", "created")
	r.Result("repo", "created")
	r.Result("database", "failed")
	r.Run(false, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.results.WithLabelValues("repo", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("database", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Result("repo", "created")
		r.Run(true, time.Second)
	})
}
