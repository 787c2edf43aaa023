package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_AcceptsAllObservations(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("success")
	r.IncNodeWritten("page")
}

func TestPrometheusRecorder_CountsNodeWrites(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncNodeWritten("page")
	r.IncNodeWritten("page")
	r.IncNodeWritten("resource")

	require.Equal(t, float64(2), testutil.ToFloat64(r.nodesWritten.WithLabelValues("page")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.nodesWritten.WithLabelValues("resource")))
}

func TestPrometheusRecorder_CountsBuildOutcomes(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncBuildOutcome("success")
	r.ObserveBuildDuration(250 * time.Millisecond)

	require.Equal(t, float64(1), testutil.ToFloat64(r.buildOutcome.WithLabelValues("success")))

	count, err := testutil.GatherAndCount(reg,
		"sitegen_build_duration_seconds", "sitegen_build_outcomes_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
