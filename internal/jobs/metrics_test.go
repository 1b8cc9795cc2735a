package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerAndEmailCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("mail:send").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("mail:send").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("mail:send")))

	m.CountEmail("test", "sent")
	m.CountEmail("", "skipped")
	require.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("test", "sent")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("unknown", "skipped")))

	var nilMetrics *Metrics
	require.NoError(t, nilMetrics.Track("noop").End(nil))
	nilMetrics.CountEmail("test", "sent")
}
