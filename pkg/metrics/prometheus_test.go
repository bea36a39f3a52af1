package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

func TestMetricsHandler(t *testing.T) {
	m := metrics.NewMetrics("backoffice", nil)
	m.BookingsCreated.Inc()
	m.ToursWritten.WithLabelValues("create").Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToursWritten.WithLabelValues("create")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "backoffice_bookings_created_total 1")
}

func TestNewMetricsTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.NewMetrics("backoffice", nil)
		metrics.NewMetrics("backoffice", nil)
	})
}
