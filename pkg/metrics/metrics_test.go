package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveDeployment(t *testing.T) {
	t.Parallel()

	m := New()

	m.ObserveDeployment("mumbai", ResultSuccess, 30*time.Second)
	m.ObserveDeployment("mumbai", ResultTimeout, time.Minute)
	m.ObserveDeployment("goerli", ResultRejected, 0)
	m.SetConfirmations("mumbai", 6)

	assert.InDelta(t, 1, testutil.ToFloat64(m.deploymentsTotal.WithLabelValues("mumbai", ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.deploymentsTotal.WithLabelValues("mumbai", ResultTimeout)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.deploymentsTotal.WithLabelValues("goerli", ResultRejected)), 0)
	assert.InDelta(t, 6, testutil.ToFloat64(m.confirmations.WithLabelValues("mumbai")), 0)

	// Rejected attempts never reached the toolchain, so only mumbai has a duration.
	assert.Equal(t, 1, testutil.CollectAndCount(m.deploymentDuration))

	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP gasagency_deployment_confirmations Confirmation depth observed for the last deployment
# TYPE gasagency_deployment_confirmations gauge
gasagency_deployment_confirmations{network="mumbai"} 6
`), "gasagency_deployment_confirmations")
	require.NoError(t, err)
}

func TestMetrics_Push(t *testing.T) {
	t.Parallel()

	var (
		gotMethod string
		gotPath   string
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	m := New()
	m.ObserveDeployment("mumbai", ResultSuccess, time.Second)

	require.NoError(t, m.Push(t.Context(), srv.URL, "mumbai"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/gasagency_deployments/network/mumbai", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestMetrics_Push_Error(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	err := New().Push(t.Context(), srv.URL, "mumbai")
	require.ErrorContains(t, err, "failed to push metrics")
}
