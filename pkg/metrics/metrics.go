// Package metrics records deployment metrics and pushes them to a Prometheus pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Job is the pushgateway job name of the deployment tooling.
const Job = "gasagency_deployments"

// Deployment results.
const (
	ResultSuccess  = "success"
	ResultFailed   = "failed"
	ResultTimeout  = "timeout"
	ResultRejected = "rejected"
)

// Metrics holds the deployment metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	deploymentsTotal   *prometheus.CounterVec
	deploymentDuration *prometheus.HistogramVec
	confirmations      *prometheus.GaugeVec
}

// New registers the deployment metrics on a new registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		deploymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gasagency_deployments_total",
				Help: "Total number of deployment attempts by network and result",
			},
			[]string{"network", "result"},
		),
		deploymentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gasagency_deployment_duration_seconds",
				Help:    "Time from submission to the required confirmation depth",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"network"},
		),
		confirmations: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gasagency_deployment_confirmations",
				Help: "Confirmation depth observed for the last deployment",
			},
			[]string{"network"},
		),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDeployment counts a deployment attempt on network. The duration is only recorded for
// attempts that reached the toolchain.
func (m *Metrics) ObserveDeployment(network, result string, elapsed time.Duration) {
	m.deploymentsTotal.WithLabelValues(network, result).Inc()

	if result != ResultRejected {
		m.deploymentDuration.WithLabelValues(network).Observe(elapsed.Seconds())
	}
}

// SetConfirmations records the confirmation depth of a successful deployment.
func (m *Metrics) SetConfirmations(network string, depth uint64) {
	m.confirmations.WithLabelValues(network).Set(float64(depth))
}

// Push pushes all metrics to the pushgateway at url, replacing the metrics of the same job and
// network grouping.
func (m *Metrics) Push(ctx context.Context, url, network string) error {
	err := push.New(url, Job).
		Gatherer(m.registry).
		Grouping("network", network).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}

	return nil
}
