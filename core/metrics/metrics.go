// Package metrics holds the Prometheus collectors shared by the bot host,
// the controllers and the HTTP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "planpicker"

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Updates       *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	Swipes        *prometheus.CounterVec
	Selections    *prometheus.CounterVec
	Commits       *prometheus.CounterVec
	ProxyRequests *prometheus.CounterVec
}

// New builds and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_updates_total",
			Help:      "Telegram updates received, by kind.",
		}, []string{"kind"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration flow runs, by terminal outcome.",
		}, []string{"outcome"}),
		Swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carousel_swipes_total",
			Help:      "Completed swipe gestures, by direction and result.",
		}, []string{"direction", "result"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_selections_total",
			Help:      "Plans chosen on the subscription screen.",
		}, []string{"plan"}),
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_commits_total",
			Help:      "Confirm button presses, by plan.",
		}, []string{"plan"}),
		ProxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_proxy_requests_total",
			Help:      "Requests forwarded to the backend, by status class.",
		}, []string{"code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Updates,
		m.Registrations,
		m.Swipes,
		m.Selections,
		m.Commits,
		m.ProxyRequests,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// The helpers below are nil-safe so components can run without metrics wired.

// IncUpdate counts a received Telegram update.
func (m *Metrics) IncUpdate(kind string) {
	if m != nil {
		m.Updates.WithLabelValues(kind).Inc()
	}
}

// IncRegistration counts a finished registration run.
func (m *Metrics) IncRegistration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

// IncSwipe counts a completed swipe; result is "moved", "bounced" or "ignored".
func (m *Metrics) IncSwipe(direction, result string) {
	if m != nil {
		m.Swipes.WithLabelValues(direction, result).Inc()
	}
}

// IncSelection counts a chosen plan.
func (m *Metrics) IncSelection(plan string) {
	if m != nil {
		m.Selections.WithLabelValues(plan).Inc()
	}
}

// IncCommit counts a confirm press.
func (m *Metrics) IncCommit(plan string) {
	if m != nil {
		m.Commits.WithLabelValues(plan).Inc()
	}
}

// IncProxy counts a forwarded API request.
func (m *Metrics) IncProxy(code string) {
	if m != nil {
		m.ProxyRequests.WithLabelValues(code).Inc()
	}
}
