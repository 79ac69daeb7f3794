// Package metrics provides Prometheus instrumentation for the bot.
package metrics

import (
	"net/http"

	"repbot/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset of instrumentation used by the service and bot
// layers. A no-op implementation is available for tests.
type Recorder interface {
	RecordCommand(command string)
	RecordMutation(action models.AuditAction)
	RecordAuditAppendFailure()
}

// Collector implements Recorder backed by Prometheus metrics.
type Collector struct {
	commands            *prometheus.CounterVec
	mutations           *prometheus.CounterVec
	auditAppendFailures prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repbot_commands_total",
			Help: "Number of chat commands handled, by command name",
		}, []string{"command"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repbot_mutations_total",
			Help: "Number of successful reputation mutations, by action",
		}, []string{"action"}),
		auditAppendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repbot_audit_append_failures_total",
			Help: "Number of audit log appends that failed after a committed mutation",
		}),
	}

	reg.MustRegister(
		c.commands,
		c.mutations,
		c.auditAppendFailures,
	)

	return c
}

// RecordCommand counts one handled chat command.
func (c *Collector) RecordCommand(command string) {
	c.commands.WithLabelValues(command).Inc()
}

// RecordMutation counts one successful mutating operation.
func (c *Collector) RecordMutation(action models.AuditAction) {
	c.mutations.WithLabelValues(string(action)).Inc()
}

// RecordAuditAppendFailure counts one lost audit entry.
func (c *Collector) RecordAuditAppendFailure() {
	c.auditAppendFailures.Inc()
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Noop is a Recorder that discards everything.
type Noop struct{}

func (Noop) RecordCommand(string)              {}
func (Noop) RecordMutation(models.AuditAction) {}
func (Noop) RecordAuditAppendFailure()         {}
