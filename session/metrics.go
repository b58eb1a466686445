package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts session lifecycle outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Logins              *prometheus.CounterVec
	Refreshes           *prometheus.CounterVec
	Logouts             prometheus.Counter
	UnauthorizedRetries prometheus.Counter
}

// NewMetrics registers the session counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_logins_total",
			Help: "Login attempts by result (success, rejected, error).",
		}, []string{"result"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_refreshes_total",
			Help: "Access token refreshes by result (success, failed, missing).",
		}, []string{"result"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_logouts_total",
			Help: "Completed logouts, user initiated or forced.",
		}),
		UnauthorizedRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_unauthorized_retries_total",
			Help: "Requests that got a 401 and were retried after a refresh.",
		}),
	}
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) logout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

func (m *Metrics) unauthorizedRetry() {
	if m == nil {
		return
	}
	m.UnauthorizedRetries.Inc()
}
