package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// VoteMetrics tracks authorization engine outcomes. A nil *VoteMetrics is
// safe to use; recording becomes a no-op.
type VoteMetrics struct {
	Accepted prometheus.Counter
	Denied   *prometheus.CounterVec
}

// NewVoteMetrics registers and returns the vote counters.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventvote_votes_accepted_total",
			Help: "Total vote submissions admitted by the authorization engine.",
		}),
		Denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventvote_votes_denied_total",
			Help: "Total vote submissions denied, by denial reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.Accepted, m.Denied)
	return m
}

// RecordAccepted counts an admitted vote.
func (m *VoteMetrics) RecordAccepted() {
	if m == nil {
		return
	}
	m.Accepted.Inc()
}

// RecordDenied counts a denial under its taxonomy reason.
func (m *VoteMetrics) RecordDenied(reason string) {
	if m == nil {
		return
	}
	m.Denied.WithLabelValues(reason).Inc()
}
