package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campgw_validations_total",
			Help: "Campaign safety validations by verdict",
		},
		[]string{"verdict"}, // safe|unsafe|error
	)

	PausesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campgw_campaign_pauses_total",
			Help: "Campaign pauses by trigger",
		},
		[]string{"trigger"}, // manual|health|quota|degradation
	)

	QuotaResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campgw_quota_resets_total",
			Help: "Daily quota window resets",
		},
	)

	UpstreamHealthFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campgw_upstream_health_fetches_total",
			Help: "Upstream health fetches by outcome",
		},
		[]string{"outcome"}, // ok|error
	)

	EventsRelayedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campgw_events_relayed_total",
			Help: "Outbox events relayed to Kafka by outcome",
		},
		[]string{"outcome"}, // ok|error
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		ValidationsTotal,
		PausesTotal,
		QuotaResetsTotal,
		UpstreamHealthFetchesTotal,
		EventsRelayedTotal,
	)
}
