package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourbook_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// CampaignTransitions counts successful lifecycle transitions by target state
	CampaignTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_campaign_transitions_total",
			Help: "Campaign state transitions",
		},
		[]string{"to"},
	)

	// DeliveryOutcomes counts recorded per-recipient outcomes
	DeliveryOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_campaign_deliveries_total",
			Help: "Per-recipient delivery outcomes recorded on campaigns",
		},
		[]string{"outcome"},
	)

	// DroppedCallbacks counts delivery/read callbacks that could not be applied
	DroppedCallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_campaign_callbacks_dropped_total",
			Help: "Delivery or read callbacks dropped because they could not be applied",
		},
		[]string{"kind", "reason"},
	)

	// AudienceDroppedIDs counts explicit user ids missing from the population
	AudienceDroppedIDs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tourbook_audience_dropped_ids_total",
			Help: "Explicit user ids dropped during audience resolution",
		},
	)

	// ReprogrammingVerdicts counts rule engine outcomes
	ReprogrammingVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_reprogramming_verdicts_total",
			Help: "Reprogramming rule engine verdicts",
		},
		[]string{"allowed", "reason"},
	)

	// ReprogrammingRulesSkipped counts rules skipped because their configuration is malformed
	ReprogrammingRulesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_reprogramming_rules_skipped_total",
			Help: "Malformed reprogramming rules skipped during evaluation",
		},
		[]string{"kind"},
	)

	// SchedulerPromotions counts scheduler activation attempts
	SchedulerPromotions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_scheduler_promotions_total",
			Help: "Scheduled campaigns the scheduler attempted to activate",
		},
		[]string{"result"},
	)
)

var once sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			CampaignTransitions,
			DeliveryOutcomes,
			DroppedCallbacks,
			AudienceDroppedIDs,
			ReprogrammingVerdicts,
			ReprogrammingRulesSkipped,
			SchedulerPromotions,
		)
	})
}
