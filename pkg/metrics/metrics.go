package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "feed_fetches_total", Help: "Feed fetches by category and result."},
		[]string{"category", "result"},
	)
	ArticlesDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "articles_discarded_total", Help: "Articles dropped for missing title, date or URL."},
	)
	StoriesIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "stories_ingested_total", Help: "New stories merged into the global pool."},
	)
	PoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "newswatcher", Name: "global_pool_stories", Help: "Stories currently in the global pool."},
	)
	PopulationPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "population_passes_total", Help: "Population passes by result."},
		[]string{"result"},
	)
	SubscriberRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "subscriber_refreshes_total", Help: "Subscriber refreshes by trigger and result."},
		[]string{"trigger", "result"},
	)
	StoriesMatched = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "stories_matched_total", Help: "Stories appended to subscriber filters."},
	)
	TriggersReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "triggers_received_total", Help: "Inbound trigger messages by command."},
		[]string{"command"},
	)
	OpsRequestsThrottled = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "newswatcher", Name: "ops_requests_throttled_total", Help: "Ops endpoint requests rejected by the rate limiter."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(FeedFetches)
	reg.MustRegister(ArticlesDiscarded)
	reg.MustRegister(StoriesIngested)
	reg.MustRegister(PoolSize)
	reg.MustRegister(PopulationPasses)
	reg.MustRegister(SubscriberRefreshes)
	reg.MustRegister(StoriesMatched)
	reg.MustRegister(TriggersReceived)
	reg.MustRegister(OpsRequestsThrottled)
}
