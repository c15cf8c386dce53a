package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PolicyDecisions counts access policy outcomes by policy and outcome.
	PolicyDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_policy_decisions_total",
		Help: "Access policy decisions by policy and outcome",
	}, []string{"policy", "outcome"})

	// CascadeRows counts rows removed by cascading deletes, by table.
	CascadeRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_cascade_deleted_rows_total",
		Help: "Rows removed by cascading deletes",
	}, []string{"table"})

	// HomeCacheLookups counts home page cache lookups by result (hit, miss, bypass).
	HomeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_home_cache_lookups_total",
		Help: "Home page cache lookups by result",
	}, []string{"result"})

	// EventsPublished counts forum events pushed to Redis by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_events_published_total",
		Help: "Forum events published by type",
	}, []string{"event"})
)

// RecordCascade adds the per-table counts of a cascading delete.
func RecordCascade(counts map[string]int64) {
	for table, n := range counts {
		if n > 0 {
			CascadeRows.WithLabelValues(table).Add(float64(n))
		}
	}
}
