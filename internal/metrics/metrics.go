// Package metrics holds the prometheus collectors for lead fetches and for
// the local fixture server.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeHTTP      = "http_error"
	OutcomeTransport = "transport_error"
)

// Fetch is the client side: one observation per lead list request.
type Fetch struct {
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetched       prometheus.Gauge
}

// NewFetch registers the fetch collectors on reg.
func NewFetch(reg prometheus.Registerer) *Fetch {
	f := promauto.With(reg)
	return &Fetch{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_fetch_total",
			Help: "Lead list fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "leads_fetch_duration_seconds",
			Help:    "Time spent fetching the lead list.",
			Buckets: prometheus.DefBuckets,
		}),
		fetched: f.NewGauge(prometheus.GaugeOpts{
			Name: "leads_fetched",
			Help: "Number of leads in the last successful fetch.",
		}),
	}
}

// ObserveFetch records one fetch. n is only used when outcome is OutcomeOK.
func (m *Fetch) ObserveFetch(outcome string, took time.Duration, n int) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(took.Seconds())
	if outcome == OutcomeOK {
		m.fetched.Set(float64(n))
	}
}

// Serve is the fixture server side.
type Serve struct {
	served *prometheus.CounterVec
}

// NewServe registers the fixture server collectors on reg.
func NewServe(reg prometheus.Registerer) *Serve {
	return &Serve{
		served: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "leads_fixture_requests_total",
			Help: "Requests answered by the fixture server, by status.",
		}, []string{"status"}),
	}
}

// ObserveServe records one fixture server response.
func (m *Serve) ObserveServe(status int) {
	if m == nil {
		return
	}
	m.served.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Write dumps everything in g in the text exposition format. The CLI has
// no scrape endpoint, so this is how its counters leave the process.
func Write(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
