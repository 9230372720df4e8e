package telemetry

import (
	"net/http"

	"slotscout/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScrapesTotal counts finished scrape jobs by venue and outcome.
	ScrapesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slotscout",
		Name:      "scrapes_total",
		Help:      "Finished scrape jobs by venue key and outcome.",
	}, []string{"venue_key", "outcome"})

	// SlotsFound counts slots emitted per venue.
	SlotsFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slotscout",
		Name:      "slots_found_total",
		Help:      "Availability slots emitted by adapters.",
	}, []string{"venue_key"})

	// ScrapeDuration observes wall-clock seconds per scrape job.
	ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "slotscout",
		Name:      "scrape_duration_seconds",
		Help:      "Wall clock duration of scrape jobs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	}, []string{"venue_key"})

	// BrowserLeasesInUse tracks outstanding browser pool leases.
	BrowserLeasesInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "slotscout",
		Name:      "browser_leases_in_use",
		Help:      "Browser pool leases currently held.",
	})
)

// Serve exposes /metrics on its own listener so scrapes never contend
// with the public API.
func Serve(addr string) {
	log := logger.New("Telemetry")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.LogInfof("metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.LogErrorf("metrics server stopped: %v", err)
		}
	}()
}
