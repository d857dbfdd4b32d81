// Package metrics exposes pipeline counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"call-insights-go/internal/logger"
)

var (
	DialoguesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callinsights_dialogues_generated_total",
		Help: "Synthetic dialogues generated.",
	})

	GenerationGaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callinsights_generation_gaps_total",
		Help: "Agent/client pairs excluded after generation failures.",
	})

	CallsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callinsights_calls_inserted_total",
		Help: "Call rows ingested into the store.",
	})

	StageCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "callinsights_stage_completed_total",
		Help: "Per-call stage completions.",
	}, []string{"stage"})

	StageFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "callinsights_stage_failed_total",
		Help: "Per-call stage failures.",
	}, []string{"stage"})
)

// Serve exposes /metrics on addr in the background.
func Serve(addr string) {
	log := logger.New().WithField("component", "metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.WithField("addr", addr).Info("metrics listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithField("error", err.Error()).Warn("metrics server stopped")
		}
	}()
}
