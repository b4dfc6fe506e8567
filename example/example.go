package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/hotsim"
	"github.com/samber/hotsim/pkg/trace"
)

func main() {
	// Generate a skewed workload: 100k requests over 10k keys
	t, err := trace.NewZipf(10_000, 1.2, 42)(1_000, 100_000)
	if err != nil {
		log.Fatalf("Failed to generate trace: %v", err)
	}

	// Replay it against every algorithm, with Prometheus metrics enabled
	simulator, err := hotsim.NewSimulator[int, int](t.Capacity).
		WithPrometheusMetrics("zipf").
		WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))).
		Build()
	if err != nil {
		log.Fatalf("Failed to build simulator: %v", err)
	}

	// Register the simulator metrics with Prometheus
	err = prometheus.Register(simulator)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}
	defer prometheus.Unregister(simulator)

	results, err := simulator.Run(context.Background(), t.Requests())
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	for _, r := range results {
		fmt.Printf("%-14s hits=%-6d ratio=%.3f\n", r.Algorithm, r.Hits, r.HitRatio())
	}

	// Set up HTTP server to expose metrics
	http.Handle("/metrics", promhttp.Handler())

	fmt.Println("Starting server on :8080")
	fmt.Println("Metrics available at http://localhost:8080/metrics")

	log.Fatal(http.ListenAndServe(":8080", nil)) //nolint:gosec
}
