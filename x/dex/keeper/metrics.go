package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DEXMetrics holds all Prometheus metrics for the DEX module
type DEXMetrics struct {
	// Position metrics
	PositionsOpened  prometheus.Counter
	PositionsClosed  *prometheus.CounterVec
	PositionsEvicted prometheus.Counter

	// Batch swap metrics
	BatchSwapsTotal   prometheus.Counter
	BatchSwapInput    *prometheus.CounterVec
	BatchSwapLatency  prometheus.Histogram
	RouteIterations   prometheus.Histogram
	RouteHops         prometheus.Histogram
	ExecutionOverflow prometheus.Counter

	// Arbitrage metrics
	ArbitrageRuns   *prometheus.CounterVec
	ArbitrageBurned *prometheus.CounterVec

	// Value circuit breaker metrics
	ValueBalance        *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec

	// ABCI metrics
	EndBlockLatency prometheus.Histogram
}

var (
	dexMetricsOnce sync.Once
	dexMetrics     *DEXMetrics
)

// NewDEXMetrics creates and registers DEX metrics (singleton pattern)
func NewDEXMetrics() *DEXMetrics {
	dexMetricsOnce.Do(func() {
		dexMetrics = &DEXMetrics{
			PositionsOpened: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "positions_opened_total",
					Help:      "Total number of liquidity positions opened",
				},
			),
			PositionsClosed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "positions_closed_total",
					Help:      "Total number of liquidity positions closed",
				},
				[]string{"reason"},
			),
			PositionsEvicted: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "positions_evicted_total",
					Help:      "Total number of positions closed by the per-pair capacity bound",
				},
			),

			BatchSwapsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "batch_swaps_total",
					Help:      "Total number of trading pair batches settled",
				},
			),
			BatchSwapInput: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "batch_swap_input_total",
					Help:      "Approximate batch swap input in base units",
				},
				[]string{"asset_id"},
			),
			BatchSwapLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "batch_swap_latency_seconds",
					Help:      "Batch swap settlement latency per trading pair",
					Buckets:   prometheus.DefBuckets,
				},
			),
			RouteIterations: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "route_iterations",
					Help:      "Route-and-fill iterations per swap direction",
					Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
				},
			),
			RouteHops: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "route_hops",
					Help:      "Number of hops of each filled route",
					Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
				},
			),
			ExecutionOverflow: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "execution_overflow_total",
					Help:      "Positions closed because a fill would overflow their reserves",
				},
			),

			ArbitrageRuns: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "arbitrage_runs_total",
					Help:      "Arbitrage searches by outcome",
				},
				[]string{"outcome"},
			),
			ArbitrageBurned: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "arbitrage_burned_total",
					Help:      "Approximate arbitrage profit burned in base units",
				},
				[]string{"asset_id"},
			),

			ValueBalance: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "value_balance",
					Help:      "Approximate value circuit breaker balance per asset",
				},
				[]string{"asset_id"},
			),
			CircuitBreakerTrips: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "circuit_breaker_trips_total",
					Help:      "Value circuit breaker debits rejected for insufficient balance",
				},
				[]string{"asset_id"},
			),

			EndBlockLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "sdex",
					Subsystem: "dex",
					Name:      "end_block_latency_seconds",
					Help:      "DEX end block pipeline latency",
					Buckets:   prometheus.DefBuckets,
				},
			),
		}
	})
	return dexMetrics
}

// approxFloat converts an amount for gauges and counters. Precision loss
// above 2^53 is acceptable for monitoring.
func approxFloat(a math.Int) float64 {
	if a.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(a.BigInt()).Float64()
	return f
}

func approxFloat32(a math.Int) float32 {
	if a.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(a.BigInt()).Float32()
	return f
}
