package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// #region collectors
var (
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: EvaluationsN,
		Help: EvaluationsH,
	}, []string{"method"})
	EvaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    EvaluationSecondsN,
		Help:    EvaluationSecondsH,
		Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
	})
	InvalidOutputs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: InvalidOutputsN,
		Help: InvalidOutputsH,
	}, []string{"output"})
	RulesFired = promauto.NewGauge(prometheus.GaugeOpts{
		Name: RulesFiredN,
		Help: RulesFiredH,
	})
	RuleBaseSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: RuleBaseSwapsN,
		Help: RuleBaseSwapsH,
	})
	RuleBaseRejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: RuleBaseRejectsN,
		Help: RuleBaseRejectsH,
	})
	RuleBaseRules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: RuleBaseRulesN,
		Help: RuleBaseRulesH,
	})
	RPCEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: RPCEvaluationsN,
		Help: RPCEvaluationsH,
	}, []string{"code"})
	WatchReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: WatchReloadsN,
		Help: WatchReloadsH,
	}, []string{"result"})
)

// #endregion collectors

// #region handler
// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// #endregion handler
