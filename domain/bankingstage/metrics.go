package bankingstage

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusPassedSigverify          prometheus.Counter
	prometheusFailedSigverify          prometheus.Counter
	prometheusFailedSanitization       prometheus.Counter
	prometheusFailedPrioritization     prometheus.Counter
	prometheusInvalidVote              prometheus.Counter
	prometheusExcessivePrecompile      prometheus.Counter
	prometheusInsufficientComputeLimit prometheus.Counter
	prometheusAcceptedTransactions     prometheus.Counter
	prometheusReceivePacketCount       prometheus.Histogram
)

var prometheusMetricsInitOnce sync.Once

func init() {
	initPrometheusMetrics()
}

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	newIngressCounter := func(name, help string) prometheus.Counter {
		return promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "merakd",
			Subsystem: "ingress",
			Name:      name,
			Help:      help,
		})
	}

	prometheusPassedSigverify = newIngressCounter("passed_sigverify_total",
		"Packets not discard-flagged by the sigverify stage")
	prometheusFailedSigverify = newIngressCounter("failed_sigverify_total",
		"Packets discard-flagged by the sigverify stage")
	prometheusFailedSanitization = newIngressCounter("failed_sanitization_total",
		"Packets dropped due to deserialization or sanitization errors")
	prometheusFailedPrioritization = newIngressCounter("failed_prioritization_total",
		"Packets dropped due to fee or compute budget errors")
	prometheusInvalidVote = newIngressCounter("invalid_vote_total",
		"Vote packets dropped")
	prometheusExcessivePrecompile = newIngressCounter("excessive_precompile_total",
		"Packets dropped due to excessive precompile signatures")
	prometheusInsufficientComputeLimit = newIngressCounter("insufficient_compute_limit_total",
		"Packets dropped due to insufficient declared compute unit limits")
	prometheusAcceptedTransactions = newIngressCounter("accepted_transactions_total",
		"Packets accepted by the admission filter")

	prometheusReceivePacketCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "merakd",
		Subsystem: "ingress",
		Name:      "receive_packet_count",
		Help:      "Packets observed per ReceivePackets call",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	})
}

// reportReceiveMetrics mirrors one call's stats into the process-wide
// prometheus counters. The per-call stats remain the caller's source of
// truth; these exist for dashboards.
func reportReceiveMetrics(results *ReceivePacketResults) {
	stats := &results.PacketStats
	prometheusPassedSigverify.Add(float64(stats.PassedSigverifyCount))
	prometheusFailedSigverify.Add(float64(stats.FailedSigverifyCount))
	prometheusFailedSanitization.Add(float64(stats.FailedSanitizationCount))
	prometheusFailedPrioritization.Add(float64(stats.FailedPrioritizationCount))
	prometheusInvalidVote.Add(float64(stats.InvalidVoteCount))
	prometheusExcessivePrecompile.Add(float64(stats.ExcessivePrecompileCount))
	prometheusInsufficientComputeLimit.Add(float64(stats.InsufficientComputeLimitCount))
	prometheusAcceptedTransactions.Add(float64(len(results.DeserializedPackets)))
	prometheusReceivePacketCount.Observe(float64(stats.PassedSigverifyCount + stats.FailedSigverifyCount))
}
