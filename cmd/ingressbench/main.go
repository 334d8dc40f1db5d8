// ingressbench floods the banking stage ingress with signed transactions,
// discard-flagged packets and garbage, then reports throughput and the drop
// counters. It exercises the real pipeline end to end: route, accumulator,
// deserializer, admission filter.
package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/meraknet/merakd/domain/bankingstage"
	"github.com/meraknet/merakd/domain/bankingstage/model"
	"github.com/meraknet/merakd/domain/transaction/testutil"
	"github.com/meraknet/merakd/infrastructure/logger"
	"github.com/meraknet/merakd/infrastructure/network/ingress"
	"github.com/meraknet/merakd/util/panics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const routeCapacity = 4096

func main() {
	defer panics.HandlePanic(log, "ingressbench-main", nil)
	err := parseConfig()
	if err != nil {
		panic(errors.Wrap(err, "error in parseConfig"))
	}

	defer func() {
		if err := recover(); err != nil {
			log.Criticalf("ingressbench failed: %s", err)
			os.Exit(1)
		}
	}()

	if activeConfig().MetricsListen != "" {
		startMetricsServer(activeConfig().MetricsListen)
	}

	runBenchmark(activeConfig())
}

// startMetricsServer serves the ingress prometheus counters for scraping
// while the benchmark runs.
func startMetricsServer(listenAddress string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	spawn("metrics-server", func() {
		log.Infof("Serving metrics on %s", listenAddress)
		err := http.ListenAndServe(listenAddress, mux)
		if err != nil {
			log.Errorf("Metrics server stopped: %s", err)
		}
	})
}

func runBenchmark(cfg *configFlags) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "runBenchmark")
	defer onEnd()

	route := ingress.NewRouteWithCapacity("ingressbench", routeCapacity)
	duration := time.Duration(cfg.DurationSeconds) * time.Second
	deadline := time.Now().Add(duration)

	log.Infof("Starting %d producers for %s", cfg.Producers, duration)
	producersDone := &sync.WaitGroup{}
	for i := 0; i < cfg.Producers; i++ {
		producersDone.Add(1)
		producerIndex := i
		spawn(fmt.Sprintf("producer-%d", producerIndex), func() {
			defer producersDone.Done()
			produce(route, deadline, cfg, producerIndex)
		})
	}
	spawn("route-closer", func() {
		producersDone.Wait()
		route.Close()
	})

	deserializer := bankingstage.NewPacketDeserializer(route)
	packetFilter := bankingstage.NewDefaultPacketFilter(true)
	recvTimeout := time.Duration(cfg.RecvTimeoutMillis) * time.Millisecond

	totals := bankingstage.PacketReceiverStats{}
	acceptedCount := 0
	callCount := 0
	start := time.Now()
	for {
		results, err := deserializer.ReceivePackets(recvTimeout, cfg.PacketCapacity, packetFilter)
		if errors.Is(err, model.ErrRouteClosed) {
			break
		}
		if errors.Is(err, model.ErrReceiveTimeout) {
			continue
		}
		if err != nil {
			panic(errors.Wrap(err, "unexpected receive error"))
		}

		callCount++
		acceptedCount += len(results.DeserializedPackets)
		addStats(&totals, &results.PacketStats)
	}
	elapsed := time.Since(start)

	totalPackets := totals.PassedSigverifyCount + totals.FailedSigverifyCount
	log.Infof("Processed %d packets in %d calls over %s (%.0f packets/s)",
		totalPackets, callCount, elapsed, float64(totalPackets)/elapsed.Seconds())
	log.Infof("Accepted %d transactions", acceptedCount)
	log.Infof("Passed sigverify: %d, failed sigverify: %d", totals.PassedSigverifyCount,
		totals.FailedSigverifyCount)
	log.Infof("Dropped: %d sanitization, %d prioritization, %d votes, %d precompiles, %d compute limit",
		totals.FailedSanitizationCount, totals.FailedPrioritizationCount, totals.InvalidVoteCount,
		totals.ExcessivePrecompileCount, totals.InsufficientComputeLimitCount)
}

func addStats(totals, stats *bankingstage.PacketReceiverStats) {
	totals.PassedSigverifyCount += stats.PassedSigverifyCount
	totals.FailedSigverifyCount += stats.FailedSigverifyCount
	totals.FailedSanitizationCount += stats.FailedSanitizationCount
	totals.FailedPrioritizationCount += stats.FailedPrioritizationCount
	totals.InvalidVoteCount += stats.InvalidVoteCount
	totals.ExcessivePrecompileCount += stats.ExcessivePrecompileCount
	totals.InsufficientComputeLimitCount += stats.InsufficientComputeLimitCount
}

// produce enqueues single-batch deliveries of signed transactions, with the
// configured fractions of discard-flagged packets and garbage payloads, until
// the deadline.
func produce(route *ingress.Route, deadline time.Time, cfg *configFlags, producerIndex int) {
	payloads := buildPayloads(cfg.TransactionVariety)
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(producerIndex)))

	enqueued := 0
	for time.Now().Before(deadline) {
		packetBatch := make(model.PacketBatch, cfg.BatchSize)
		for i := range packetBatch {
			var packet *model.Packet
			if rng.Intn(100) < cfg.GarbagePercent {
				garbage := make([]byte, 1+rng.Intn(model.MaxPacketPayloadSize))
				rng.Read(garbage)
				packet = model.NewPacket(garbage)
			} else {
				packet = model.NewPacket(payloads[rng.Intn(len(payloads))])
			}
			if rng.Intn(100) < cfg.DiscardPercent {
				packet.Meta.Discard = true
			}
			packetBatch[i] = packet
		}

		err := route.Enqueue(model.Delivery{packetBatch})
		if errors.Is(err, model.ErrRouteClosed) {
			return
		}
		if errors.Is(err, ingress.ErrRouteCapacityReached) {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			panic(errors.Wrap(err, "unexpected enqueue error"))
		}
		enqueued++
	}
	log.Debugf("producer-%d enqueued %d deliveries", producerIndex, enqueued)
}

func buildPayloads(variety int) [][]byte {
	payloads := make([][]byte, 0, variety)
	for i := 0; i < variety; i++ {
		tx, err := testutil.NewSignedTransferTransaction(uint64(1000 + i))
		if err != nil {
			panic(errors.Wrap(err, "failed to build transaction"))
		}
		payload, err := tx.Serialize()
		if err != nil {
			panic(errors.Wrap(err, "failed to serialize transaction"))
		}
		payloads = append(payloads, payload)
	}
	return payloads
}
