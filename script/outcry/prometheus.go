// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	opsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outcry_ops_total",
		Help: "Outcry instructions handled, by opcode and result",
	}, []string{"op", "result"})
	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outcry_op_duration_seconds",
		Help:    "Time spent in outcry handlers",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	}, []string{"op"})
	depositedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outcry_deposited_lamports_total",
		Help: "Lamports escrowed into auction vaults",
	})
	refundedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outcry_refunded_lamports_total",
		Help: "Lamports refunded out of auction vaults, by path",
	}, []string{"path"})
)

func init() {
	prometheus.MustRegister(opsCounter)
	prometheus.MustRegister(opDuration)
	prometheus.MustRegister(depositedCounter)
	prometheus.MustRegister(refundedCounter)
}

func observeOp(op uint32, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = ClassOf(err).String()
	}
	opsCounter.WithLabelValues(GetOpName(op), result).Inc()
	opDuration.WithLabelValues(GetOpName(op)).Observe(elapsed.Seconds())
}
