// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"time"

	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	txCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runtime_txs_total",
		Help: "Transactions executed, by domain and result",
	}, []string{"domain", "result"})
	txDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "runtime_tx_duration_seconds",
		Help:    "Time to execute and commit a transaction",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"domain"})
	seqGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "runtime_seq",
		Help: "Last committed sequence of the domain",
	}, []string{"domain"})
)

func init() {
	prometheus.MustRegister(txCounter)
	prometheus.MustRegister(txDuration)
	prometheus.MustRegister(seqGauge)
}

func observeTx(kind xenv.DomainKind, receipt *tx.Receipt, err error, elapsed time.Duration) {
	result := "committed"
	switch {
	case receipt != nil && receipt.Reverted:
		result = "reverted"
	case err != nil:
		result = "rejected"
	}
	txCounter.WithLabelValues(kind.String(), result).Inc()
	txDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
	if err == nil && receipt != nil {
		seqGauge.WithLabelValues(kind.String()).Set(float64(receipt.Seq))
	}
}
