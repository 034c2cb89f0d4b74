// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bridge

import "github.com/prometheus/client_golang/prometheus"

var (
	handoffCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_handoffs_total",
		Help: "Completed cross domain handoffs, by operation",
	}, []string{"op"})
	stuckCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bridge_stuck_total",
		Help: "Handoffs that left an account stuck",
	})
)

func init() {
	prometheus.MustRegister(handoffCounter)
	prometheus.MustRegister(stuckCounter)
}
