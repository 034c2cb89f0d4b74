// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/outcry/api/accounts"
	"github.com/meterio/outcry/api/auctions"
	"github.com/meterio/outcry/api/events"
	apinode "github.com/meterio/outcry/api/node"
	"github.com/meterio/outcry/api/subscriptions"
	"github.com/meterio/outcry/api/transactions"
	"github.com/meterio/outcry/api/transfers"
	"github.com/meterio/outcry/cmd/outcry/node"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New return api router
func New(n *node.Node, allowedOrigins string) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	b := n.Bridge()

	accounts.New(b).
		Mount(router, "/accounts")
	auctions.New(b).
		Mount(router, "/auctions")
	transactions.New(b).
		Mount(router, "/transactions")
	apinode.New(b).
		Mount(router, "/node")
	if logDB := n.LogDB(); logDB != nil {
		events.New(logDB).
			Mount(router, "/logs/events")
		transfers.New(logDB).
			Mount(router, "/logs/transfers")
	}
	subs := subscriptions.New(b, origins)
	subs.Mount(router, "/subscriptions")
	router.Path("/metrics").Methods("GET").Handler(promhttp.Handler())

	return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type"}))(router).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}
