// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/outcry/api/utils"
	"github.com/meterio/outcry/bridge"
)

type Node struct {
	bridge *bridge.Bridge
}

func New(bridge *bridge.Bridge) *Node {
	return &Node{
		bridge,
	}
}

func (n *Node) handleDomains(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, []*DomainStats{
		convertDomain(n.bridge.Base().Domain()),
		convertDomain(n.bridge.Ephemeral().Domain()),
	})
}

func (n *Node) handleValidator(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, map[string]string{"validator": n.bridge.ValidatorAddress().String()})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/domains").Methods("Get").HandlerFunc(utils.WrapHandlerFunc(n.handleDomains))
	sub.Path("/validator").Methods("Get").HandlerFunc(utils.WrapHandlerFunc(n.handleValidator))
}
