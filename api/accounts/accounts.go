// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/outcry/api/utils"
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/state"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

type Accounts struct {
	bridge *bridge.Bridge
}

func New(bridge *bridge.Bridge) *Accounts {
	return &Accounts{
		bridge,
	}
}

func (a *Accounts) handleDomain(req *http.Request) (xenv.DomainKind, *state.State, error) {
	kind, err := xenv.ParseDomainKind(req.URL.Query().Get("domain"))
	if err != nil {
		return 0, nil, utils.BadRequest(errors.WithMessage(err, "domain"))
	}
	rt, err := a.bridge.Runtime(kind)
	if err != nil {
		return 0, nil, utils.BadRequest(errors.WithMessage(err, "domain"))
	}
	return kind, rt.Domain().NewState(), nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	kind, st, err := a.handleDomain(req)
	if err != nil {
		return err
	}
	acc := st.GetAccount(addr)
	if err := st.Err(); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{
		Domain:   kind.String(),
		Lamports: math.HexOrDecimal64(acc.Lamports),
		Owner:    acc.Owner,
		HasData:  len(acc.Data) != 0,
	})
}

func (a *Accounts) handleGetData(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	_, st, err := a.handleDomain(req)
	if err != nil {
		return err
	}
	data := st.GetData(addr)
	if err := st.Err(); err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]string{"data": hexutil.Encode(data)})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/data").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetData))
}
