// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/meterio/outcry/api/utils"
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/runtime"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

type Transactions struct {
	bridge *bridge.Bridge
}

func New(bridge *bridge.Bridge) *Transactions {
	return &Transactions{
		bridge,
	}
}

// statusOf maps an execution error to the http status reported alongside the receipt.
func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, runtime.ErrDomainUnavailable), errors.Is(err, bridge.ErrDelegationStuck):
		return http.StatusServiceUnavailable
	case errors.Is(err, runtime.ErrKnownTx), errors.Is(err, runtime.ErrUndeclaredWrite):
		return http.StatusConflict
	case errors.Is(err, runtime.ErrDomainMismatch),
		errors.Is(err, bridge.ErrNothingToResume),
		errors.Is(err, runtime.ErrExpired),
		errors.Is(err, runtime.ErrNoClause),
		errors.Is(err, runtime.ErrTxTooLarge),
		errors.Is(err, runtime.ErrBadSignature),
		errors.Is(err, bridge.ErrUnknownDomain):
		return http.StatusBadRequest
	}
	switch outcry.ClassOf(err) {
	case outcry.ClassPrecondition, outcry.ClassOverflow:
		return http.StatusBadRequest
	case outcry.ClassCapacity:
		return http.StatusConflict
	case outcry.ClassOwnership:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var rawTx RawTx
	if err := utils.ParseJSON(req.Body, &rawTx); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	data, err := hexutil.Decode(rawTx.Raw)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	trx, err := tx.Decode(data)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	if d := req.URL.Query().Get("domain"); d != "" {
		kind, err := xenv.ParseDomainKind(d)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "domain"))
		}
		if byte(kind) != trx.DomainTag() {
			return utils.BadRequest(errors.WithMessage(runtime.ErrDomainMismatch, "domain"))
		}
	}

	receipt, err := t.bridge.Submit(req.Context(), trx)
	if receipt == nil {
		if err == nil {
			return errors.New("no receipt")
		}
		return utils.HTTPError(err, statusOf(err))
	}
	r := convertReceipt(receipt)
	if err != nil {
		r.Error = err.Error()
		r.Class = outcry.ClassOf(err).String()
	}
	return utils.WriteJSONWithStatus(w, statusOf(err), r)
}

func (t *Transactions) handleGetTransactionReceiptByID(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	txID, err := meter.ParseBytes32(id)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	kind, err := xenv.ParseDomainKind(req.URL.Query().Get("domain"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "domain"))
	}
	rt, err := t.bridge.Runtime(kind)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "domain"))
	}
	receipt, err := rt.GetReceipt(txID)
	if err != nil {
		if rt.IsNotFound(err) {
			return utils.WriteJSON(w, nil)
		}
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (t *Transactions) handleResumeUndelegation(w http.ResponseWriter, req *http.Request) error {
	txID, err := meter.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	if err := t.bridge.ResumeUndelegation(req.Context(), txID); err != nil {
		return utils.HTTPError(err, statusOf(err))
	}
	return utils.WriteJSON(w, nil)
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/{id}/resume").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleResumeUndelegation))
	sub.Path("/{id}/receipt").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionReceiptByID))
}
