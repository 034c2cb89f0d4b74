// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/outcry/api/utils"
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/state"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

var errAuctionNotFound = errors.New("auction not found")

type Auctions struct {
	bridge *bridge.Bridge
}

func New(bridge *bridge.Bridge) *Auctions {
	return &Auctions{
		bridge,
	}
}

// live returns the state of the domain holding the latest record of addr.
// A stuck record is served from base.
func (a *Auctions) live(addr meter.Address) (xenv.DomainKind, bridge.Status, *state.State) {
	status := a.bridge.DelegationStatus(addr)
	if status == bridge.Delegated {
		return xenv.Ephemeral, status, a.bridge.Ephemeral().Domain().NewState()
	}
	return xenv.Base, status, a.bridge.Base().Domain().NewState()
}

func (a *Auctions) getAuction(addr meter.Address) (*Auction, error) {
	kind, status, st := a.live(addr)
	record, err := outcry.GetAuction(st, addr)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	// the vault never leaves base
	base := a.bridge.Base().Domain().NewState()
	vaultAddr, _, err := outcry.VaultAddress(addr)
	if err != nil {
		return nil, err
	}
	view := &Auction{
		Address:    addr,
		Source:     kind.String(),
		Delegation: status,
		Record:     record,
		Vault: Vault{
			Address:  vaultAddr,
			Lamports: base.GetLamports(vaultAddr),
		},
	}
	if err := st.Err(); err != nil {
		return nil, err
	}
	return view, base.Err()
}

func (a *Auctions) handleGetAuction(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	view, err := a.getAuction(addr)
	if err != nil {
		return err
	}
	if view == nil {
		return utils.NotFound(errAuctionNotFound)
	}
	return utils.WriteJSON(w, view)
}

func (a *Auctions) handleGetDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	bidder, err := meter.ParseAddress(mux.Vars(req)["bidder"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "bidder"))
	}
	_, _, st := a.live(addr)
	record, err := outcry.GetAuction(st, addr)
	if err != nil {
		return err
	}
	if record == nil {
		return utils.NotFound(errAuctionNotFound)
	}
	mirrorAddr, mirror, err := outcry.GetBidderDeposit(a.bridge.Base().Domain().NewState(), addr, bidder)
	if err != nil {
		return err
	}
	deposit := &Deposit{
		Auction:       addr,
		Bidder:        bidder,
		Entry:         record.DepositOf(bidder),
		MirrorAddress: mirrorAddr,
		Mirror:        mirror,
	}
	if mirror != nil {
		deposit.Refundable = mirror.Amount
		if deposit.Entry < deposit.Refundable {
			deposit.Refundable = deposit.Entry
		}
	}
	return utils.WriteJSON(w, deposit)
}

func (a *Auctions) handleDerive(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	seller, err := meter.ParseAddress(query.Get("seller"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "seller"))
	}
	asset, err := meter.ParseAddress(query.Get("asset"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	auction, auctionBump, err := outcry.AuctionAddress(seller, asset)
	if err != nil {
		return err
	}
	vault, vaultBump, err := outcry.VaultAddress(auction)
	if err != nil {
		return err
	}
	derived := &Derived{
		Auction:     auction,
		AuctionBump: auctionBump,
		Vault:       vault,
		VaultBump:   vaultBump,
	}
	if b := query.Get("bidder"); b != "" {
		bidder, err := meter.ParseAddress(b)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "bidder"))
		}
		deposit, _, err := outcry.DepositAddress(auction, bidder)
		if err != nil {
			return err
		}
		session, _, err := outcry.SessionAddress(auction, bidder)
		if err != nil {
			return err
		}
		derived.Deposit = &deposit
		derived.Session = &session
	}
	return utils.WriteJSON(w, derived)
}

func (a *Auctions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/derive").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleDerive))
	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAuction))
	sub.Path("/{address}/deposits/{bidder}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetDeposit))
}
