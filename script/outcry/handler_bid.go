// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// BidHandler records a bid backed by escrowed funds. No lamports move.
func (o *Outcry) BidHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Bid completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	stub := time.Now()
	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	o.logger.Debug("Read completed", "elapsed", meter.PrettyDuration(time.Since(stub)))

	if auction.Status != StatusActive {
		err = ErrInvalidAuctionStatus
		return
	}
	if env.Now() >= auction.EndTime {
		err = ErrAuctionExpired
		return
	}

	bidder, err := o.sessions.Resolve(addr, ob.Bidder, env.GetOrigin())
	if err != nil {
		return
	}

	minBid, err := auction.MinimumBid()
	if err != nil {
		return
	}
	if ob.Amount == 0 || ob.Amount < minBid {
		o.logger.Info("bid too low", "auction", addr, "amount", ob.Amount, "minBid", minBid)
		err = ErrBidTooLow
		return
	}
	if deposit := auction.DepositOf(bidder); deposit < ob.Amount {
		o.logger.Info("insufficient deposit", "auction", addr, "bidder", bidder, "amount", ob.Amount, "deposit", deposit)
		err = ErrInsufficientDeposit
		return
	}

	auction.HighestBidder = bidder
	auction.CurrentBid = ob.Amount
	auction.BidCount++

	stub = time.Now()
	setAuction(env.GetState(), addr, auction)
	o.logger.Debug("Save completed", "elapsed", meter.PrettyDuration(time.Since(stub)))

	err = emit(env, BidPlacedEvent, addr, &BidPlaced{Bidder: bidder, Amount: ob.Amount, BidCount: auction.BidCount}, setypes.AddressTopic(bidder))
	return
}
