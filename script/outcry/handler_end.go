// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// EndHandler is a permissionless crank, evaluated against the domain clock
// on every attempt.
func (o *Outcry) EndHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("End completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	if auction.Status != StatusActive {
		err = ErrInvalidAuctionStatus
		return
	}
	if env.Now() < auction.EndTime {
		err = ErrAuctionStillActive
		return
	}

	auction.Status = StatusEnded
	setAuction(env.GetState(), addr, auction)

	o.logger.Info("auction ended", "auction", addr, "winner", auction.HighestBidder, "bid", auction.CurrentBid, "bids", auction.BidCount)
	err = emit(env, AuctionEndedEvent, addr, &AuctionEnded{
		Winner:     auction.HighestBidder,
		WinningBid: auction.CurrentBid,
		TotalBids:  auction.BidCount,
	})
	return
}
