// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// SettleHandler pays the winning bid to the seller out of the winner's
// escrow. Losing deposits and the winner's remainder stay claimable.
func (o *Outcry) SettleHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Settle completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	if auction.Status != StatusEnded {
		err = ErrInvalidAuctionStatus
		return
	}

	state := env.GetState()
	var payout uint64
	winner := auction.HighestBidder
	if auction.BidCount > 0 && !winner.IsZero() {
		bid := auction.CurrentBid
		mirrorAddr, mirror, merr := GetBidderDeposit(state, addr, winner)
		if merr != nil {
			err = merr
			return
		}
		i := auction.indexOf(winner)
		if i >= 0 && auction.Deposits[i].Amount >= bid && mirror != nil && mirror.Amount >= bid {
			auction.Deposits[i].Amount -= bid
			mirror.Amount -= bid
			state.EncodeData(mirrorAddr, encode(mirror))

			vaultAddr, _, verr := GetVault(state, addr)
			if verr != nil {
				err = verr
				return
			}
			if err = env.TransferFromProgramAccount(meter.OutcryProgramID, vaultAddr, auction.Seller, bid); err != nil {
				return
			}
			payout = bid
		} else {
			o.logger.Warn("winner escrow no longer covers the bid, settling without payout", "auction", addr, "winner", winner, "bid", bid)
		}
	}

	auction.Status = StatusSettled
	setAuction(state, addr, auction)

	o.logger.Info("auction settled", "auction", addr, "winner", winner, "payout", payout)
	err = emit(env, AuctionSettledEvent, addr, &AuctionSettled{Winner: winner, Payout: payout})
	return
}
