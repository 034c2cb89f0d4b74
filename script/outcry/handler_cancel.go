// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

func (o *Outcry) CancelHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Cancel completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	if auction.Seller != env.GetOrigin() {
		err = ErrUnauthorizedSeller
		return
	}
	switch auction.Status {
	case StatusCreated:
	case StatusActive:
		if auction.BidCount > 0 {
			err = ErrAuctionHasBids
			return
		}
	default:
		err = ErrInvalidAuctionStatus
		return
	}

	auction.Status = StatusCancelled
	setAuction(env.GetState(), addr, auction)

	o.logger.Info("auction cancelled", "auction", addr)
	err = emit(env, AuctionCancelledEvent, addr, nil)
	return
}
