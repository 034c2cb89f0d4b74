// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

func (o *Outcry) StartHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Start completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	if auction.Seller != env.GetOrigin() {
		err = ErrUnauthorizedSeller
		return
	}
	if auction.Status != StatusCreated {
		err = ErrInvalidAuctionStatus
		return
	}

	now := env.Now()
	endTime, err := meter.CheckedAdd(now, auction.DurationSeconds)
	if err != nil {
		return
	}
	auction.StartTime = now
	auction.EndTime = endTime
	auction.Status = StatusActive
	setAuction(env.GetState(), addr, auction)

	o.logger.Info("auction started", "auction", addr, "start", now, "end", endTime)
	err = emit(env, AuctionStartedEvent, addr, &AuctionStarted{StartTime: now, EndTime: endTime})
	return
}
