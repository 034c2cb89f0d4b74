// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/delegation"
	setypes "github.com/meterio/outcry/script/types"
)

func delegationRecord(auction meter.Address) (meter.Address, uint8, error) {
	return delegation.RecordAddress(auction)
}

// DelegateHandler hands the auction record to the delegation program. The
// return data carries the snapshot the ephemeral domain has to install.
func (o *Outcry) DelegateHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Delegate completed", "elapsed", meter.PrettyDuration(time.Since(start)))
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
	if auction.Status != StatusActive {
		err = ErrInvalidAuctionStatus
		return
	}

	snap, err := delegation.Delegate(env, addr, meter.OutcryProgramID, auction.Seller)
	if err != nil {
		return
	}
	if ret, err = snap.Encode(); err != nil {
		return
	}

	o.logger.Info("auction delegated", "auction", addr)
	err = emit(env, AuctionDelegatedEvent, addr, nil)
	return
}

// UndelegateHandler captures the live ephemeral copy for the base domain.
// With release set the copy is removed, otherwise it keeps running.
func (o *Outcry) UndelegateHandler(env *setypes.ScriptEnv, ob *OutcryBody, release bool) (err error) {
	var ret []byte
	start := time.Now()
	name := "Commit"
	if release {
		name = "Undelegate"
	}
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug(name+" completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if env.IsBase() {
		err = ErrEphemeralOnly
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

	snap, err := delegation.TakeSnapshot(env, addr, meter.OutcryProgramID, release)
	if err != nil {
		return
	}
	if ret, err = snap.Encode(); err != nil {
		return
	}

	id := AuctionCommittedEvent
	if release {
		id = AuctionUndelegatedEvent
	}
	err = emit(env, id, addr, nil)
	return
}

// ReconcileHandler runs on base right after an undelegation lands. Entries
// whose mirror was refunded through the emergency path are zeroed so the
// ledger never promises more than the vault holds.
func (o *Outcry) ReconcileHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Reconcile completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}

	state := env.GetState()
	changed := 0
	for _, d := range auction.Deposits {
		if d.Amount == 0 {
			continue
		}
		_, mirror, merr := GetBidderDeposit(state, addr, d.Bidder)
		if merr != nil {
			err = merr
			return
		}
		switch {
		case mirror == nil:
			d.Amount = 0
			changed++
		case mirror.Amount < d.Amount:
			d.Amount = mirror.Amount
			changed++
		}
	}
	if changed > 0 {
		setAuction(state, addr, auction)
		o.logger.Info("deposit ledger reconciled", "auction", addr, "entries", changed)
	}
	return
}
