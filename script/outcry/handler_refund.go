// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// ClaimRefundHandler returns the signer's deposit once the auction is over.
// The entry is zeroed and the mirror closed before the vault pays out.
func (o *Outcry) ClaimRefundHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("ClaimRefund completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	if auction.Status != StatusSettled && auction.Status != StatusCancelled {
		err = ErrRefundNotAvailable
		return
	}

	state := env.GetState()
	bidder := env.GetOrigin()
	mirrorAddr, mirror, err := GetBidderDeposit(state, addr, bidder)
	if err != nil {
		return
	}
	amount := auction.ZeroDeposit(bidder)
	if mirror == nil {
		amount = 0
	} else if mirror.Amount < amount {
		amount = mirror.Amount
	}
	if amount == 0 {
		err = ErrNothingToRefund
		return
	}

	setAuction(state, addr, auction)
	if err = env.CloseProgramAccount(meter.OutcryProgramID, mirrorAddr, bidder); err != nil {
		return
	}
	if err = o.payFromVault(env, addr, bidder, amount); err != nil {
		return
	}
	refundedCounter.WithLabelValues("normal").Add(float64(amount))

	o.logger.Info("refund claimed", "auction", addr, "bidder", bidder, "amount", amount)
	err = emit(env, RefundClaimedEvent, addr, &RefundClaimed{Bidder: bidder, Amount: amount}, setypes.AddressTopic(bidder))
	return
}

// EmergencyRefundHandler pays out the deposit mirror while the auction record
// is held by the delegation program, which is the only way funds leave a
// stuck auction.
func (o *Outcry) EmergencyRefundHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("EmergencyRefund completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	addr, err := ob.Auction()
	if err != nil {
		return
	}
	state := env.GetState()
	switch state.GetOwner(addr) {
	case meter.OutcryProgramID:
		err = ErrInvalidAuctionStatus
		return
	case meter.DelegationProgramID:
	default:
		err = ErrAccountNotFound
		return
	}

	bidder := env.GetOrigin()
	mirrorAddr, mirror, err := GetBidderDeposit(state, addr, bidder)
	if err != nil {
		return
	}
	if mirror == nil || mirror.Amount == 0 {
		err = ErrNothingToRefund
		return
	}
	amount := mirror.Amount
	if err = env.CloseProgramAccount(meter.OutcryProgramID, mirrorAddr, bidder); err != nil {
		return
	}
	if err = o.payFromVault(env, addr, bidder, amount); err != nil {
		return
	}
	refundedCounter.WithLabelValues("emergency").Add(float64(amount))

	o.logger.Warn("emergency refund", "auction", addr, "bidder", bidder, "amount", amount)
	err = emit(env, RefundClaimedEvent, addr, &RefundClaimed{Bidder: bidder, Amount: amount, Emergency: true}, setypes.AddressTopic(bidder))
	return
}

func (o *Outcry) payFromVault(env *setypes.ScriptEnv, auction, to meter.Address, amount uint64) error {
	vaultAddr, _, err := GetVault(env.GetState(), auction)
	if err != nil {
		return err
	}
	return env.TransferFromProgramAccount(meter.OutcryProgramID, vaultAddr, to, amount)
}
