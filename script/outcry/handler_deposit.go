// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// DepositHandler escrows lamports of the signer into the vault.
func (o *Outcry) DepositHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Deposit completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	addr, auction, err := o.ownedAuction(env, ob)
	if err != nil {
		return
	}
	if auction.Status != StatusCreated {
		err = ErrInvalidAuctionStatus
		return
	}
	if ob.Amount == 0 {
		err = ErrInvalidDepositAmount
		return
	}

	bidder := env.GetOrigin()
	total, err := auction.AddDeposit(bidder, ob.Amount)
	if err != nil {
		o.logger.Info("deposit rejected", "auction", addr, "bidder", bidder, "amount", ob.Amount, "err", err)
		return
	}

	state := env.GetState()
	vaultAddr, _, err := GetVault(state, addr)
	if err != nil {
		return
	}
	if err = o.setMirror(env, addr, bidder, total); err != nil {
		return
	}
	if err = env.TransferFromSigner(bidder, vaultAddr, ob.Amount); err != nil {
		o.logger.Info("not enough balance", "bidder", bidder, "amount", ob.Amount, "balance", state.GetLamports(bidder))
		return
	}
	setAuction(state, addr, auction)
	depositedCounter.Add(float64(ob.Amount))

	err = emit(env, DepositMadeEvent, addr, &DepositMade{Bidder: bidder, Amount: ob.Amount, Total: total}, setypes.AddressTopic(bidder))
	return
}

// setMirror creates or updates the deposit mirror of bidder.
func (o *Outcry) setMirror(env *setypes.ScriptEnv, auction, bidder meter.Address, amount uint64) error {
	state := env.GetState()
	mirrorAddr, mirror, err := GetBidderDeposit(state, auction, bidder)
	if err != nil {
		return err
	}
	if mirror != nil {
		mirror.Amount = amount
		state.EncodeData(mirrorAddr, encode(mirror))
		return nil
	}

	_, bump, err := DepositAddress(auction, bidder)
	if err != nil {
		return err
	}
	data, err := encode(&BidderDeposit{Auction: auction, Bidder: bidder, Amount: amount, Bump: bump})()
	if err != nil {
		return err
	}
	return env.CreateProgramAccount(meter.OutcryProgramID, mirrorAddr, data)
}
