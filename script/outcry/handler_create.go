// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"errors"
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

func (o *Outcry) CreateHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Create completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	if ob.Seller != env.GetOrigin() {
		err = ErrUnauthorizedSeller
		return
	}
	if ob.Duration == 0 {
		err = ErrInvalidDuration
		return
	}
	if ob.MinIncrement == 0 {
		err = ErrInvalidBidIncrement
		return
	}

	addr, bump, err := AuctionAddress(ob.Seller, ob.Asset)
	if err != nil {
		return
	}
	vaultAddr, vaultBump, err := VaultAddress(addr)
	if err != nil {
		return
	}

	auction := &AuctionState{
		Status:          StatusCreated,
		Seller:          ob.Seller,
		Asset:           ob.Asset,
		StartPrice:      ob.StartPrice,
		MinIncrement:    ob.MinIncrement,
		DurationSeconds: ob.Duration,
		Deposits:        make([]*DepositEntry, 0),
		Bump:            bump,
	}
	data, err := auction.Encode()
	if err != nil {
		return
	}
	if err = env.CreateProgramAccount(meter.OutcryProgramID, addr, data); err != nil {
		if errors.Is(err, setypes.ErrAccountInUse) {
			err = ErrAccountAlreadyExists
		}
		return
	}

	vault := &AuctionVault{Auction: addr, Bump: vaultBump}
	if data, err = encode(vault)(); err != nil {
		return
	}
	if err = env.CreateProgramAccount(meter.OutcryProgramID, vaultAddr, data); err != nil {
		if errors.Is(err, setypes.ErrAccountInUse) {
			err = ErrAccountAlreadyExists
		}
		return
	}

	o.logger.Info("auction created", "auction", addr, "seller", ob.Seller, "asset", ob.Asset)
	err = emit(env, AuctionCreatedEvent, addr, &AuctionCreated{
		Seller:       ob.Seller,
		Asset:        ob.Asset,
		StartPrice:   ob.StartPrice,
		MinIncrement: ob.MinIncrement,
		Duration:     ob.Duration,
	})
	ret = addr.Bytes()
	return
}
