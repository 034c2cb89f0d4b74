// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"log/slog"
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
	"github.com/meterio/outcry/state"
)

// Outcry is the auction program.
type Outcry struct {
	sessions SessionAuthority
	logger   *slog.Logger
}

func NewOutcry(sessions SessionAuthority) *Outcry {
	return &Outcry{
		sessions: sessions,
		logger:   slog.Default().With("pkg", "outcry"),
	}
}

func (o *Outcry) Start() error {
	o.logger.Info("outcry module started", "maxBidders", MaxBidders)
	return nil
}

func (o *Outcry) Handler(senv *setypes.ScriptEnv, payload []byte, to *meter.Address) (seOutput *setypes.ScriptEngineOutput, err error) {
	ob, err := DecodeFromBytes(payload)
	if err != nil {
		o.logger.Error("Decode script message failed", "error", err)
		return nil, err
	}
	if senv == nil {
		panic("create outcry enviroment failed")
	}

	start := time.Now()
	defer func() {
		observeOp(ob.Opcode, err, time.Since(start))
	}()

	o.logger.Debug("received outcry", "body", ob.ToString(), "domain", senv.GetDomain())
	switch ob.Opcode {
	case OP_CREATE:
		err = o.CreateHandler(senv, ob)
	case OP_START:
		err = o.StartHandler(senv, ob)
	case OP_DEPOSIT:
		err = o.DepositHandler(senv, ob)
	case OP_BID:
		err = o.BidHandler(senv, ob)
	case OP_END:
		err = o.EndHandler(senv, ob)
	case OP_SETTLE:
		err = o.SettleHandler(senv, ob)
	case OP_CANCEL:
		err = o.CancelHandler(senv, ob)
	case OP_CLAIM_REFUND:
		err = o.ClaimRefundHandler(senv, ob)
	case OP_EMERGENCY_REFUND:
		err = o.EmergencyRefundHandler(senv, ob)
	case OP_SESSION:
		err = o.SessionHandler(senv, ob)
	case OP_DELEGATE:
		err = o.DelegateHandler(senv, ob)
	case OP_UNDELEGATE:
		err = o.UndelegateHandler(senv, ob, true)
	case OP_COMMIT:
		err = o.UndelegateHandler(senv, ob, false)
	case OP_RECONCILE:
		err = o.ReconcileHandler(senv, ob)
	default:
		o.logger.Error("unknown Opcode", "Opcode", ob.Opcode)
		return nil, ErrUnknownOpcode
	}
	seOutput = senv.GetOutput()
	o.logger.Debug("Leaving script handler for operation", "op", GetOpName(ob.Opcode))
	return
}

// Writables returns every account an outcry payload may write. The state is
// only read, to find the seller and the bidders of an existing auction.
func (o *Outcry) Writables(st *state.State, origin meter.Address, payload []byte) ([]meter.Address, error) {
	ob, err := DecodeFromBytes(payload)
	if err != nil {
		return nil, err
	}
	auction, err := ob.Auction()
	if err != nil {
		return nil, err
	}
	vault, _, err := VaultAddress(auction)
	if err != nil {
		return nil, err
	}

	addrs := []meter.Address{auction}
	switch ob.Opcode {
	case OP_CREATE:
		addrs = append(addrs, vault)
	case OP_DEPOSIT, OP_CLAIM_REFUND, OP_EMERGENCY_REFUND:
		mirror, _, err := DepositAddress(auction, origin)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, vault, mirror, origin)
	case OP_SETTLE:
		addrs = append(addrs, vault, ob.Seller)
		if a, err := GetAuction(st, auction); err == nil && a != nil && !a.HighestBidder.IsZero() {
			mirror, _, err := DepositAddress(auction, a.HighestBidder)
			if err != nil {
				return nil, err
			}
			addrs = append(addrs, mirror)
		}
	case OP_SESSION:
		session, _, err := SessionAddress(auction, origin)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, session)
	case OP_DELEGATE:
		rec, _, err := delegationRecord(auction)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, rec)
	case OP_RECONCILE:
		if a, err := GetAuction(st, auction); err == nil && a != nil {
			for _, d := range a.Deposits {
				mirror, _, err := DepositAddress(auction, d.Bidder)
				if err != nil {
					return nil, err
				}
				addrs = append(addrs, mirror)
			}
		}
	}
	return addrs, nil
}

// ownedAuction loads the auction addressed by ob, failing unless the outcry
// program owns it on the domain the instruction runs on.
func (o *Outcry) ownedAuction(env *setypes.ScriptEnv, ob *OutcryBody) (meter.Address, *AuctionState, error) {
	addr, err := ob.Auction()
	if err != nil {
		return addr, nil, err
	}
	st := env.GetState()
	if owner := st.GetOwner(addr); owner != meter.OutcryProgramID {
		switch {
		case env.IsBase() && owner == meter.DelegationProgramID:
			return addr, nil, ErrAccountDelegated
		case !env.IsBase():
			return addr, nil, ErrAccountNotDelegated
		default:
			return addr, nil, ErrAccountNotFound
		}
	}
	a, err := GetAuction(st, addr)
	if err != nil {
		return addr, nil, err
	}
	if a == nil {
		return addr, nil, ErrAccountNotFound
	}
	return addr, a, nil
}
