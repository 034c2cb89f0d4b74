// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bridge

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/runtime"
	"github.com/meterio/outcry/script"
	"github.com/meterio/outcry/script/delegation"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

var (
	ErrDelegationStuck = errors.New("delegation stuck")
	ErrUnknownDomain   = errors.New("unknown domain")
	ErrNothingToResume = errors.New("nothing to resume")
)

// Status is the delegation state of an account as observed across domains.
type Status int

const (
	Undelegated Status = iota
	Delegated
	Stuck
)

func (s Status) String() string {
	switch s {
	case Delegated:
		return "delegated"
	case Stuck:
		return "stuck"
	default:
		return "undelegated"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Bridge routes transactions to the domain runtimes and carries the second
// half of every handoff across: delegations are cloned to the ephemeral
// domain, undelegations and commits are written back to base.
type Bridge struct {
	base      *runtime.Runtime
	ephemeral *runtime.Runtime
	validator *ecdsa.PrivateKey
	nonce     atomic.Uint64
	logger    *slog.Logger
}

func New(base, ephemeral *runtime.Runtime, validator *ecdsa.PrivateKey) *Bridge {
	b := &Bridge{
		base:      base,
		ephemeral: ephemeral,
		validator: validator,
		logger:    slog.Default().With("pkg", "bridge"),
	}
	b.nonce.Store(uint64(time.Now().UnixNano()))
	return b
}

// ValidatorAddress returns the signer of the handoff transactions.
func (b *Bridge) ValidatorAddress() meter.Address {
	return meter.Address(crypto.PubkeyToAddress(b.validator.PublicKey))
}

func (b *Bridge) Base() *runtime.Runtime      { return b.base }
func (b *Bridge) Ephemeral() *runtime.Runtime { return b.ephemeral }

// Runtime returns the runtime of kind.
func (b *Bridge) Runtime(kind xenv.DomainKind) (*runtime.Runtime, error) {
	switch kind {
	case xenv.Base:
		return b.base, nil
	case xenv.Ephemeral:
		return b.ephemeral, nil
	}
	return nil, ErrUnknownDomain
}

// Submit executes t on the domain named by its tag and completes any handoff
// it started. When the handoff fails the account is left stuck and the error
// wraps ErrDelegationStuck, while the receipt of t is still returned.
func (b *Bridge) Submit(ctx context.Context, t *tx.Transaction) (*tx.Receipt, error) {
	rt, err := b.Runtime(xenv.DomainKind(t.DomainTag()))
	if err != nil {
		return nil, err
	}
	receipt, err := rt.Execute(ctx, t)
	if err != nil {
		return receipt, err
	}

	for i, clause := range t.Clauses() {
		if clause.To() != meter.OutcryProgramID {
			continue
		}
		sd, err := script.ParseClause(clause.Data())
		if err != nil || sd.Header.ModID != script.OUTCRY_MODULE_ID {
			continue
		}
		ob, err := outcry.DecodeFromBytes(sd.Payload)
		if err != nil {
			continue
		}
		output := receipt.Outputs[i]

		switch {
		case ob.Opcode == outcry.OP_DELEGATE && t.DomainTag() == byte(xenv.Base):
			err = b.clone(ctx, output.Data)
		case ob.Opcode == outcry.OP_UNDELEGATE && t.DomainTag() == byte(xenv.Ephemeral):
			err = b.writeBack(ctx, output.Data, delegation.OP_FINALIZE)
		case ob.Opcode == outcry.OP_COMMIT && t.DomainTag() == byte(xenv.Ephemeral):
			err = b.writeBack(ctx, output.Data, delegation.OP_COMMIT)
		default:
			continue
		}
		if err != nil {
			addr, _ := ob.Auction()
			stuckCounter.Inc()
			b.logger.Error("handoff failed, account is stuck", "account", addr, "op", outcry.GetOpName(ob.Opcode), "err", err)
			return receipt, errors.WithMessagef(ErrDelegationStuck, "%v: %v", addr, err)
		}
		handoffCounter.WithLabelValues(outcry.GetOpName(ob.Opcode)).Inc()
	}
	return receipt, nil
}

// ResumeUndelegation replays the base half of the undelegation committed by
// txID on the ephemeral domain. The ephemeral copy is gone once that tx
// commits, so the snapshot in its receipt is the only record of the final
// state. The account must still be stuck and the receipt must be younger than
// the delegation it closes.
func (b *Bridge) ResumeUndelegation(ctx context.Context, txID meter.Bytes32) error {
	receipt, err := b.ephemeral.GetReceipt(txID)
	if err != nil {
		if b.ephemeral.IsNotFound(err) {
			return errors.WithMessagef(ErrNothingToResume, "unknown tx %v", txID)
		}
		return err
	}
	for _, output := range receipt.Outputs {
		snap, err := delegation.DecodeSnapshot(output.Data)
		if err != nil || !snap.Undelegate {
			continue
		}
		if b.DelegationStatus(snap.Account) != Stuck {
			return errors.WithMessagef(ErrNothingToResume, "%v is not stuck", snap.Account)
		}
		rec, err := delegation.GetRecord(b.base.Domain().NewState(), snap.Account)
		if err != nil {
			return err
		}
		if rec == nil || receipt.Time < rec.DelegatedAt || receipt.Time < rec.LastCommitAt {
			return errors.WithMessagef(ErrNothingToResume, "tx %v predates the delegation of %v", txID, snap.Account)
		}
		if err := b.writeBack(ctx, output.Data, delegation.OP_FINALIZE); err != nil {
			return errors.WithMessagef(ErrDelegationStuck, "%v: %v", snap.Account, err)
		}
		handoffCounter.WithLabelValues("resume").Inc()
		return nil
	}
	return errors.WithMessagef(ErrNothingToResume, "tx %v did not undelegate", txID)
}

func (b *Bridge) clone(ctx context.Context, raw []byte) error {
	snap, err := delegation.DecodeSnapshot(raw)
	if err != nil {
		return err
	}
	clause, err := script.DelegationClause(delegation.SnapshotBody(delegation.OP_CLONE, snap, b.nonce.Add(1)))
	if err != nil {
		return err
	}
	_, err = b.sendValidatorTx(ctx, b.ephemeral, clause)
	if err == nil {
		b.logger.Info("account delegated", "account", snap.Account)
	}
	return err
}

func (b *Bridge) writeBack(ctx context.Context, raw []byte, op uint32) error {
	snap, err := delegation.DecodeSnapshot(raw)
	if err != nil {
		return err
	}
	clause, err := script.DelegationClause(delegation.SnapshotBody(op, snap, b.nonce.Add(1)))
	if err != nil {
		return err
	}
	clauses := []*tx.Clause{clause}
	if op == delegation.OP_FINALIZE && snap.OwnerProgram == meter.OutcryProgramID {
		// the ledger has to be reconciled in the same tx the record comes back in
		auction, err := outcry.DecodeAuctionState(snap.Data)
		if err != nil {
			return err
		}
		reconcile, err := script.OutcryClause(&outcry.OutcryBody{
			Opcode: outcry.OP_RECONCILE,
			Seller: auction.Seller,
			Asset:  auction.Asset,
			Nonce:  b.nonce.Add(1),
		})
		if err != nil {
			return err
		}
		clauses = append(clauses, reconcile)
	}
	_, err = b.sendValidatorTx(ctx, b.base, clauses...)
	if err == nil {
		b.logger.Info("account written back", "account", snap.Account, "op", delegation.GetOpName(op))
	}
	return err
}

func (b *Bridge) sendValidatorTx(ctx context.Context, rt *runtime.Runtime, clauses ...*tx.Clause) (*tx.Receipt, error) {
	builder := new(tx.Builder).DomainTag(rt.Domain().Tag()).Nonce(b.nonce.Add(1))
	for _, c := range clauses {
		builder.Clause(c)
	}
	signed, err := builder.Build().Sign(b.validator)
	if err != nil {
		return nil, err
	}
	return rt.Execute(ctx, signed)
}

// DelegationStatus reports whether account is delegated, and whether the
// ephemeral domain actually holds it.
func (b *Bridge) DelegationStatus(account meter.Address) Status {
	if b.base.Domain().NewState().GetOwner(account) != meter.DelegationProgramID {
		return Undelegated
	}
	if !b.ephemeral.Domain().IsAvailable() || !b.ephemeral.Domain().NewState().Exists(account) {
		return Stuck
	}
	return Delegated
}
