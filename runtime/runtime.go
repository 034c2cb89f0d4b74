// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script"
	setypes "github.com/meterio/outcry/script/types"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

const (
	// max size of tx allowed
	maxTxSize = 64 * 1024
)

var (
	ErrDomainUnavailable = errors.New("domain unavailable")
	ErrDomainMismatch    = errors.New("tx is not intended for this domain")
	ErrExpired           = errors.New("tx expired")
	ErrKnownTx           = errors.New("known tx")
	ErrNoClause          = errors.New("tx has no clause")
	ErrTxTooLarge        = errors.New("tx too large")
	ErrUndeclaredWrite   = errors.New("tx wrote an undeclared account")
	ErrBadSignature      = errors.New("bad signature")

	receiptPrefix = []byte("receipt")
)

// ReceiptEvent is posted for every committed tx.
type ReceiptEvent struct {
	Domain  xenv.DomainKind
	Receipt *tx.Receipt
}

// Runtime executes signed transactions against one domain.
type Runtime struct {
	dom    *domain.Domain
	se     *script.ScriptEngine
	logDB  *logdb.LogDB
	logger *slog.Logger

	receiptFeed event.Feed
	scope       event.SubscriptionScope
}

// New create a Runtime object. logDB may be nil.
func New(dom *domain.Domain, se *script.ScriptEngine, logDB *logdb.LogDB) *Runtime {
	return &Runtime{
		dom:    dom,
		se:     se,
		logDB:  logDB,
		logger: slog.Default().With("pkg", "runtime", "domain", dom.Kind().String()),
	}
}

func (rt *Runtime) Domain() *domain.Domain             { return rt.dom }
func (rt *Runtime) ScriptEngine() *script.ScriptEngine { return rt.se }

// SubscribeReceipts subscribes committed receipts.
func (rt *Runtime) SubscribeReceipts(ch chan *ReceiptEvent) event.Subscription {
	return rt.scope.Track(rt.receiptFeed.Subscribe(ch))
}

// Close unsubscribes all subscribers.
func (rt *Runtime) Close() {
	rt.scope.Close()
}

func receiptKey(id meter.Bytes32) []byte {
	return append(append([]byte(nil), receiptPrefix...), id[:]...)
}

// GetReceipt returns the receipt of a committed tx.
func (rt *Runtime) GetReceipt(id meter.Bytes32) (*tx.Receipt, error) {
	raw, err := rt.dom.Store().Get(receiptKey(id))
	if err != nil {
		return nil, err
	}
	var r tx.Receipt
	if err := rlp.DecodeBytes(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// IsNotFound reports whether err means a missing receipt.
func (rt *Runtime) IsNotFound(err error) bool {
	return rt.dom.Store().IsNotFound(err)
}

func (rt *Runtime) isKnown(id meter.Bytes32) (bool, error) {
	return rt.dom.Store().Has(receiptKey(id))
}

func (rt *Runtime) validate(t *tx.Transaction, now uint64) (meter.Address, error) {
	if !rt.dom.IsAvailable() {
		return meter.Address{}, ErrDomainUnavailable
	}
	if t.DomainTag() != rt.dom.Tag() {
		return meter.Address{}, ErrDomainMismatch
	}
	if t.IsExpired(now) {
		return meter.Address{}, ErrExpired
	}
	if len(t.Clauses()) == 0 {
		return meter.Address{}, ErrNoClause
	}
	raw, err := rlp.EncodeToBytes(t)
	if err != nil {
		return meter.Address{}, err
	}
	if len(raw) > maxTxSize {
		return meter.Address{}, ErrTxTooLarge
	}
	origin, err := t.Signer()
	if err != nil {
		return meter.Address{}, errors.WithMessage(ErrBadSignature, err.Error())
	}
	return origin, nil
}

// Writables collects the accounts every clause of t declares as writable.
func (rt *Runtime) Writables(t *tx.Transaction, origin meter.Address) ([]meter.Address, error) {
	st := rt.dom.NewState()
	var addrs []meter.Address
	for i, clause := range t.Clauses() {
		w, err := rt.se.Writables(st, origin, clause.Data())
		if err != nil {
			return nil, errors.WithMessagef(err, "clause %d", i)
		}
		addrs = append(addrs, w...)
	}
	return domain.SortAddresses(addrs), nil
}

// Execute runs t on the domain. All clauses commit together or nothing does.
// A reverted tx still yields a receipt carrying the failing clause output,
// alongside the error.
func (rt *Runtime) Execute(ctx context.Context, t *tx.Transaction) (receipt *tx.Receipt, err error) {
	start := time.Now()
	defer func() {
		observeTx(rt.dom.Kind(), receipt, err, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := rt.dom.Now()
	origin, err := rt.validate(t, now)
	if err != nil {
		return nil, err
	}
	id := t.ID()
	if known, err := rt.isKnown(id); err != nil {
		return nil, err
	} else if known {
		return nil, ErrKnownTx
	}

	writables, err := rt.Writables(t, origin)
	if err != nil {
		return nil, err
	}
	unlock := rt.dom.Locks().Lock(writables)
	defer unlock()

	// a duplicate may have committed while waiting for the locks
	if known, err := rt.isKnown(id); err != nil {
		return nil, err
	} else if known {
		return nil, ErrKnownTx
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := rt.dom.NewState()
	blockCtx := &xenv.BlockContext{Domain: rt.dom.Kind(), Seq: rt.dom.Seq() + 1, Time: now}
	clauses := t.Clauses()
	outputs := make([]*tx.Output, 0, len(clauses))
	for i, clause := range clauses {
		to := clause.To()
		txCtx := &xenv.TransactionContext{
			ID:          id,
			Origin:      origin,
			Nonce:       t.Nonce(),
			ClauseIndex: uint32(i),
		}
		env := setypes.NewScriptEnv(st, blockCtx, txCtx, &to)
		seOutput, cerr := rt.se.HandleScriptData(env, clause.Data(), &to)
		if cerr == nil {
			cerr = st.Err()
		}
		if cerr != nil {
			rt.logger.Debug("clause reverted", "tx", id, "clause", i, "err", cerr)
			outputs = append(outputs, &tx.Output{Data: env.GetReturnData()})
			return &tx.Receipt{
				TxID:      id,
				Origin:    origin,
				DomainTag: rt.dom.Tag(),
				Time:      now,
				Reverted:  true,
				Outputs:   outputs,
			}, errors.WithMessagef(cerr, "clause %d", i)
		}
		outputs = append(outputs, seOutput.ToOutput())
	}

	stage := st.Stage()
	declared := make(map[meter.Address]bool, len(writables))
	for _, addr := range writables {
		declared[addr] = true
	}
	for _, addr := range stage.Addresses() {
		if !declared[addr] {
			rt.logger.Warn("undeclared write", "tx", id, "account", addr)
			err := errors.WithMessagef(ErrUndeclaredWrite, "account %v", addr)
			return &tx.Receipt{
				TxID:      id,
				Origin:    origin,
				DomainTag: rt.dom.Tag(),
				Time:      now,
				Reverted:  true,
				Outputs:   []*tx.Output{{Data: []byte(err.Error())}},
			}, err
		}
	}

	seq, putSeq := rt.dom.NextSeq()
	receipt = &tx.Receipt{
		TxID:      id,
		Origin:    origin,
		DomainTag: rt.dom.Tag(),
		Seq:       seq,
		Time:      now,
		Outputs:   outputs,
	}
	if receipt.StateHash, err = stage.Hash(); err != nil {
		return nil, err
	}
	raw, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		return nil, err
	}
	if _, err = stage.CommitWith(func(p kv.Putter) error {
		if err := putSeq(p); err != nil {
			return err
		}
		return p.Put(receiptKey(id), raw)
	}); err != nil {
		return nil, errors.Wrap(err, "commit stage")
	}

	if rt.logDB != nil {
		header := &logdb.Header{Domain: rt.dom.Kind(), Seq: seq, Time: now}
		if err := rt.logDB.Prepare(header).ForTransaction(id, origin).Insert(receipt.Events(), receipt.Transfers()).Commit(); err != nil {
			rt.logger.Error("write logdb failed", "tx", id, "err", err)
		}
	}
	rt.receiptFeed.Send(&ReceiptEvent{Domain: rt.dom.Kind(), Receipt: receipt})
	rt.logger.Debug("tx committed", "tx", id, "seq", seq, "accounts", len(stage.Addresses()), "elapsed", meter.PrettyDuration(time.Since(start)))
	return receipt, nil
}
