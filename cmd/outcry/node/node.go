// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/co"
	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/meter"
	outruntime "github.com/meterio/outcry/runtime"
	"github.com/meterio/outcry/script"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

// max tolerated offset between the local clock and ntp
const maxClockOffset = 2 * time.Second

// Options configures a node.
type Options struct {
	Genesis   *genesis.Genesis
	Validator *ecdsa.PrivateKey
	Clock     domain.Clock
	LogDB     *logdb.LogDB // optional
	NTPServer string       // empty disables the clock check
}

// Node wires both domains, the script engine and the bridge on one database.
type Node struct {
	goes co.Goes

	base      *domain.Domain
	ephemeral *domain.Domain
	se        *script.ScriptEngine
	bridge    *bridge.Bridge
	logDB     *logdb.LogDB
	ntpServer string
	nonce     atomic.Uint64
	logger    *slog.Logger
}

func New(db kv.GetPutter, opts Options) (*Node, error) {
	if opts.Validator == nil {
		return nil, errors.New("validator key required")
	}
	if opts.Genesis == nil {
		opts.Genesis = genesis.NewDevnet()
	}
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock{}
	}

	base, err := domain.New(xenv.Base, db, opts.Clock)
	if err != nil {
		return nil, errors.WithMessage(err, "base domain")
	}
	ephemeral, err := domain.New(xenv.Ephemeral, db, opts.Clock)
	if err != nil {
		return nil, errors.WithMessage(err, "ephemeral domain")
	}
	if _, err := opts.Genesis.Apply(base); err != nil {
		return nil, err
	}

	validator := meter.Address(crypto.PubkeyToAddress(opts.Validator.PublicKey))
	se := script.NewScriptEngine(outcry.NewStateSessions(base.NewState), validator)
	b := bridge.New(
		outruntime.New(base, se, opts.LogDB),
		outruntime.New(ephemeral, se, opts.LogDB),
		opts.Validator,
	)

	n := &Node{
		base:      base,
		ephemeral: ephemeral,
		se:        se,
		bridge:    b,
		logDB:     opts.LogDB,
		ntpServer: opts.NTPServer,
		logger:    slog.Default().With("pkg", "node"),
	}
	n.nonce.Store(uint64(time.Now().UnixNano()))
	n.logger.Info("node assembled", "genesis", opts.Genesis.Name(), "validator", validator, "baseSeq", base.Seq(), "ephemeralSeq", ephemeral.Seq())
	return n, nil
}

func (n *Node) Base() *domain.Domain               { return n.base }
func (n *Node) Ephemeral() *domain.Domain          { return n.ephemeral }
func (n *Node) Bridge() *bridge.Bridge             { return n.bridge }
func (n *Node) ScriptEngine() *script.ScriptEngine { return n.se }
func (n *Node) LogDB() *logdb.LogDB                { return n.logDB }

func (n *Node) Runtime(kind xenv.DomainKind) *outruntime.Runtime {
	rt, _ := n.bridge.Runtime(kind)
	return rt
}

// Send signs the clauses with key and submits them to the domain of kind.
func (n *Node) Send(ctx context.Context, kind xenv.DomainKind, key *ecdsa.PrivateKey, clauses ...*tx.Clause) (*tx.Receipt, error) {
	builder := new(tx.Builder).DomainTag(byte(kind)).Nonce(n.nonce.Add(1))
	for _, c := range clauses {
		builder.Clause(c)
	}
	signed, err := builder.Build().Sign(key)
	if err != nil {
		return nil, err
	}
	return n.bridge.Submit(ctx, signed)
}

// Run blocks until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	n.goes.Go(func() { n.houseKeeping(ctx) })
	n.goes.Go(func() { n.printStats(ctx, time.Minute) })
	n.goes.Wait()

	n.bridge.Base().Close()
	n.bridge.Ephemeral().Close()
	return nil
}

func (n *Node) houseKeeping(ctx context.Context) {
	n.logger.Debug("enter house keeping")
	defer n.logger.Debug("leave house keeping")

	var scope event.SubscriptionScope
	defer scope.Close()

	receiptCh := make(chan *outruntime.ReceiptEvent, 64)
	scope.Track(n.bridge.Base().SubscribeReceipts(receiptCh))
	scope.Track(n.bridge.Ephemeral().SubscribeReceipts(receiptCh))

	clockTicker := time.NewTicker(10 * time.Minute)
	defer clockTicker.Stop()
	if n.ntpServer != "" {
		go checkClockOffset(n.ntpServer)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-receiptCh:
			n.logger.Debug("receipt", "domain", ev.Domain, "seq", ev.Receipt.Seq, "tx", ev.Receipt.TxID, "events", len(ev.Receipt.Events()))
		case <-clockTicker.C:
			if n.ntpServer != "" {
				go checkClockOffset(n.ntpServer)
			}
		}
	}
}

func (n *Node) printStats(ctx context.Context, duration time.Duration) {
	ticker := time.NewTicker(duration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			n.logger.Info("<Stats>", "baseSeq", n.base.Seq(), "ephemeralSeq", n.ephemeral.Seq(), "baseLocks", n.base.Locks().Len(), "ephemeralLocks", n.ephemeral.Locks().Len(), "ephemeralUp", n.ephemeral.IsAvailable())
			n.logger.Info("<Memory>", "alloc", common.StorageSize(m.Alloc), "sys", common.StorageSize(m.Sys), "numGC", m.NumGC)
		}
	}
}

func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		slog.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		slog.Warn("clock offset detected", "offset", meter.PrettyDuration(resp.ClockOffset))
	}
}
