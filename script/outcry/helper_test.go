// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry_test

import (
	"context"
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/outcry/cmd/outcry/node"
	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/lvldb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/require"
)

const (
	genesisTime = uint64(1_700_000_000)
	defaultFund = uint64(1_000_000)
)

var asset = meter.BytesToAddress([]byte("nft-0001"))

func keyOf(name string) *ecdsa.PrivateKey {
	key, err := crypto.ToECDSA(crypto.Keccak256([]byte(name)))
	if err != nil {
		panic(err)
	}
	return key
}

func addrOf(name string) meter.Address {
	return meter.Address(crypto.PubkeyToAddress(keyOf(name).PublicKey))
}

type harness struct {
	t     *testing.T
	clock *domain.ManualClock
	node  *node.Node
}

// newHarness funds seller, alice and bob plus the given extra balances.
func newHarness(t *testing.T, extra map[string]uint64) *harness {
	balances := map[string]uint64{"seller": defaultFund, "alice": defaultFund, "bob": defaultFund}
	for name, v := range extra {
		balances[name] = v
	}
	allocs := make([]genesis.Alloc, 0, len(balances))
	for name, v := range balances {
		allocs = append(allocs, genesis.Alloc{Address: addrOf(name), Lamports: v})
	}

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	clock := domain.NewManualClock(genesisTime)
	n, err := node.New(db, node.Options{
		Genesis:   genesis.New("test", allocs),
		Validator: keyOf("validator"),
		Clock:     clock,
	})
	require.NoError(t, err)
	return &harness{t: t, clock: clock, node: n}
}

func (h *harness) auction() meter.Address {
	addr, _, err := outcry.AuctionAddress(addrOf("seller"), asset)
	require.NoError(h.t, err)
	return addr
}

func (h *harness) vault() meter.Address {
	addr, _, err := outcry.VaultAddress(h.auction())
	require.NoError(h.t, err)
	return addr
}

func (h *harness) body(op uint32) *outcry.OutcryBody {
	return &outcry.OutcryBody{Opcode: op, Seller: addrOf("seller"), Asset: asset}
}

func (h *harness) send(kind xenv.DomainKind, signer string, ob *outcry.OutcryBody) (*tx.Receipt, error) {
	clause, err := script.OutcryClause(ob)
	require.NoError(h.t, err)
	return h.node.Send(context.Background(), kind, keyOf(signer), clause)
}

func (h *harness) base(signer string, ob *outcry.OutcryBody) error {
	_, err := h.send(xenv.Base, signer, ob)
	return err
}

func (h *harness) create(duration, startPrice, increment uint64) {
	ob := h.body(outcry.OP_CREATE)
	ob.Duration = duration
	ob.StartPrice = startPrice
	ob.MinIncrement = increment
	require.NoError(h.t, h.base("seller", ob))
}

func (h *harness) deposit(bidder string, amount uint64) error {
	ob := h.body(outcry.OP_DEPOSIT)
	ob.Amount = amount
	return h.base(bidder, ob)
}

func (h *harness) bid(kind xenv.DomainKind, signer string, bidder meter.Address, amount uint64) error {
	ob := h.body(outcry.OP_BID)
	ob.Bidder = bidder
	ob.Amount = amount
	_, err := h.send(kind, signer, ob)
	return err
}

func (h *harness) state(kind xenv.DomainKind) *outcry.AuctionState {
	d := h.node.Base()
	if kind == xenv.Ephemeral {
		d = h.node.Ephemeral()
	}
	a, err := outcry.GetAuction(d.NewState(), h.auction())
	require.NoError(h.t, err)
	require.NotNil(h.t, a)
	return a
}

func (h *harness) lamports(addr meter.Address) uint64 {
	return h.node.Base().NewState().GetLamports(addr)
}

func (h *harness) mirror(bidder string) *outcry.BidderDeposit {
	_, m, err := outcry.GetBidderDeposit(h.node.Base().NewState(), h.auction(), addrOf(bidder))
	require.NoError(h.t, err)
	return m
}
