// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bridge_test

import (
	"context"
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/cmd/outcry/node"
	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/lvldb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script"
	"github.com/meterio/outcry/script/delegation"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fund = uint64(1_000_000)

var asset = meter.BytesToAddress([]byte("painting"))

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

type fixture struct {
	t       *testing.T
	clock   *domain.ManualClock
	node    *node.Node
	auction meter.Address
	vault   meter.Address
}

// newFixture returns an active auction with 100 deposited by alice and bob.
func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	clock := domain.NewManualClock(1_700_000_000)
	n, err := node.New(db, node.Options{
		Genesis: genesis.New("bridge", []genesis.Alloc{
			{Address: addrOf("seller"), Lamports: fund},
			{Address: addrOf("alice"), Lamports: fund},
			{Address: addrOf("bob"), Lamports: fund},
		}),
		Validator: keyOf("validator"),
		Clock:     clock,
	})
	require.NoError(t, err)

	f := &fixture{t: t, clock: clock, node: n}
	f.auction, _, err = outcry.AuctionAddress(addrOf("seller"), asset)
	require.NoError(t, err)
	f.vault, _, err = outcry.VaultAddress(f.auction)
	require.NoError(t, err)

	create := f.body(outcry.OP_CREATE)
	create.Duration = 600
	create.StartPrice = 10
	create.MinIncrement = 5
	require.NoError(t, f.exec(xenv.Base, "seller", create))
	for _, name := range []string{"alice", "bob"} {
		ob := f.body(outcry.OP_DEPOSIT)
		ob.Amount = 100
		require.NoError(t, f.exec(xenv.Base, name, ob))
	}
	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_START)))
	return f
}

func (f *fixture) body(op uint32) *outcry.OutcryBody {
	return &outcry.OutcryBody{Opcode: op, Seller: addrOf("seller"), Asset: asset}
}

func (f *fixture) send(kind xenv.DomainKind, signer string, ob *outcry.OutcryBody) (*tx.Receipt, error) {
	clause, err := script.OutcryClause(ob)
	require.NoError(f.t, err)
	return f.node.Send(context.Background(), kind, keyOf(signer), clause)
}

func (f *fixture) exec(kind xenv.DomainKind, signer string, ob *outcry.OutcryBody) error {
	_, err := f.send(kind, signer, ob)
	return err
}

func (f *fixture) bid(kind xenv.DomainKind, signer string, amount uint64) error {
	ob := f.body(outcry.OP_BID)
	ob.Amount = amount
	return f.exec(kind, signer, ob)
}

func (f *fixture) auctionOn(kind xenv.DomainKind) *outcry.AuctionState {
	d := f.node.Base()
	if kind == xenv.Ephemeral {
		d = f.node.Ephemeral()
	}
	a, err := outcry.GetAuction(d.NewState(), f.auction)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) lamports(addr meter.Address) uint64 {
	return f.node.Base().NewState().GetLamports(addr)
}

func TestDelegationRoundTrip(t *testing.T) {
	f := newFixture(t)
	b := f.node.Bridge()
	assert.Equal(t, bridge.Undelegated, b.DelegationStatus(f.auction))

	assert.ErrorIs(t, f.exec(xenv.Base, "alice", f.body(outcry.OP_DELEGATE)), outcry.ErrUnauthorizedSeller)
	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_DELEGATE)))
	assert.Equal(t, bridge.Delegated, b.DelegationStatus(f.auction))

	base := f.node.Base().NewState()
	assert.Equal(t, meter.DelegationProgramID, base.GetOwner(f.auction))
	rec, err := delegation.GetRecord(base, f.auction)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, addrOf("seller"), rec.Authority)
	assert.Equal(t, meter.OutcryProgramID, f.node.Ephemeral().NewState().GetOwner(f.auction))

	// bids only land on the owning domain
	err = f.bid(xenv.Base, "alice", 10)
	assert.ErrorIs(t, err, outcry.ErrAccountDelegated)
	assert.Equal(t, outcry.ClassOwnership, outcry.ClassOf(err))
	require.NoError(t, f.bid(xenv.Ephemeral, "alice", 10))
	require.NoError(t, f.bid(xenv.Ephemeral, "bob", 20))
	assert.ErrorIs(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_DELEGATE)), outcry.ErrAccountDelegated)

	// funds never move on the ephemeral domain
	dep := f.body(outcry.OP_DEPOSIT)
	dep.Amount = 1
	assert.ErrorIs(t, f.exec(xenv.Ephemeral, "alice", dep), outcry.ErrBaseOnly)

	require.NoError(t, f.exec(xenv.Ephemeral, "seller", f.body(outcry.OP_COMMIT)))
	assert.Equal(t, uint64(20), f.auctionOn(xenv.Base).CurrentBid)
	assert.Equal(t, bridge.Delegated, b.DelegationStatus(f.auction))
	rec, err = delegation.GetRecord(f.node.Base().NewState(), f.auction)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.Commits)

	f.clock.Advance(600)
	require.NoError(t, f.exec(xenv.Ephemeral, "carol", f.body(outcry.OP_END)))
	assert.ErrorIs(t, f.exec(xenv.Ephemeral, "alice", f.body(outcry.OP_UNDELEGATE)), outcry.ErrUnauthorizedSeller)
	require.NoError(t, f.exec(xenv.Ephemeral, "seller", f.body(outcry.OP_UNDELEGATE)))

	assert.Equal(t, bridge.Undelegated, b.DelegationStatus(f.auction))
	assert.False(t, f.node.Ephemeral().NewState().Exists(f.auction))
	rec, err = delegation.GetRecord(f.node.Base().NewState(), f.auction)
	require.NoError(t, err)
	assert.Nil(t, rec)

	a := f.auctionOn(xenv.Base)
	assert.Equal(t, outcry.StatusEnded, a.Status)
	assert.Equal(t, addrOf("bob"), a.HighestBidder)
	assert.Equal(t, uint64(2), a.BidCount)

	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_SETTLE)))
	require.NoError(t, f.exec(xenv.Base, "alice", f.body(outcry.OP_CLAIM_REFUND)))
	require.NoError(t, f.exec(xenv.Base, "bob", f.body(outcry.OP_CLAIM_REFUND)))
	assert.Equal(t, fund+20, f.lamports(addrOf("seller")))
	assert.Equal(t, fund, f.lamports(addrOf("alice")))
	assert.Equal(t, fund-20, f.lamports(addrOf("bob")))
	assert.Equal(t, uint64(0), f.lamports(f.vault))
}

func TestStuckDelegation(t *testing.T) {
	f := newFixture(t)
	b := f.node.Bridge()
	f.node.Ephemeral().SetAvailable(false)

	receipt, err := f.send(xenv.Base, "seller", f.body(outcry.OP_DELEGATE))
	assert.ErrorIs(t, err, bridge.ErrDelegationStuck)
	require.NotNil(t, receipt)
	assert.False(t, receipt.Reverted)
	assert.Equal(t, bridge.Stuck, b.DelegationStatus(f.auction))

	// the normal paths are closed
	assert.ErrorIs(t, f.bid(xenv.Base, "alice", 10), outcry.ErrAccountDelegated)
	assert.ErrorIs(t, f.exec(xenv.Base, "alice", f.body(outcry.OP_CLAIM_REFUND)), outcry.ErrAccountDelegated)

	receipt, err = f.send(xenv.Base, "alice", f.body(outcry.OP_EMERGENCY_REFUND))
	require.NoError(t, err)
	var ev outcry.RefundClaimed
	require.NoError(t, rlp.DecodeBytes(receipt.Outputs[0].Events[0].Data, &ev))
	assert.Equal(t, outcry.RefundClaimed{Bidder: addrOf("alice"), Amount: 100, Emergency: true}, ev)

	assert.Equal(t, fund, f.lamports(addrOf("alice")))
	assert.Equal(t, uint64(100), f.lamports(f.vault))
	_, mirror, err := outcry.GetBidderDeposit(f.node.Base().NewState(), f.auction, addrOf("alice"))
	require.NoError(t, err)
	assert.Nil(t, mirror)

	assert.ErrorIs(t, f.exec(xenv.Base, "alice", f.body(outcry.OP_EMERGENCY_REFUND)), outcry.ErrNothingToRefund)
	assert.ErrorIs(t, f.exec(xenv.Base, "carol", f.body(outcry.OP_EMERGENCY_REFUND)), outcry.ErrNothingToRefund)

	require.NoError(t, f.exec(xenv.Base, "bob", f.body(outcry.OP_EMERGENCY_REFUND)))
	assert.Equal(t, uint64(0), f.lamports(f.vault))

	// coming back online does not heal the handoff
	f.node.Ephemeral().SetAvailable(true)
	assert.Equal(t, bridge.Stuck, b.DelegationStatus(f.auction))
}

func TestReconcileAfterEmergencyRefund(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_DELEGATE)))
	require.NoError(t, f.bid(xenv.Ephemeral, "bob", 10))

	require.NoError(t, f.exec(xenv.Base, "alice", f.body(outcry.OP_EMERGENCY_REFUND)))
	assert.Equal(t, uint64(100), f.lamports(f.vault))

	f.clock.Advance(600)
	require.NoError(t, f.exec(xenv.Ephemeral, "bob", f.body(outcry.OP_END)))
	require.NoError(t, f.exec(xenv.Ephemeral, "seller", f.body(outcry.OP_UNDELEGATE)))

	a := f.auctionOn(xenv.Base)
	assert.Equal(t, uint64(0), a.DepositOf(addrOf("alice")), "refunded entry is reconciled")
	assert.Equal(t, uint64(100), a.DepositOf(addrOf("bob")))

	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_SETTLE)))
	assert.ErrorIs(t, f.exec(xenv.Base, "alice", f.body(outcry.OP_CLAIM_REFUND)), outcry.ErrNothingToRefund)
	require.NoError(t, f.exec(xenv.Base, "bob", f.body(outcry.OP_CLAIM_REFUND)))

	assert.Equal(t, fund+10, f.lamports(addrOf("seller")))
	assert.Equal(t, fund-10, f.lamports(addrOf("bob")))
	assert.Equal(t, fund, f.lamports(addrOf("alice")))
	assert.Equal(t, uint64(0), f.lamports(f.vault))
}

func TestValidatorOnly(t *testing.T) {
	f := newFixture(t)
	snap := &delegation.Snapshot{Account: f.auction, OwnerProgram: meter.OutcryProgramID}
	clause, err := script.DelegationClause(delegation.SnapshotBody(delegation.OP_CLONE, snap, 1))
	require.NoError(t, err)

	_, err = f.node.Send(context.Background(), xenv.Ephemeral, keyOf("mallory"), clause)
	assert.ErrorIs(t, err, delegation.ErrUnauthorized)
	assert.False(t, f.node.Ephemeral().NewState().Exists(f.auction))

	_, err = f.node.Send(context.Background(), xenv.Base, keyOf("validator"), clause)
	assert.ErrorIs(t, err, delegation.ErrEphemeralOnly)
	assert.Equal(t, addrOf("validator"), f.node.Bridge().ValidatorAddress())
}

func TestResumeUndelegation(t *testing.T) {
	f := newFixture(t)
	b := f.node.Bridge()
	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_DELEGATE)))
	require.NoError(t, f.bid(xenv.Ephemeral, "bob", 30))
	f.clock.Advance(600)
	require.NoError(t, f.exec(xenv.Ephemeral, "bob", f.body(outcry.OP_END)))

	f.node.Base().SetAvailable(false)
	receipt, err := f.send(xenv.Ephemeral, "seller", f.body(outcry.OP_UNDELEGATE))
	assert.ErrorIs(t, err, bridge.ErrDelegationStuck)
	require.NotNil(t, receipt)
	assert.False(t, f.node.Ephemeral().NewState().Exists(f.auction))
	assert.Equal(t, bridge.Stuck, b.DelegationStatus(f.auction))

	// still offline
	assert.ErrorIs(t, b.ResumeUndelegation(context.Background(), receipt.TxID), bridge.ErrDelegationStuck)
	assert.Equal(t, bridge.Stuck, b.DelegationStatus(f.auction))

	f.node.Base().SetAvailable(true)
	require.NoError(t, b.ResumeUndelegation(context.Background(), receipt.TxID))
	assert.Equal(t, bridge.Undelegated, b.DelegationStatus(f.auction))
	rec, err := delegation.GetRecord(f.node.Base().NewState(), f.auction)
	require.NoError(t, err)
	assert.Nil(t, rec)

	a := f.auctionOn(xenv.Base)
	assert.Equal(t, outcry.StatusEnded, a.Status)
	assert.Equal(t, addrOf("bob"), a.HighestBidder)
	assert.Equal(t, uint64(30), a.CurrentBid)

	assert.ErrorIs(t, b.ResumeUndelegation(context.Background(), receipt.TxID), bridge.ErrNothingToResume)
	assert.ErrorIs(t, b.ResumeUndelegation(context.Background(), meter.Bytes32{1}), bridge.ErrNothingToResume)

	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_SETTLE)))
	assert.Equal(t, fund+30, f.lamports(addrOf("seller")))
}

func TestResumeRejectsStaleSnapshot(t *testing.T) {
	f := newFixture(t)
	b := f.node.Bridge()
	require.NoError(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_DELEGATE)))
	old, err := f.send(xenv.Ephemeral, "seller", f.body(outcry.OP_UNDELEGATE))
	require.NoError(t, err)
	assert.Equal(t, bridge.Undelegated, b.DelegationStatus(f.auction))

	f.clock.Advance(10)
	f.node.Ephemeral().SetAvailable(false)
	assert.ErrorIs(t, f.exec(xenv.Base, "seller", f.body(outcry.OP_DELEGATE)), bridge.ErrDelegationStuck)
	assert.Equal(t, bridge.Stuck, b.DelegationStatus(f.auction))

	assert.ErrorIs(t, b.ResumeUndelegation(context.Background(), old.TxID), bridge.ErrNothingToResume)
	assert.Equal(t, bridge.Stuck, b.DelegationStatus(f.auction))
}
