// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry_test

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/require"
)

func bidderAt(i uint8) meter.Address {
	return meter.BytesToAddress([]byte{'b', i})
}

// TestDepositLedgerProperties checks that every bidder's entry equals the sum
// of what it deposited, that a bidder owns at most one entry and that the
// ledger never grows past MaxBidders.
func TestDepositLedgerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("entries equal deposited sums", prop.ForAll(
		func(who []uint8, amounts []uint32) bool {
			a := &outcry.AuctionState{}
			sums := make(map[meter.Address]uint64)
			for i := 0; i < len(who) && i < len(amounts); i++ {
				bidder := bidderAt(who[i] % 48)
				_, known := sums[bidder]
				_, err := a.AddDeposit(bidder, uint64(amounts[i]))
				switch {
				case err == nil:
					sums[bidder] += uint64(amounts[i])
				case errors.Is(err, outcry.ErrAuctionFull):
					if known || len(a.Deposits) != outcry.MaxBidders {
						return false
					}
				default:
					return false
				}
			}
			if len(a.Deposits) > outcry.MaxBidders || len(a.Deposits) != len(sums) {
				return false
			}
			var total uint64
			for bidder, sum := range sums {
				if a.DepositOf(bidder) != sum {
					return false
				}
				total += sum
			}
			got, err := a.TotalDeposits()
			return err == nil && got == total
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt32()),
	))

	properties.Property("overflowing deposit leaves entry unchanged", prop.ForAll(
		func(base, extra uint64) bool {
			a := &outcry.AuctionState{}
			bidder := bidderAt(1)
			if _, err := a.AddDeposit(bidder, base); err != nil {
				return false
			}
			_, err := a.AddDeposit(bidder, extra)
			if extra > math.MaxUint64-base {
				return errors.Is(err, outcry.ErrArithmeticOverflow) && a.DepositOf(bidder) == base
			}
			return err == nil && a.DepositOf(bidder) == base+extra
		},
		gen.UInt64Range(math.MaxUint64-1000, math.MaxUint64),
		gen.UInt64Range(0, 2000),
	))

	properties.Property("refund never exceeds the recorded deposit and cannot replay", prop.ForAll(
		func(amount uint64) bool {
			a := &outcry.AuctionState{}
			bidder := bidderAt(2)
			if _, err := a.AddDeposit(bidder, amount); err != nil {
				return false
			}
			first := a.ZeroDeposit(bidder)
			second := a.ZeroDeposit(bidder)
			return first == amount && second == 0 && len(a.Deposits) == 1
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// TestEndAuctionCrank checks the crank against the domain clock: it fails for
// every time before end_time and flips the status exactly once after.
func TestEndAuctionCrank(t *testing.T) {
	h := newHarness(t, nil)
	h.create(3600, 1, 1)
	start := h.clock.Now()
	require.NoError(t, h.base("seller", h.body(outcry.OP_START)))

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("end fails before end_time", prop.ForAll(
		func(offset uint64) bool {
			h.clock.Set(start + offset)
			err := h.base("alice", h.body(outcry.OP_END))
			return errors.Is(err, outcry.ErrAuctionStillActive) && h.state(xenv.Base).Status == outcry.StatusActive
		},
		gen.UInt64Range(0, 3599),
	))
	properties.TestingRun(t)

	h.clock.Set(start + 3600 + 17)
	require.NoError(t, h.base("alice", h.body(outcry.OP_END)))
	require.ErrorIs(t, h.base("bob", h.body(outcry.OP_END)), outcry.ErrInvalidAuctionStatus)
	require.Equal(t, outcry.StatusEnded, h.state(xenv.Base).Status)
}
