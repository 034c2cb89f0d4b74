// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
)

type Status uint8

const (
	StatusCreated Status = iota
	StatusActive
	StatusEnded
	StatusSettled
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusActive:
		return "Active"
	case StatusEnded:
		return "Ended"
	case StatusSettled:
		return "Settled"
	case StatusCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DepositEntry is a slot of the deposit ledger. Amount zero means refunded,
// the slot itself is never removed.
type DepositEntry struct {
	Bidder meter.Address `json:"bidder"`
	Amount uint64        `json:"amount"`
}

// AuctionState is the record stored at AuctionAddress(seller, asset).
type AuctionState struct {
	Status          Status          `json:"status"`
	Seller          meter.Address   `json:"seller"`
	Asset           meter.Address   `json:"asset"`
	HighestBidder   meter.Address   `json:"highestBidder"`
	CurrentBid      uint64          `json:"currentBid"`
	BidCount        uint64          `json:"bidCount"`
	StartPrice      uint64          `json:"startPrice"`
	MinIncrement    uint64          `json:"minIncrement"`
	StartTime       uint64          `json:"startTime"`
	EndTime         uint64          `json:"endTime"`
	DurationSeconds uint64          `json:"durationSeconds"`
	Deposits        []*DepositEntry `json:"deposits"`
	Bump            uint8           `json:"bump"`
}

func (a *AuctionState) ToString() string {
	entries := make([]string, 0, len(a.Deposits))
	for _, d := range a.Deposits {
		entries = append(entries, fmt.Sprintf("%v:%v", d.Bidder, d.Amount))
	}
	return fmt.Sprintf("AuctionState(status=%v, seller=%v, asset=%v, highest=%v, bid=%v, bids=%v, start=%v, end=%v, deposits=[%v])",
		a.Status, a.Seller, a.Asset, a.HighestBidder, a.CurrentBid, a.BidCount, a.StartTime, a.EndTime, strings.Join(entries, ", "))
}

// indexOf does a linear scan, the ledger is bounded by MaxBidders.
func (a *AuctionState) indexOf(bidder meter.Address) int {
	for i, d := range a.Deposits {
		if d.Bidder == bidder {
			return i
		}
	}
	return -1
}

// DepositOf returns the recorded deposit of bidder, zero if absent.
func (a *AuctionState) DepositOf(bidder meter.Address) uint64 {
	if i := a.indexOf(bidder); i >= 0 {
		return a.Deposits[i].Amount
	}
	return 0
}

// AddDeposit credits bidder and returns the new total.
func (a *AuctionState) AddDeposit(bidder meter.Address, amount uint64) (uint64, error) {
	if i := a.indexOf(bidder); i >= 0 {
		total, err := meter.CheckedAdd(a.Deposits[i].Amount, amount)
		if err != nil {
			return 0, err
		}
		a.Deposits[i].Amount = total
		return total, nil
	}
	if len(a.Deposits) >= MaxBidders {
		return 0, ErrAuctionFull
	}
	a.Deposits = append(a.Deposits, &DepositEntry{Bidder: bidder, Amount: amount})
	return amount, nil
}

// ZeroDeposit clears the entry of bidder and returns what it held.
func (a *AuctionState) ZeroDeposit(bidder meter.Address) uint64 {
	i := a.indexOf(bidder)
	if i < 0 {
		return 0
	}
	amount := a.Deposits[i].Amount
	a.Deposits[i].Amount = 0
	return amount
}

// TotalDeposits sums all non-zero entries.
func (a *AuctionState) TotalDeposits() (uint64, error) {
	var total uint64
	var err error
	for _, d := range a.Deposits {
		if total, err = meter.CheckedAdd(total, d.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MinimumBid is the lowest acceptable next bid.
func (a *AuctionState) MinimumBid() (uint64, error) {
	if a.BidCount == 0 {
		return a.StartPrice, nil
	}
	return meter.CheckedAdd(a.CurrentBid, a.MinIncrement)
}

func (a *AuctionState) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(a)
}

func DecodeAuctionState(raw []byte) (*AuctionState, error) {
	var a AuctionState
	if err := rlp.DecodeBytes(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
