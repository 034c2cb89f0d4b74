// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

var (
	AuctionCreatedEvent     = setypes.EventID("AuctionCreated(address,address,address,uint64,uint64,uint64)")
	AuctionStartedEvent     = setypes.EventID("AuctionStarted(address,uint64,uint64)")
	DepositMadeEvent        = setypes.EventID("DepositMade(address,address,uint64,uint64)")
	BidPlacedEvent          = setypes.EventID("BidPlaced(address,address,uint64,uint64)")
	AuctionEndedEvent       = setypes.EventID("AuctionEnded(address,address,uint64,uint64)")
	AuctionSettledEvent     = setypes.EventID("AuctionSettled(address,address,uint64)")
	AuctionCancelledEvent   = setypes.EventID("AuctionCancelled(address)")
	RefundClaimedEvent      = setypes.EventID("RefundClaimed(address,address,uint64,bool)")
	SessionCreatedEvent     = setypes.EventID("SessionCreated(address,address,address)")
	AuctionDelegatedEvent   = setypes.EventID("AuctionDelegated(address)")
	AuctionUndelegatedEvent = setypes.EventID("AuctionUndelegated(address)")
	AuctionCommittedEvent   = setypes.EventID("AuctionCommitted(address)")
)

var eventNames = map[meter.Bytes32]string{
	AuctionCreatedEvent:     "AuctionCreated",
	AuctionStartedEvent:     "AuctionStarted",
	DepositMadeEvent:        "DepositMade",
	BidPlacedEvent:          "BidPlaced",
	AuctionEndedEvent:       "AuctionEnded",
	AuctionSettledEvent:     "AuctionSettled",
	AuctionCancelledEvent:   "AuctionCancelled",
	RefundClaimedEvent:      "RefundClaimed",
	SessionCreatedEvent:     "SessionCreated",
	AuctionDelegatedEvent:   "AuctionDelegated",
	AuctionUndelegatedEvent: "AuctionUndelegated",
	AuctionCommittedEvent:   "AuctionCommitted",
}

// EventName returns the name of a notification topic, empty if unknown.
func EventName(topic meter.Bytes32) string {
	return eventNames[topic]
}

type AuctionCreated struct {
	Seller       meter.Address
	Asset        meter.Address
	StartPrice   uint64
	MinIncrement uint64
	Duration     uint64
}

type AuctionStarted struct {
	StartTime uint64
	EndTime   uint64
}

type DepositMade struct {
	Bidder meter.Address
	Amount uint64
	Total  uint64
}

type BidPlaced struct {
	Bidder   meter.Address
	Amount   uint64
	BidCount uint64
}

type AuctionEnded struct {
	Winner     meter.Address
	WinningBid uint64
	TotalBids  uint64
}

type AuctionSettled struct {
	Winner meter.Address
	Payout uint64
}

type RefundClaimed struct {
	Bidder    meter.Address
	Amount    uint64
	Emergency bool
}

type SessionCreated struct {
	Bidder        meter.Address
	SessionSigner meter.Address
}

// emit records a notification. The auction is always the second topic.
func emit(env *setypes.ScriptEnv, id meter.Bytes32, auction meter.Address, payload interface{}, extra ...meter.Bytes32) error {
	var data []byte
	if payload != nil {
		var err error
		if data, err = rlp.EncodeToBytes(payload); err != nil {
			return err
		}
	}
	topics := append([]meter.Bytes32{id, setypes.AddressTopic(auction)}, extra...)
	env.AddEvent(meter.OutcryProgramID, topics, data)
	return nil
}
