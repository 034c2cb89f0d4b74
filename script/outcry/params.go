// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"github.com/meterio/outcry/meter"
)

// the global variables in outcry
var (
	AuctionSeed = []byte("auction")
	VaultSeed   = []byte("vault")
	DepositSeed = []byte("deposit")
	SessionSeed = []byte("session")
)

const (
	OP_CREATE           = uint32(1)
	OP_START            = uint32(2)
	OP_DEPOSIT          = uint32(3)
	OP_BID              = uint32(4)
	OP_END              = uint32(5)
	OP_SETTLE           = uint32(6)
	OP_CANCEL           = uint32(7)
	OP_CLAIM_REFUND     = uint32(8)
	OP_EMERGENCY_REFUND = uint32(9)
	OP_SESSION          = uint32(10)
	OP_DELEGATE         = uint32(11)
	OP_UNDELEGATE       = uint32(12)
	OP_COMMIT           = uint32(13)
	OP_RECONCILE        = uint32(14)
)

const (
	// MaxBidders bounds the deposit ledger of one auction.
	MaxBidders = 32
)

func GetOpName(op uint32) string {
	switch op {
	case OP_CREATE:
		return "Create"
	case OP_START:
		return "Start"
	case OP_DEPOSIT:
		return "Deposit"
	case OP_BID:
		return "Bid"
	case OP_END:
		return "End"
	case OP_SETTLE:
		return "Settle"
	case OP_CANCEL:
		return "Cancel"
	case OP_CLAIM_REFUND:
		return "ClaimRefund"
	case OP_EMERGENCY_REFUND:
		return "EmergencyRefund"
	case OP_SESSION:
		return "Session"
	case OP_DELEGATE:
		return "Delegate"
	case OP_UNDELEGATE:
		return "Undelegate"
	case OP_COMMIT:
		return "Commit"
	case OP_RECONCILE:
		return "Reconcile"
	default:
		return "Unknown"
	}
}

func auctionSeeds(seller, asset meter.Address) [][]byte {
	return [][]byte{AuctionSeed, seller[:], asset[:]}
}

func vaultSeeds(auction meter.Address) [][]byte {
	return [][]byte{VaultSeed, auction[:]}
}

func depositSeeds(auction, bidder meter.Address) [][]byte {
	return [][]byte{DepositSeed, auction[:], bidder[:]}
}

func sessionSeeds(auction, bidder meter.Address) [][]byte {
	return [][]byte{SessionSeed, auction[:], bidder[:]}
}

// AuctionAddress derives the auction record of seller for asset.
func AuctionAddress(seller, asset meter.Address) (meter.Address, uint8, error) {
	return meter.FindProgramAddress(auctionSeeds(seller, asset), meter.OutcryProgramID)
}

// VaultAddress derives the escrow vault of an auction.
func VaultAddress(auction meter.Address) (meter.Address, uint8, error) {
	return meter.FindProgramAddress(vaultSeeds(auction), meter.OutcryProgramID)
}

// DepositAddress derives the deposit mirror of bidder in an auction.
func DepositAddress(auction, bidder meter.Address) (meter.Address, uint8, error) {
	return meter.FindProgramAddress(depositSeeds(auction, bidder), meter.OutcryProgramID)
}

// SessionAddress derives the session token of bidder in an auction.
func SessionAddress(auction, bidder meter.Address) (meter.Address, uint8, error) {
	return meter.FindProgramAddress(sessionSeeds(auction, bidder), meter.OutcryProgramID)
}

func mustAddress(addr meter.Address, _ uint8, err error) meter.Address {
	if err != nil {
		panic(err)
	}
	return addr
}
