// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/outcry"
)

type Vault struct {
	Address  meter.Address `json:"address"`
	Lamports uint64        `json:"lamports"`
}

// Auction is the view of an auction record read from the domain that
// currently holds it.
type Auction struct {
	Address    meter.Address        `json:"address"`
	Source     string               `json:"source"`
	Delegation bridge.Status        `json:"delegation"`
	Record     *outcry.AuctionState `json:"record"`
	Vault      Vault                `json:"vault"`
}

type Deposit struct {
	Auction       meter.Address         `json:"auction"`
	Bidder        meter.Address         `json:"bidder"`
	Entry         uint64                `json:"entry"`
	MirrorAddress meter.Address         `json:"mirrorAddress"`
	Mirror        *outcry.BidderDeposit `json:"mirror"`
	Refundable    uint64                `json:"refundable"`
}

type Derived struct {
	Auction     meter.Address  `json:"auction"`
	AuctionBump uint8          `json:"auctionBump"`
	Vault       meter.Address  `json:"vault"`
	VaultBump   uint8          `json:"vaultBump"`
	Deposit     *meter.Address `json:"deposit,omitempty"`
	Session     *meter.Address `json:"session,omitempty"`
}
