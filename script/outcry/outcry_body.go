// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
)

// OutcryBody is the payload of every outcry instruction. Fields unused by an
// opcode are left zero.
type OutcryBody struct {
	Opcode        uint32
	Version       uint32
	Seller        meter.Address
	Asset         meter.Address
	Bidder        meter.Address
	Amount        uint64
	StartPrice    uint64
	MinIncrement  uint64
	Duration      uint64
	SessionSigner meter.Address
	Timestamp     uint64
	Nonce         uint64
}

func (ob *OutcryBody) ToString() string {
	return fmt.Sprintf("OutcryBody: Opcode=%v, Version=%v, Seller=%v, Asset=%v, Bidder=%v, Amount=%v, StartPrice=%v, MinIncrement=%v, Duration=%v, SessionSigner=%v, Timestamp=%v, Nonce=%v",
		ob.Opcode, ob.Version, ob.Seller, ob.Asset, ob.Bidder, ob.Amount, ob.StartPrice, ob.MinIncrement, ob.Duration, ob.SessionSigner, ob.Timestamp, ob.Nonce)
}

func (ob *OutcryBody) String() string {
	return ob.ToString()
}

// Auction derives the auction record addressed by the body.
func (ob *OutcryBody) Auction() (meter.Address, error) {
	addr, _, err := AuctionAddress(ob.Seller, ob.Asset)
	return addr, err
}

func (ob *OutcryBody) UniteHash() (hash meter.Bytes32) {
	hw := meter.NewBlake2b()
	err := rlp.Encode(hw, []interface{}{
		ob.Opcode,
		ob.Version,
		ob.Seller,
		ob.Asset,
		ob.Bidder,
		ob.Amount,
		ob.StartPrice,
		ob.MinIncrement,
		ob.Duration,
		ob.SessionSigner,
	})
	if err != nil {
		return
	}
	hw.Sum(hash[:0])
	return
}

func DecodeFromBytes(bytes []byte) (*OutcryBody, error) {
	ob := OutcryBody{}
	err := rlp.DecodeBytes(bytes, &ob)
	return &ob, err
}
