// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/state"
)

// AuctionVault carries no balance field, the escrow is the lamports of the account.
type AuctionVault struct {
	Auction meter.Address `json:"auction"`
	Bump    uint8         `json:"bump"`
}

// BidderDeposit mirrors a deposit entry outside the auction record so it can
// be refunded while the record is delegated.
type BidderDeposit struct {
	Auction meter.Address `json:"auction"`
	Bidder  meter.Address `json:"bidder"`
	Amount  uint64        `json:"amount"`
	Bump    uint8         `json:"bump"`
}

// SessionToken binds an ephemeral signer to a bidder for one auction.
type SessionToken struct {
	Auction       meter.Address `json:"auction"`
	Bidder        meter.Address `json:"bidder"`
	SessionSigner meter.Address `json:"sessionSigner"`
	CreatedAt     uint64        `json:"createdAt"`
	Bump          uint8         `json:"bump"`
}

func encode(v interface{}) func() ([]byte, error) {
	return func() ([]byte, error) { return rlp.EncodeToBytes(v) }
}

// GetAuction reads the auction record at addr regardless of who owns the
// account, verifying the stored bump. It returns nil if nothing is stored.
func GetAuction(st *state.State, addr meter.Address) (*AuctionState, error) {
	data := st.GetData(addr)
	if len(data) == 0 {
		return nil, nil
	}
	a, err := DecodeAuctionState(data)
	if err != nil {
		return nil, err
	}
	if err := meter.VerifyProgramAddress(addr, auctionSeeds(a.Seller, a.Asset), a.Bump, meter.OutcryProgramID); err != nil {
		return nil, err
	}
	return a, nil
}

func setAuction(st *state.State, addr meter.Address, a *AuctionState) {
	st.EncodeData(addr, encode(a))
}

// GetVault reads the vault record of auction.
func GetVault(st *state.State, auction meter.Address) (meter.Address, *AuctionVault, error) {
	addr, _, err := VaultAddress(auction)
	if err != nil {
		return meter.Address{}, nil, err
	}
	if st.GetOwner(addr) != meter.OutcryProgramID {
		return addr, nil, ErrAccountNotFound
	}
	var v AuctionVault
	if err := rlp.DecodeBytes(st.GetData(addr), &v); err != nil {
		return addr, nil, err
	}
	if err := meter.VerifyProgramAddress(addr, vaultSeeds(auction), v.Bump, meter.OutcryProgramID); err != nil {
		return addr, nil, err
	}
	return addr, &v, nil
}

// GetBidderDeposit reads the deposit mirror of bidder, nil if closed.
func GetBidderDeposit(st *state.State, auction, bidder meter.Address) (meter.Address, *BidderDeposit, error) {
	addr, _, err := DepositAddress(auction, bidder)
	if err != nil {
		return meter.Address{}, nil, err
	}
	if st.GetOwner(addr) != meter.OutcryProgramID {
		return addr, nil, nil
	}
	var d BidderDeposit
	if err := rlp.DecodeBytes(st.GetData(addr), &d); err != nil {
		return addr, nil, err
	}
	if err := meter.VerifyProgramAddress(addr, depositSeeds(auction, bidder), d.Bump, meter.OutcryProgramID); err != nil {
		return addr, nil, err
	}
	if d.Auction != auction || d.Bidder != bidder {
		return addr, nil, ErrDepositMirrorMismatch
	}
	return addr, &d, nil
}

// GetSession reads the session token of bidder, nil if none.
func GetSession(st *state.State, auction, bidder meter.Address) (*SessionToken, error) {
	addr, _, err := SessionAddress(auction, bidder)
	if err != nil {
		return nil, err
	}
	if st.GetOwner(addr) != meter.OutcryProgramID {
		return nil, nil
	}
	var s SessionToken
	if err := rlp.DecodeBytes(st.GetData(addr), &s); err != nil {
		return nil, err
	}
	if err := meter.VerifyProgramAddress(addr, sessionSeeds(auction, bidder), s.Bump, meter.OutcryProgramID); err != nil {
		return nil, err
	}
	return &s, nil
}
