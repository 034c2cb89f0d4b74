// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/state"
)

// SessionAuthority resolves the signer of a bid to the bidder it acts for.
type SessionAuthority interface {
	Resolve(auction, claimedBidder, signer meter.Address) (meter.Address, error)
}

// StateSessions resolves sessions from the session tokens committed on the
// base domain.
type StateSessions struct {
	newState func() *state.State
}

func NewStateSessions(newState func() *state.State) *StateSessions {
	return &StateSessions{newState: newState}
}

func (s *StateSessions) Resolve(auction, claimedBidder, signer meter.Address) (meter.Address, error) {
	if claimedBidder.IsZero() || claimedBidder == signer {
		return signer, nil
	}
	token, err := GetSession(s.newState(), auction, claimedBidder)
	if err != nil {
		return meter.Address{}, err
	}
	if token == nil || token.SessionSigner != signer || token.Bidder != claimedBidder {
		return meter.Address{}, ErrUnauthorizedBidder
	}
	return claimedBidder, nil
}
