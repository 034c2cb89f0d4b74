// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// SessionHandler creates or rotates the session token of the signer. The
// auction is not checked, a token for a bogus auction authorizes nothing.
func (o *Outcry) SessionHandler(env *setypes.ScriptEnv, ob *OutcryBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		o.logger.Debug("Session completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if !env.IsBase() {
		err = ErrBaseOnly
		return
	}
	if ob.SessionSigner.IsZero() {
		err = ErrInvalidSessionSigner
		return
	}
	auction, err := ob.Auction()
	if err != nil {
		return
	}

	bidder := env.GetOrigin()
	addr, bump, err := SessionAddress(auction, bidder)
	if err != nil {
		return
	}
	token := &SessionToken{
		Auction:       auction,
		Bidder:        bidder,
		SessionSigner: ob.SessionSigner,
		CreatedAt:     env.Now(),
		Bump:          bump,
	}
	data, err := encode(token)()
	if err != nil {
		return
	}

	state := env.GetState()
	switch state.GetOwner(addr) {
	case meter.OutcryProgramID:
		state.SetData(addr, data)
	default:
		if err = env.CreateProgramAccount(meter.OutcryProgramID, addr, data); err != nil {
			return
		}
	}

	o.logger.Info("session created", "auction", auction, "bidder", bidder, "signer", ob.SessionSigner)
	err = emit(env, SessionCreatedEvent, auction, &SessionCreated{Bidder: bidder, SessionSigner: ob.SessionSigner}, setypes.AddressTopic(bidder))
	return
}
