// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// FinalizeHandler writes the final ephemeral data to base, hands the account
// back to its owner program and closes the delegation record.
func (d *Delegation) FinalizeHandler(env *setypes.ScriptEnv, db *DelegationBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		d.logger.Debug("Finalize completed", "account", db.Account, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	rec, err := d.checkDelegated(env, db.Account)
	if err != nil {
		return
	}

	state := env.GetState()
	state.SetData(db.Account, db.Data)
	state.SetOwner(db.Account, rec.OwnerProgram)

	recAddr, _, err := RecordAddress(db.Account)
	if err != nil {
		return
	}
	if err = env.CloseProgramAccount(meter.DelegationProgramID, recAddr, rec.Authority); err != nil {
		return
	}

	env.AddEvent(meter.DelegationProgramID, []meter.Bytes32{AccountUndelegatedEvent, setypes.AddressTopic(db.Account)}, rec.OwnerProgram.Bytes())
	return
}
