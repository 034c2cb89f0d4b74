// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// CloneHandler installs the live copy of a delegated account on the ephemeral domain.
func (d *Delegation) CloneHandler(env *setypes.ScriptEnv, db *DelegationBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		d.logger.Debug("Clone completed", "account", db.Account, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if env.IsBase() {
		err = ErrEphemeralOnly
		return
	}
	state := env.GetState()
	if state.Exists(db.Account) {
		d.logger.Info("ephemeral copy already present", "account", db.Account)
		err = ErrAlreadyDelegated
		return
	}

	state.SetOwner(db.Account, db.OwnerProgram)
	state.SetLamports(db.Account, db.Lamports)
	state.SetData(db.Account, db.Data)
	return
}
