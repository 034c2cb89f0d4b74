// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"encoding/binary"
	"time"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// CommitHandler writes ephemeral data back to the base account, which stays delegated.
func (d *Delegation) CommitHandler(env *setypes.ScriptEnv, db *DelegationBody) (err error) {
	var ret []byte
	start := time.Now()
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
		d.logger.Debug("Commit completed", "account", db.Account, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	rec, err := d.checkDelegated(env, db.Account)
	if err != nil {
		return
	}

	state := env.GetState()
	state.SetData(db.Account, db.Data)
	rec.LastCommitAt = env.Now()
	rec.Commits++
	if err = setRecord(state, rec); err != nil {
		return
	}

	var commits [8]byte
	binary.BigEndian.PutUint64(commits[:], rec.Commits)
	env.AddEvent(meter.DelegationProgramID, []meter.Bytes32{AccountCommittedEvent, setypes.AddressTopic(db.Account)}, commits[:])
	return
}

func (d *Delegation) checkDelegated(env *setypes.ScriptEnv, account meter.Address) (*DelegationRecord, error) {
	if !env.IsBase() {
		return nil, ErrBaseOnly
	}
	state := env.GetState()
	if state.GetOwner(account) != meter.DelegationProgramID {
		return nil, ErrNotDelegated
	}
	rec, err := GetRecord(state, account)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotDelegated
	}
	return rec, nil
}
