// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

const (
	OP_CLONE    = uint32(1) // ephemeral: install a live copy
	OP_COMMIT   = uint32(2) // base: write committed data, stay delegated
	OP_FINALIZE = uint32(3) // base: write final data and restore the owner
)

var (
	RecordSeed = []byte("delegation")

	AccountDelegatedEvent   = setypes.EventID("AccountDelegated(address,address,address)")
	AccountCommittedEvent   = setypes.EventID("AccountCommitted(address,uint64)")
	AccountUndelegatedEvent = setypes.EventID("AccountUndelegated(address,address)")
)

func GetOpName(op uint32) string {
	switch op {
	case OP_CLONE:
		return "Clone"
	case OP_COMMIT:
		return "Commit"
	case OP_FINALIZE:
		return "Finalize"
	default:
		return "Unknown"
	}
}

// RecordAddress derives the delegation record of a delegated account.
func RecordAddress(account meter.Address) (meter.Address, uint8, error) {
	return meter.FindProgramAddress([][]byte{RecordSeed, account[:]}, meter.DelegationProgramID)
}
