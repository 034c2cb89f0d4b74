// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/state"
)

// DelegationRecord exists on the base domain exactly while an account is delegated.
type DelegationRecord struct {
	Account      meter.Address
	Authority    meter.Address
	OwnerProgram meter.Address
	DelegatedAt  uint64
	LastCommitAt uint64
	Commits      uint64
	Bump         uint8
}

// Snapshot is the data of a delegated account carried between domains.
type Snapshot struct {
	Account      meter.Address
	OwnerProgram meter.Address
	Lamports     uint64
	Data         []byte
	Undelegate   bool
}

func (s *Snapshot) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(s)
}

func DecodeSnapshot(raw []byte) (*Snapshot, error) {
	var s Snapshot
	if err := rlp.DecodeBytes(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetRecord loads the delegation record of account, nil if not delegated.
func GetRecord(st *state.State, account meter.Address) (*DelegationRecord, error) {
	addr, _, err := RecordAddress(account)
	if err != nil {
		return nil, err
	}
	if st.GetOwner(addr) != meter.DelegationProgramID {
		return nil, nil
	}
	var rec DelegationRecord
	if err := rlp.DecodeBytes(st.GetData(addr), &rec); err != nil {
		return nil, err
	}
	if err := meter.VerifyProgramAddress(addr, [][]byte{RecordSeed, account[:]}, rec.Bump, meter.DelegationProgramID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func setRecord(st *state.State, rec *DelegationRecord) error {
	addr, _, err := RecordAddress(rec.Account)
	if err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	st.SetData(addr, data)
	return nil
}
