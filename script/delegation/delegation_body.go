// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
)

// DelegationBody is the payload of the delegation program.
type DelegationBody struct {
	Opcode       uint32
	Version      uint32
	Account      meter.Address
	OwnerProgram meter.Address
	Lamports     uint64
	Data         []byte
	Timestamp    uint64
	Nonce        uint64
}

func (db *DelegationBody) ToString() string {
	return fmt.Sprintf("DelegationBody: Opcode=%v, Version=%v, Account=%v, OwnerProgram=%v, Lamports=%v, DataLen=%v, Timestamp=%v, Nonce=%v",
		db.Opcode, db.Version, db.Account, db.OwnerProgram, db.Lamports, len(db.Data), db.Timestamp, db.Nonce)
}

func (db *DelegationBody) String() string {
	return db.ToString()
}

func (db *DelegationBody) UniteHash() (hash meter.Bytes32) {
	hw := meter.NewBlake2b()
	err := rlp.Encode(hw, []interface{}{
		db.Opcode,
		db.Version,
		db.Account,
		db.OwnerProgram,
		db.Lamports,
		db.Data,
	})
	if err != nil {
		return
	}
	hw.Sum(hash[:0])
	return
}

func DecodeFromBytes(bytes []byte) (*DelegationBody, error) {
	db := DelegationBody{}
	err := rlp.DecodeBytes(bytes, &db)
	return &db, err
}

// SnapshotBody builds the body that carries a snapshot across domains.
func SnapshotBody(op uint32, snap *Snapshot, nonce uint64) *DelegationBody {
	return &DelegationBody{
		Opcode:       op,
		Account:      snap.Account,
		OwnerProgram: snap.OwnerProgram,
		Lamports:     snap.Lamports,
		Data:         snap.Data,
		Nonce:        nonce,
	}
}
