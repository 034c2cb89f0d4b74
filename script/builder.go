// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
)

// Builder is used to build a script clause.
type Builder struct {
	Header  ScriptHeader
	Payload []byte
}

// SetVersion sets script's version.
func (b *Builder) SetVersion(v uint32) *Builder {
	b.Header.Version = v
	return b
}

func (b *Builder) SetModID(id uint32) *Builder {
	b.Header.ModID = id
	return b
}

// SetPayload sets the module payload.
func (b *Builder) SetPayload(p []byte) *Builder {
	b.Payload = p
	return b
}

// Build build a script object.
func (b *Builder) Build() *ScriptData {
	return &ScriptData{
		Header:  b.Header,
		Payload: b.Payload,
	}
}

// Clause wraps the script into a clause sent to program.
func (b *Builder) Clause(program meter.Address) (*tx.Clause, error) {
	data, err := rlp.EncodeToBytes(b.Build())
	if err != nil {
		return nil, err
	}
	data = append(ScriptPattern[:], data...)
	return tx.NewClause(program).WithData(append(ScriptPrefix[:], data...)), nil
}

// OutcryClause encodes an outcry body into a clause.
func OutcryClause(body interface{}) (*tx.Clause, error) {
	return bodyClause(meter.OutcryProgramID, body)
}

// DelegationClause encodes a delegation body into a clause.
func DelegationClause(body interface{}) (*tx.Clause, error) {
	return bodyClause(meter.DelegationProgramID, body)
}

func bodyClause(program meter.Address, body interface{}) (*tx.Clause, error) {
	data, err := EncodeScriptData(body)
	if err != nil {
		return nil, err
	}
	return tx.NewClause(program).WithData(data), nil
}
