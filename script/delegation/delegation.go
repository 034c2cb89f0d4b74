// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"log/slog"

	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
	"github.com/meterio/outcry/state"
)

// Delegation is the program that moves account authority between domains.
// Only the validator of the ephemeral domain may clone, commit or finalize.
type Delegation struct {
	validator meter.Address
	logger    *slog.Logger
}

func NewDelegation(validator meter.Address) *Delegation {
	return &Delegation{
		validator: validator,
		logger:    slog.Default().With("pkg", "delegation"),
	}
}

func (d *Delegation) Start() error {
	d.logger.Info("delegation module started", "validator", d.validator)
	return nil
}

func (d *Delegation) Validator() meter.Address {
	return d.validator
}

func (d *Delegation) Handler(senv *setypes.ScriptEnv, payload []byte, to *meter.Address) (seOutput *setypes.ScriptEngineOutput, err error) {
	db, err := DecodeFromBytes(payload)
	if err != nil {
		d.logger.Error("Decode script message failed", "error", err)
		return nil, err
	}
	if senv == nil {
		panic("create delegation enviroment failed")
	}

	d.logger.Debug("received delegation", "body", db.ToString())
	if senv.GetOrigin() != d.validator {
		return nil, ErrUnauthorized
	}

	switch db.Opcode {
	case OP_CLONE:
		err = d.CloneHandler(senv, db)
	case OP_COMMIT:
		err = d.CommitHandler(senv, db)
	case OP_FINALIZE:
		err = d.FinalizeHandler(senv, db)
	default:
		d.logger.Error("unknown Opcode", "Opcode", db.Opcode)
		return nil, ErrUnknownOpcode
	}
	seOutput = senv.GetOutput()
	d.logger.Debug("Leaving script handler for operation", "op", GetOpName(db.Opcode))
	return
}

// Writables returns the accounts a delegation payload may write.
func (d *Delegation) Writables(st *state.State, origin meter.Address, payload []byte) ([]meter.Address, error) {
	db, err := DecodeFromBytes(payload)
	if err != nil {
		return nil, err
	}
	recAddr, _, err := RecordAddress(db.Account)
	if err != nil {
		return nil, err
	}
	addrs := []meter.Address{db.Account, recAddr}
	if db.Opcode == OP_FINALIZE {
		if rec, err := GetRecord(st, db.Account); err == nil && rec != nil {
			addrs = append(addrs, rec.Authority)
		}
	}
	return addrs, nil
}
