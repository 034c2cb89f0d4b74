// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/delegation"
	"github.com/meterio/outcry/script/outcry"
	setypes "github.com/meterio/outcry/script/types"
	"github.com/meterio/outcry/state"
)

var (
	ScriptPrefix = [4]byte{0xff, 0xff, 0xff, 0xff}

	ErrNotScript          = errors.New("clause data is not a script")
	ErrUnknownModule      = errors.New("unknown module")
	ErrModuleAddrMismatch = errors.New("clause is not sent to the module program")
)

// global data
type ScriptEngine struct {
	logger *slog.Logger
	modReg Registry

	outcry     *outcry.Outcry
	delegation *delegation.Delegation
}

// NewScriptEngine registers the outcry and delegation programs. Both domains
// share one engine, the domain is carried by the script env.
func NewScriptEngine(sessions outcry.SessionAuthority, validator meter.Address) *ScriptEngine {
	se := &ScriptEngine{
		logger: slog.Default().With("pkg", "se"),
	}

	// start all sub modules
	se.StartAllModules(sessions, validator)
	return se
}

func (se *ScriptEngine) StartAllModules(sessions outcry.SessionAuthority, validator meter.Address) {
	se.outcry = ModuleOutcryInit(se, sessions)
	se.delegation = ModuleDelegationInit(se, validator)
}

func (se *ScriptEngine) Outcry() *outcry.Outcry             { return se.outcry }
func (se *ScriptEngine) Delegation() *delegation.Delegation { return se.delegation }

// IsScriptData reports whether clause data carries a script.
func IsScriptData(data []byte) bool {
	n := len(ScriptPrefix) + len(ScriptPattern)
	return len(data) > n &&
		bytes.Equal(data[:len(ScriptPrefix)], ScriptPrefix[:]) &&
		bytes.Equal(data[len(ScriptPrefix):n], ScriptPattern[:])
}

func (se *ScriptEngine) decode(data []byte) (*ScriptData, *Module, error) {
	if !IsScriptData(data) {
		if len(data) >= len(ScriptPrefix)+len(ScriptPattern) {
			se.logger.Debug("Pattern mismatch", "pattern", hex.EncodeToString(data[len(ScriptPrefix):len(ScriptPrefix)+len(ScriptPattern)]))
		}
		return nil, nil, ErrNotScript
	}
	script, err := DecodeScriptData(data[len(ScriptPrefix)+len(ScriptPattern):])
	if err != nil {
		se.logger.Debug("Decode script message failed", "err", err)
		return nil, nil, err
	}

	mod, find := se.modReg.Find(script.Header.GetModID())
	if !find {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownModule, script.Header.GetModID())
	}
	return script, mod, nil
}

func (se *ScriptEngine) HandleScriptData(senv *setypes.ScriptEnv, data []byte, to *meter.Address) (seOutput *setypes.ScriptEngineOutput, err error) {
	script, mod, err := se.decode(data)
	if err != nil {
		return nil, err
	}
	if to == nil || *to != mod.modAddr {
		return nil, ErrModuleAddrMismatch
	}
	se.logger.Debug("script header", "header", script.Header.ToString(), "module", mod.ToString())

	//module handler
	seOutput, err = mod.modHandler(senv, script.Payload, to)
	return
}

// Writables returns the accounts a script clause declares as writable.
func (se *ScriptEngine) Writables(st *state.State, origin meter.Address, data []byte) ([]meter.Address, error) {
	script, mod, err := se.decode(data)
	if err != nil {
		return nil, err
	}
	return mod.modWritables(st, origin, script.Payload)
}

func EncodeScriptData(body interface{}) ([]byte, error) {
	modId := uint32(999)
	switch body.(type) {
	case outcry.OutcryBody:
		modId = OUTCRY_MODULE_ID
	case *outcry.OutcryBody:
		modId = OUTCRY_MODULE_ID

	case delegation.DelegationBody:
		modId = DELEGATION_MODULE_ID
	case *delegation.DelegationBody:
		modId = DELEGATION_MODULE_ID
	default:
		return []byte{}, errors.New("unrecognized body")
	}
	payload, err := rlp.EncodeToBytes(body)
	if err != nil {
		return []byte{}, err
	}
	s := &ScriptData{Header: ScriptHeader{Version: uint32(0), ModID: modId}, Payload: payload}
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return []byte{}, err
	}
	data = append(ScriptPattern[:], data...)
	scriptBytes := append(ScriptPrefix[:], data...)

	return scriptBytes, nil
}

func DecodeScriptData(bytes []byte) (*ScriptData, error) {
	script := ScriptData{}
	err := rlp.DecodeBytes(bytes, &script)
	return &script, err
}

// ParseClause decodes the script carried by clause data.
func ParseClause(data []byte) (*ScriptData, error) {
	if !IsScriptData(data) {
		return nil, ErrNotScript
	}
	return DecodeScriptData(data[len(ScriptPrefix)+len(ScriptPattern):])
}
