// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/delegation"
	"github.com/meterio/outcry/script/outcry"
)

const (
	OUTCRY_MODULE_NAME = string("outcry")
	OUTCRY_MODULE_ID   = uint32(1000)

	DELEGATION_MODULE_NAME = string("delegation")
	DELEGATION_MODULE_ID   = uint32(1001)
)

func ModuleOutcryInit(se *ScriptEngine, sessions outcry.SessionAuthority) *outcry.Outcry {
	o := outcry.NewOutcry(sessions)
	if o == nil {
		panic("init outcry module failed")
	}

	mod := &Module{
		modName:      OUTCRY_MODULE_NAME,
		modID:        OUTCRY_MODULE_ID,
		modAddr:      meter.OutcryProgramID,
		modHandler:   o.Handler,
		modWritables: o.Writables,
	}
	if err := se.modReg.Register(OUTCRY_MODULE_ID, mod); err != nil {
		panic("register outcry module failed")
	}

	o.Start()
	se.logger.Info("ScriptEngine", "started module", mod.modName)
	return o
}

func ModuleDelegationInit(se *ScriptEngine, validator meter.Address) *delegation.Delegation {
	d := delegation.NewDelegation(validator)
	if d == nil {
		panic("init delegation module failed")
	}

	mod := &Module{
		modName:      DELEGATION_MODULE_NAME,
		modID:        DELEGATION_MODULE_ID,
		modAddr:      meter.DelegationProgramID,
		modHandler:   d.Handler,
		modWritables: d.Writables,
	}
	if err := se.modReg.Register(DELEGATION_MODULE_ID, mod); err != nil {
		panic("register delegation module failed")
	}

	d.Start()
	se.logger.Info("ScriptEngine", "started module", mod.modName)
	return d
}
