// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/delegation"
	"github.com/meterio/outcry/script/outcry"
)

var (
	ScriptPattern = [4]byte{0xde, 0xad, 0xbe, 0xef} //pattern: deadbeef
)

type ScriptData struct {
	Header  ScriptHeader
	Payload []byte
}

// UniteHash identifies a script by the meaningful fields of its body, so that
// timestamps and nonces do not change it.
func (s *ScriptData) UniteHash() (hash meter.Bytes32) {
	hw := meter.NewBlake2b()

	var bodyHash meter.Bytes32
	var payloadHash meter.Bytes32
	payloadBlake := meter.NewBlake2b()
	payloadBlake.Write(s.Payload)
	payloadBlake.Sum(payloadHash[:0])
	switch s.Header.ModID {
	case OUTCRY_MODULE_ID:
		ob, err := outcry.DecodeFromBytes(s.Payload)
		if err != nil {
			slog.Debug("could not decode outcry, use payload directly for unite hash", "err", err)
			bodyHash = payloadHash
		} else {
			bodyHash = ob.UniteHash()
		}
	case DELEGATION_MODULE_ID:
		db, err := delegation.DecodeFromBytes(s.Payload)
		if err != nil {
			slog.Debug("could not decode delegation, use payload directly for unite hash", "err", err)
			bodyHash = payloadHash
		} else {
			bodyHash = db.UniteHash()
		}
	default:
		bodyHash = payloadHash
	}
	err := rlp.Encode(hw, []interface{}{
		s.Header.Version,
		s.Header.ModID,
		bodyHash,
	})
	if err != nil {
		return
	}

	hw.Sum(hash[:0])
	return
}

type ScriptHeader struct {
	Version uint32
	ModID   uint32
}

// Version returns the version
func (sh *ScriptHeader) GetVersion() uint32 { return sh.Version }
func (sh *ScriptHeader) GetModID() uint32   { return sh.ModID }

func (sh *ScriptHeader) ToString() string {
	return fmt.Sprintf("ScriptHeader:::  Version: %v, ModID: %v", sh.Version, sh.ModID)
}
