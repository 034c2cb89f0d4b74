// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import "time"

// Program identities. Every account carries one of these as its owner tag.
var (
	SystemProgramID     = Address{}
	OutcryProgramID     = BytesToAddress([]byte("outcry-program"))
	DelegationProgramID = BytesToAddress([]byte("delegation-program"))
)

const (
	// LamportsPerSol is the number of lamports in one native unit.
	LamportsPerSol uint64 = 1000000000

	// MaxClockDrift tolerated between the node clock and ntp before warning.
	MaxClockDrift = 5 * time.Second
)
