// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/meterio/outcry/meter"
)

// EventID returns the topic identifying an event signature,
// e.g. "DepositMade(address,address,uint64,uint64)".
func EventID(signature string) meter.Bytes32 {
	return meter.Blake2b([]byte(signature))
}

// AddressTopic left pads an address into a topic.
func AddressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr[:])
}
