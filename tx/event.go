// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/meterio/outcry/meter"
)

// Event represents a notification emitted by a program.
type Event struct {
	// address of the program emitting the event
	Address meter.Address
	// list of topics provided by the program.
	Topics []meter.Bytes32
	// supplied by the program, usually RLP-encoded
	Data []byte
}

// Events slice of event logs.
type Events []*Event
