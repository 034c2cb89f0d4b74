// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/meterio/outcry/meter"
)

// Receipt is the outcome of executing a tx on a domain.
type Receipt struct {
	TxID      meter.Bytes32
	Origin    meter.Address
	DomainTag byte
	Seq       uint64 // execution sequence within the domain
	Time      uint64 // domain clock at execution
	Reverted  bool
	StateHash meter.Bytes32 // digest of committed changes
	Outputs   []*Output
}

// Output output of clause execution.
type Output struct {
	// return data of the program
	Data []byte
	// events produced by the clause
	Events Events
	// transfer occurred in clause
	Transfers Transfers
}

// Events returns all events of the receipt.
func (r *Receipt) Events() Events {
	var evs Events
	for _, o := range r.Outputs {
		evs = append(evs, o.Events...)
	}
	return evs
}

// Transfers returns all transfers of the receipt.
func (r *Receipt) Transfers() Transfers {
	var trs Transfers
	for _, o := range r.Outputs {
		trs = append(trs, o.Transfers...)
	}
	return trs
}
