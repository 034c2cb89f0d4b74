// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/outcry/runtime"
)

type transferReader struct {
	filter *TransferFilter
}

func newTransferReader(filter *TransferFilter) *transferReader {
	return &transferReader{filter}
}

func (tr *transferReader) Read(ev *runtime.ReceiptEvent) []interface{} {
	var msgs []interface{}
	for _, output := range ev.Receipt.Outputs {
		for _, transfer := range output.Transfers {
			if tr.filter.Match(ev.Domain, ev.Receipt.Origin, transfer) {
				msgs = append(msgs, convertTransfer(ev.Domain, ev.Receipt, transfer))
			}
		}
	}
	return msgs
}
