// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/outcry/runtime"
)

type eventReader struct {
	filter *EventFilter
}

func newEventReader(filter *EventFilter) *eventReader {
	return &eventReader{filter}
}

func (er *eventReader) Read(ev *runtime.ReceiptEvent) []interface{} {
	var msgs []interface{}
	for _, output := range ev.Receipt.Outputs {
		for _, event := range output.Events {
			if er.filter.Match(ev.Domain, event) {
				msgs = append(msgs, convertEvent(ev.Domain, ev.Receipt, event))
			}
		}
	}
	return msgs
}
