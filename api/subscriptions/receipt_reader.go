// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/outcry/runtime"
	"github.com/meterio/outcry/xenv"
)

type receiptReader struct {
	domain *xenv.DomainKind
}

func newReceiptReader(domain *xenv.DomainKind) *receiptReader {
	return &receiptReader{domain}
}

func (rr *receiptReader) Read(ev *runtime.ReceiptEvent) []interface{} {
	if rr.domain != nil && *rr.domain != ev.Domain {
		return nil
	}
	return []interface{}{convertReceipt(ev.Domain, ev.Receipt)}
}
