// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"github.com/meterio/outcry/api/transactions"
	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/xenv"
)

type FilteredTransfer struct {
	Sender    meter.Address        `json:"sender"`
	Recipient meter.Address        `json:"recipient"`
	Amount    uint64               `json:"amount"`
	Meta      transactions.LogMeta `json:"meta"`
}

func convertTransfer(transfer *logdb.Transfer) *FilteredTransfer {
	return &FilteredTransfer{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
		Meta: transactions.LogMeta{
			Domain:   transfer.Domain.String(),
			Seq:      transfer.Seq,
			Time:     transfer.Time,
			TxID:     transfer.TxID,
			TxOrigin: transfer.TxOrigin,
		},
	}
}

type TransferCriteria struct {
	TxOrigin  *meter.Address `json:"txOrigin"`
	Sender    *meter.Address `json:"sender"`
	Recipient *meter.Address `json:"recipient"`
}

type TransferFilter struct {
	Domain      string              `json:"domain"` // empty for both domains
	TxID        *meter.Bytes32      `json:"txID"`
	CriteriaSet []*TransferCriteria `json:"criteriaSet"`
	Range       *logdb.Range        `json:"range"`
	Options     *logdb.Options      `json:"options"`
	Order       logdb.Order         `json:"order"`
}

func convertTransferFilter(filter *TransferFilter) (*logdb.TransferFilter, error) {
	f := &logdb.TransferFilter{
		TxID:    filter.TxID,
		Range:   filter.Range,
		Options: filter.Options,
		Order:   filter.Order,
	}
	if filter.Domain != "" {
		kind, err := xenv.ParseDomainKind(filter.Domain)
		if err != nil {
			return nil, err
		}
		f.Domain = &kind
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.TransferCriteria{
			TxOrigin:  c.TxOrigin,
			Sender:    c.Sender,
			Recipient: c.Recipient,
		})
	}
	return f, nil
}
