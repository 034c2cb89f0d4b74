// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
)

// Header locates a committed tx within its domain.
type Header struct {
	Domain xenv.DomainKind
	Seq    uint64
	Time   uint64
}

//Event represents tx.Event that can be stored in db.
type Event struct {
	Domain   xenv.DomainKind
	Seq      uint64
	Index    uint32
	Time     uint64
	TxID     meter.Bytes32
	TxOrigin meter.Address //program caller
	Address  meter.Address // always a program address
	Topics   [5]*meter.Bytes32
	Data     []byte
}

//newEvent converts tx.Event to Event.
func newEvent(header *Header, index uint32, txID meter.Bytes32, txOrigin meter.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		Domain:   header.Domain,
		Seq:      header.Seq,
		Index:    index,
		Time:     header.Time,
		TxID:     txID,
		TxOrigin: txOrigin,
		Address:  txEvent.Address,
		Data:     txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

//Transfer represents tx.Transfer that can be stored in db.
type Transfer struct {
	Domain    xenv.DomainKind
	Seq       uint64
	Index     uint32
	Time      uint64
	TxID      meter.Bytes32
	TxOrigin  meter.Address
	Sender    meter.Address
	Recipient meter.Address
	Amount    uint64
}

//newTransfer converts tx.Transfer to Transfer.
func newTransfer(header *Header, index uint32, txID meter.Bytes32, txOrigin meter.Address, transfer *tx.Transfer) *Transfer {
	return &Transfer{
		Domain:    header.Domain,
		Seq:       header.Seq,
		Index:     index,
		Time:      header.Time,
		TxID:      txID,
		TxOrigin:  txOrigin,
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
	}
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *meter.Address // always a program address
	Topics  [5]*meter.Bytes32
}

//EventFilter filter
type EventFilter struct {
	Domain      *xenv.DomainKind
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

type TransferCriteria struct {
	TxOrigin  *meter.Address //who send transaction
	Sender    *meter.Address //who transferred lamports
	Recipient *meter.Address //who recieved lamports
}

type TransferFilter struct {
	Domain      *xenv.DomainKind
	TxID        *meter.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}
