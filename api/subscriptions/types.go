// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/outcry/api/transactions"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
)

//ReceiptMessage notifies a committed tx
type ReceiptMessage struct {
	Domain    string        `json:"domain"`
	Seq       uint64        `json:"seq"`
	Time      uint64        `json:"time"`
	TxID      meter.Bytes32 `json:"txID"`
	Origin    meter.Address `json:"origin"`
	StateHash meter.Bytes32 `json:"stateHash"`
	Events    int           `json:"events"`
	Transfers int           `json:"transfers"`
}

func convertReceipt(domain xenv.DomainKind, r *tx.Receipt) *ReceiptMessage {
	return &ReceiptMessage{
		Domain:    domain.String(),
		Seq:       r.Seq,
		Time:      r.Time,
		TxID:      r.TxID,
		Origin:    r.Origin,
		StateHash: r.StateHash,
		Events:    len(r.Events()),
		Transfers: len(r.Transfers()),
	}
}

func logMeta(domain xenv.DomainKind, r *tx.Receipt) transactions.LogMeta {
	return transactions.LogMeta{
		Domain:   domain.String(),
		Seq:      r.Seq,
		Time:     r.Time,
		TxID:     r.TxID,
		TxOrigin: r.Origin,
	}
}

//EventMessage event message
type EventMessage struct {
	Address meter.Address        `json:"address"`
	Topics  []meter.Bytes32      `json:"topics"`
	Data    string               `json:"data"`
	Meta    transactions.LogMeta `json:"meta"`
}

func convertEvent(domain xenv.DomainKind, r *tx.Receipt, event *tx.Event) *EventMessage {
	return &EventMessage{
		Address: event.Address,
		Topics:  append([]meter.Bytes32(nil), event.Topics...),
		Data:    hexutil.Encode(event.Data),
		Meta:    logMeta(domain, r),
	}
}

// EventFilter contains options for event filtering.
type EventFilter struct {
	Domain  *xenv.DomainKind
	Address *meter.Address // restricts matches to events created by specific program
	Topic0  *meter.Bytes32
	Topic1  *meter.Bytes32
	Topic2  *meter.Bytes32
	Topic3  *meter.Bytes32
	Topic4  *meter.Bytes32
}

// Match returs whether event matches filter
func (ef *EventFilter) Match(domain xenv.DomainKind, event *tx.Event) bool {
	if ef.Domain != nil && *ef.Domain != domain {
		return false
	}
	if (ef.Address != nil) && (*ef.Address != event.Address) {
		return false
	}

	matchTopic := func(topic *meter.Bytes32, index int) bool {
		if topic != nil {
			if len(event.Topics) <= index {
				return false
			}

			if *topic != event.Topics[index] {
				return false
			}
		}
		return true
	}

	return matchTopic(ef.Topic0, 0) &&
		matchTopic(ef.Topic1, 1) &&
		matchTopic(ef.Topic2, 2) &&
		matchTopic(ef.Topic3, 3) &&
		matchTopic(ef.Topic4, 4)
}

// TransferMessage transfer piped by websocket
type TransferMessage struct {
	Sender    meter.Address        `json:"sender"`
	Recipient meter.Address        `json:"recipient"`
	Amount    uint64               `json:"amount"`
	Meta      transactions.LogMeta `json:"meta"`
}

func convertTransfer(domain xenv.DomainKind, r *tx.Receipt, transfer *tx.Transfer) *TransferMessage {
	return &TransferMessage{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
		Meta:      logMeta(domain, r),
	}
}

// TransferFilter contains options for lamport transfer filtering.
type TransferFilter struct {
	Domain    *xenv.DomainKind
	TxOrigin  *meter.Address // who send tx
	Sender    *meter.Address // who transferred lamports
	Recipient *meter.Address // who received lamports
}

func (tf *TransferFilter) Match(domain xenv.DomainKind, origin meter.Address, transfer *tx.Transfer) bool {
	if tf.Domain != nil && *tf.Domain != domain {
		return false
	}
	if tf.TxOrigin != nil && *tf.TxOrigin != origin {
		return false
	}
	if tf.Sender != nil && *tf.Sender != transfer.Sender {
		return false
	}
	if tf.Recipient != nil && *tf.Recipient != transfer.Recipient {
		return false
	}
	return true
}
