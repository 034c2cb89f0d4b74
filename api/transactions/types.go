// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
)

// RawTx carries a hex encoded rlp signed tx.
type RawTx struct {
	Raw string `json:"raw"`
}

// LogMeta locates an event or transfer within its domain.
type LogMeta struct {
	Domain   string        `json:"domain"`
	Seq      uint64        `json:"seq"`
	Time     uint64        `json:"time"`
	TxID     meter.Bytes32 `json:"txID"`
	TxOrigin meter.Address `json:"txOrigin"`
}

type Event struct {
	Address meter.Address   `json:"address"`
	Topics  []meter.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
}

type Transfer struct {
	Sender    meter.Address `json:"sender"`
	Recipient meter.Address `json:"recipient"`
	Amount    uint64        `json:"amount"`
}

type Output struct {
	Data      string      `json:"data"`
	Events    []*Event    `json:"events"`
	Transfers []*Transfer `json:"transfers"`
}

// Receipt for json marshal
type Receipt struct {
	TxID      meter.Bytes32 `json:"txID"`
	Origin    meter.Address `json:"origin"`
	Domain    string        `json:"domain"`
	Seq       uint64        `json:"seq"`
	Time      uint64        `json:"time"`
	Reverted  bool          `json:"reverted"`
	StateHash meter.Bytes32 `json:"stateHash"`
	Outputs   []*Output     `json:"outputs"`
	Error     string        `json:"error,omitempty"`
	Class     string        `json:"class,omitempty"`
}

func convertReceipt(r *tx.Receipt) *Receipt {
	receipt := &Receipt{
		TxID:      r.TxID,
		Origin:    r.Origin,
		Domain:    xenv.DomainKind(r.DomainTag).String(),
		Seq:       r.Seq,
		Time:      r.Time,
		Reverted:  r.Reverted,
		StateHash: r.StateHash,
		Outputs:   make([]*Output, len(r.Outputs)),
	}
	for i, output := range r.Outputs {
		otp := &Output{
			Data:      hexutil.Encode(output.Data),
			Events:    make([]*Event, len(output.Events)),
			Transfers: make([]*Transfer, len(output.Transfers)),
		}
		for j, ev := range output.Events {
			event := &Event{
				Address: ev.Address,
				Data:    hexutil.Encode(ev.Data),
				Topics:  make([]meter.Bytes32, len(ev.Topics)),
			}
			copy(event.Topics, ev.Topics)
			otp.Events[j] = event
		}
		for j, tr := range output.Transfers {
			otp.Transfers[j] = &Transfer{
				Sender:    tr.Sender,
				Recipient: tr.Recipient,
				Amount:    tr.Amount,
			}
		}
		receipt.Outputs[i] = otp
	}
	return receipt
}
