// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	sqlite3 "github.com/mattn/go-sqlite3"
)

var logger = slog.Default().With("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			err := db.Close()
			if err != nil {
				logger.Warn("could not close logdb", "err", err)
			}
		}
	}()
	// an in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() {
	err := db.db.Close()
	if err != nil {
		logger.Warn("could not close logdb", "err", err)
	}
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

func (db *LogDB) Prepare(header *Header) *Batch {
	return &Batch{
		db:     db.db,
		header: header,
	}
}

func rangeClause(r *Range, args []interface{}) (string, []interface{}) {
	if r == nil {
		return "", args
	}
	condition := "seq"
	if r.Unit == Time {
		condition = "time"
	}
	stmt := " AND " + condition + " >= ? "
	args = append(args, r.From)
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND " + condition + " <= ? "
	}
	return stmt, args
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Domain != nil {
		args = append(args, uint8(*filter.Domain))
		stmt += " AND domain = ? "
	}
	var cond string
	cond, args = rangeClause(filter.Range, args)
	stmt += cond
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ? "
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += ")"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY domain DESC, seq DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY domain ASC, seq ASC, eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		return db.queryTransfers(ctx, "SELECT * FROM transfer")
	}
	var args []interface{}
	stmt := "SELECT * FROM transfer WHERE 1"
	if filter.Domain != nil {
		args = append(args, uint8(*filter.Domain))
		stmt += " AND domain = ? "
	}
	var cond string
	cond, args = rangeClause(filter.Range, args)
	stmt += cond
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ? "
	}
	length := len(filter.CriteriaSet)
	if length > 0 {
		for i, criteria := range filter.CriteriaSet {
			if i == 0 {
				stmt += " AND (( 1 "
			} else {
				stmt += " OR ( 1 "
			}
			if criteria.TxOrigin != nil {
				args = append(args, criteria.TxOrigin.Bytes())
				stmt += " AND txOrigin = ? "
			}
			if criteria.Sender != nil {
				args = append(args, criteria.Sender.Bytes())
				stmt += " AND sender = ? "
			}
			if criteria.Recipient != nil {
				args = append(args, criteria.Recipient.Bytes())
				stmt += " AND recipient = ? "
			}
			if i == length-1 {
				stmt += " )) "
			} else {
				stmt += " ) "
			}
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY domain DESC, seq DESC, transferIndex DESC "
	} else {
		stmt += " ORDER BY domain ASC, seq ASC, transferIndex ASC "
	}
	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			domain   uint8
			seq      uint64
			index    uint32
			evTime   uint64
			txID     []byte
			txOrigin []byte
			address  []byte
			topics   [5][]byte
			data     []byte
		)
		if err := rows.Scan(
			&domain,
			&seq,
			&index,
			&evTime,
			&txID,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Domain:   xenv.DomainKind(domain),
			Seq:      seq,
			Index:    index,
			Time:     evTime,
			TxID:     meter.BytesToBytes32(txID),
			TxOrigin: meter.BytesToAddress(txOrigin),
			Address:  meter.BytesToAddress(address),
			Data:     data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := meter.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...interface{}) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			domain    uint8
			seq       uint64
			index     uint32
			trTime    uint64
			txID      []byte
			txOrigin  []byte
			sender    []byte
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(
			&domain,
			&seq,
			&index,
			&trTime,
			&txID,
			&txOrigin,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		trans := &Transfer{
			Domain:    xenv.DomainKind(domain),
			Seq:       seq,
			Index:     index,
			Time:      trTime,
			TxID:      meter.BytesToBytes32(txID),
			TxOrigin:  meter.BytesToAddress(txOrigin),
			Sender:    meter.BytesToAddress(sender),
			Recipient: meter.BytesToAddress(recipient),
		}
		if len(amount) == 8 {
			trans.Amount = binary.BigEndian.Uint64(amount)
		}
		transfers = append(transfers, trans)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func topicValue(topic *meter.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

func amountValue(amount uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], amount)
	return b[:]
}

// Batch collects the logs of one committed tx.
type Batch struct {
	db        *sql.DB
	header    *Header
	events    []*Event
	transfers []*Transfer
}

func (bb *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := bb.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		if e := tx.Rollback(); e != nil {
			logger.Warn("could not rollback", "err", e)
		}
		return err
	}
	return tx.Commit()
}

func (bb *Batch) Commit() error {
	return bb.execInTx(func(tx *sql.Tx) error {
		for _, event := range bb.events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(domain, seq, eventIndex, time, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES ( ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				uint8(event.Domain),
				event.Seq,
				event.Index,
				event.Time,
				event.TxID.Bytes(),
				event.TxOrigin.Bytes(),
				event.Address.Bytes(),
				topicValue(event.Topics[0]),
				topicValue(event.Topics[1]),
				topicValue(event.Topics[2]),
				topicValue(event.Topics[3]),
				topicValue(event.Topics[4]),
				event.Data,
			); err != nil {
				return err
			}
		}

		for _, transfer := range bb.transfers {
			if _, err := tx.Exec("INSERT OR REPLACE INTO transfer(domain, seq, transferIndex, time, txID, txOrigin, sender, recipient, amount) VALUES ( ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				uint8(transfer.Domain),
				transfer.Seq,
				transfer.Index,
				transfer.Time,
				transfer.TxID.Bytes(),
				transfer.TxOrigin.Bytes(),
				transfer.Sender.Bytes(),
				transfer.Recipient.Bytes(),
				amountValue(transfer.Amount),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bb *Batch) ForTransaction(txID meter.Bytes32, txOrigin meter.Address) struct {
	Insert func(tx.Events, tx.Transfers) *Batch
} {
	return struct {
		Insert func(events tx.Events, transfers tx.Transfers) *Batch
	}{
		func(events tx.Events, transfers tx.Transfers) *Batch {
			for _, event := range events {
				bb.events = append(bb.events, newEvent(bb.header, uint32(len(bb.events)), txID, txOrigin, event))
			}
			for _, transfer := range transfers {
				bb.transfers = append(bb.transfers, newTransfer(bb.header, uint32(len(bb.transfers)), txID, txOrigin, transfer))
			}
			return bb
		},
	}
}
