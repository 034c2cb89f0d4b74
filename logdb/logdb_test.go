// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	db, err := logdb.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	txEvent := &tx.Event{
		Address: meter.BytesToAddress([]byte("addr")),
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 97, 48},
	}

	for i := 0; i < 100; i++ {
		header := &logdb.Header{Domain: xenv.Base, Seq: uint64(i), Time: uint64(1000 + i)}
		if err := db.Prepare(header).ForTransaction(meter.BytesToBytes32([]byte("txID")), meter.BytesToAddress([]byte("txOrigin"))).
			Insert(tx.Events{txEvent}, nil).Commit(); err != nil {
			t.Fatal(err)
		}
	}

	limit := 5
	t0 := meter.BytesToBytes32([]byte("topic0"))
	t1 := meter.BytesToBytes32([]byte("topic1"))
	addr := meter.BytesToAddress([]byte("addr"))
	es, err := db.FilterEvents(context.Background(), &logdb.EventFilter{
		Range: &logdb.Range{
			Unit: logdb.Seq,
			From: 0,
			To:   10,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(limit),
		},
		Order: logdb.DESC,
		CriteriaSet: []*logdb.EventCriteria{
			{
				Address: &addr,
			},
			{
				Address: &addr,
				Topics:  [5]*meter.Bytes32{&t0, &t1, nil, nil, nil},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, limit, len(es), "limit should be equal")
	assert.Equal(t, uint64(10), es[0].Seq)
	assert.Equal(t, t1, *es[0].Topics[1])

	other := meter.BytesToBytes32([]byte("other"))
	es, err = db.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Topics: [5]*meter.Bytes32{&other}}},
	})
	require.NoError(t, err)
	assert.Empty(t, es)
}

func TestEventsByDomainAndTime(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ev := &tx.Event{Address: meter.BytesToAddress([]byte("addr"))}
	for i := 0; i < 10; i++ {
		domain := xenv.Base
		if i%2 == 1 {
			domain = xenv.Ephemeral
		}
		header := &logdb.Header{Domain: domain, Seq: uint64(i), Time: uint64(100 + i)}
		require.NoError(t, db.Prepare(header).ForTransaction(meter.Bytes32{}, meter.Address{}).Insert(tx.Events{ev}, nil).Commit())
	}

	er := xenv.Ephemeral
	es, err := db.FilterEvents(context.Background(), &logdb.EventFilter{
		Domain: &er,
		Range:  &logdb.Range{Unit: logdb.Time, From: 103, To: 107},
	})
	require.NoError(t, err)
	assert.Len(t, es, 3)
	for _, e := range es {
		assert.Equal(t, xenv.Ephemeral, e.Domain)
	}
}

func TestTransfers(t *testing.T) {
	db, err := logdb.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	from := meter.BytesToAddress([]byte("from"))
	to := meter.BytesToAddress([]byte("to"))
	count := 100
	for i := 0; i < count; i++ {
		transLog := &tx.Transfer{
			Sender:    from,
			Recipient: to,
			Amount:    ^uint64(0) - uint64(i),
		}
		header := &logdb.Header{Domain: xenv.Base, Seq: uint64(i), Time: uint64(i)}
		if err := db.Prepare(header).ForTransaction(meter.Bytes32{}, from).Insert(nil, tx.Transfers{transLog}).
			Commit(); err != nil {
			t.Fatal(err)
		}
	}

	tf := &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{
			{
				TxOrigin:  &from,
				Recipient: &to,
			},
		},
		Range: &logdb.Range{
			Unit: logdb.Seq,
			From: 0,
			To:   1000,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(count),
		},
		Order: logdb.DESC,
	}
	ts, err := db.FilterTransfers(context.Background(), tf)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, count, len(ts), "transfers searched")
	assert.Equal(t, ^uint64(0)-uint64(count-1), ts[0].Amount)
}

func BenchmarkLog(b *testing.B) {
	db, err := logdb.New(filepath.Join(b.TempDir(), "log.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()
	l := &tx.Event{
		Address: meter.BytesToAddress([]byte("addr")),
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte("data"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch := db.Prepare(&logdb.Header{Domain: xenv.Base, Seq: uint64(i)})
		txBatch := batch.ForTransaction(meter.BytesToBytes32([]byte("txID")), meter.BytesToAddress([]byte("txOrigin")))
		for j := 0; j < 100; j++ {
			txBatch.Insert(tx.Events{l}, nil)
		}

		if err := batch.Commit(); err != nil {
			b.Fatal(err)
		}
	}
}
