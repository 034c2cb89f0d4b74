// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/outcry/api/transfers"
	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	from = meter.BytesToAddress([]byte("from"))
	to   = meter.BytesToAddress([]byte("to"))
)

func TestTransfers(t *testing.T) {
	ts := initLogServer(t)
	defer ts.Close()

	limit := 5
	tf := &transfers.TransferFilter{
		CriteriaSet: []*transfers.TransferCriteria{
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
			Limit:  uint64(limit),
		},
		Order: logdb.DESC,
	}
	res, code := httpPost(t, ts.URL+"/logs/transfers", tf)
	require.Equal(t, http.StatusOK, code, string(res))
	var tLogs []*transfers.FilteredTransfer
	require.NoError(t, json.Unmarshal(res, &tLogs))
	require.Equal(t, limit, len(tLogs), "should be `limit` transfers")
	assert.Equal(t, uint64(10), tLogs[0].Amount)
	assert.Equal(t, from, tLogs[0].Sender)
	assert.Equal(t, uint64(99), tLogs[0].Meta.Seq)

	tf.Domain = "ephemeral"
	res, code = httpPost(t, ts.URL+"/logs/transfers", tf)
	require.Equal(t, http.StatusOK, code, string(res))
	require.NoError(t, json.Unmarshal(res, &tLogs))
	assert.Empty(t, tLogs)
}

func initLogServer(t *testing.T) *httptest.Server {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for i := 0; i < 100; i++ {
		transLog := &tx.Transfer{
			Sender:    from,
			Recipient: to,
			Amount:    10,
		}
		header := &logdb.Header{Domain: xenv.Base, Seq: uint64(i), Time: uint64(1000 + i)}
		err := db.Prepare(header).ForTransaction(meter.BytesToBytes32([]byte{byte(i)}), from).
			Insert(nil, tx.Transfers{transLog}).Commit()
		require.NoError(t, err)
	}

	router := mux.NewRouter()
	transfers.New(db).Mount(router, "/logs/transfers")
	return httptest.NewServer(router)
}

func httpPost(t *testing.T, url string, obj interface{}) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	return r, res.StatusCode
}
