// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/api"
	"github.com/meterio/outcry/api/transactions"
	"github.com/meterio/outcry/cmd/outcry/node"
	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/lvldb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/tx"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asset = meter.BytesToAddress([]byte("sculpture"))

func keyOf(name string) *ecdsa.PrivateKey {
	key, err := crypto.ToECDSA(crypto.Keccak256([]byte(name)))
	if err != nil {
		panic(err)
	}
	return key
}

func addrOf(name string) meter.Address {
	return meter.Address(crypto.PubkeyToAddress(keyOf(name).PublicKey))
}

type client struct {
	t     *testing.T
	node  *node.Node
	url   string
	nonce uint64
}

func newClient(t *testing.T) *client {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(logDB.Close)

	n, err := node.New(db, node.Options{
		Genesis: genesis.New("api", []genesis.Alloc{
			{Address: addrOf("seller"), Lamports: 1_000_000},
			{Address: addrOf("alice"), Lamports: 1_000_000},
		}),
		Validator: keyOf("validator"),
		Clock:     domain.NewManualClock(1_700_000_000),
		LogDB:     logDB,
	})
	require.NoError(t, err)

	handler, closeSubs := api.New(n, "*")
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
	})
	return &client{t: t, node: n, url: ts.URL}
}

func (c *client) rawTx(kind xenv.DomainKind, signer string, ob *outcry.OutcryBody) (string, meter.Bytes32) {
	clause, err := script.OutcryClause(ob)
	require.NoError(c.t, err)
	c.nonce++
	signed, err := new(tx.Builder).DomainTag(byte(kind)).Nonce(c.nonce).Clause(clause).Build().Sign(keyOf(signer))
	require.NoError(c.t, err)
	raw, err := rlp.EncodeToBytes(signed)
	require.NoError(c.t, err)
	return hexutil.Encode(raw), signed.ID()
}

func (c *client) post(path string, obj interface{}) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(c.t, err)
	res, err := http.Post(c.url+path, "application/json", bytes.NewReader(data))
	require.NoError(c.t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return r, res.StatusCode
}

func (c *client) get(path string, v interface{}) int {
	res, err := http.Get(c.url + path)
	require.NoError(c.t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(c.t, json.Unmarshal(r, v), string(r))
	}
	return res.StatusCode
}

func (c *client) send(kind xenv.DomainKind, signer string, ob *outcry.OutcryBody) (*transactions.Receipt, int) {
	raw, _ := c.rawTx(kind, signer, ob)
	res, code := c.post("/transactions?domain="+kind.String(), transactions.RawTx{Raw: raw})
	var receipt transactions.Receipt
	if code != http.StatusOK && !bytes.HasPrefix(res, []byte("{")) {
		return nil, code
	}
	require.NoError(c.t, json.Unmarshal(res, &receipt), string(res))
	return &receipt, code
}

func body(op uint32) *outcry.OutcryBody {
	return &outcry.OutcryBody{Opcode: op, Seller: addrOf("seller"), Asset: asset}
}

type auctionView struct {
	Address    meter.Address `json:"address"`
	Source     string        `json:"source"`
	Delegation string        `json:"delegation"`
	Record     struct {
		Status     string `json:"status"`
		CurrentBid uint64 `json:"currentBid"`
	} `json:"record"`
	Vault struct {
		Address  meter.Address `json:"address"`
		Lamports uint64        `json:"lamports"`
	} `json:"vault"`
}

func TestAuctionLifecycle(t *testing.T) {
	c := newClient(t)
	auction, _, err := outcry.AuctionAddress(addrOf("seller"), asset)
	require.NoError(t, err)
	vault, _, err := outcry.VaultAddress(auction)
	require.NoError(t, err)

	var derived struct {
		Auction meter.Address  `json:"auction"`
		Vault   meter.Address  `json:"vault"`
		Deposit *meter.Address `json:"deposit"`
	}
	require.Equal(t, http.StatusOK, c.get("/auctions/derive?seller="+addrOf("seller").String()+"&asset="+asset.String()+"&bidder="+addrOf("alice").String(), &derived))
	assert.Equal(t, auction, derived.Auction)
	assert.Equal(t, vault, derived.Vault)
	require.NotNil(t, derived.Deposit)
	assert.Equal(t, http.StatusBadRequest, c.get("/auctions/derive?seller=0x01", nil))

	assert.Equal(t, http.StatusNotFound, c.get("/auctions/"+auction.String(), nil))

	create := body(outcry.OP_CREATE)
	create.Duration = 600
	create.StartPrice = 10
	create.MinIncrement = 5
	receipt, code := c.send(xenv.Base, "seller", create)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, receipt.Reverted)
	assert.Equal(t, "base", receipt.Domain)

	deposit := body(outcry.OP_DEPOSIT)
	deposit.Amount = 100
	receipt, code = c.send(xenv.Base, "alice", deposit)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, receipt.Outputs, 1)
	require.NotEmpty(t, receipt.Outputs[0].Transfers)
	assert.Equal(t, vault, receipt.Outputs[0].Transfers[0].Recipient)

	var view auctionView
	require.Equal(t, http.StatusOK, c.get("/auctions/"+auction.String(), &view))
	assert.Equal(t, "Created", view.Record.Status)
	assert.Equal(t, "base", view.Source)
	assert.Equal(t, "undelegated", view.Delegation)
	assert.Equal(t, uint64(100), view.Vault.Lamports)

	var dep struct {
		Entry      uint64 `json:"entry"`
		Refundable uint64 `json:"refundable"`
		Mirror     *struct {
			Amount uint64 `json:"amount"`
		} `json:"mirror"`
	}
	require.Equal(t, http.StatusOK, c.get("/auctions/"+auction.String()+"/deposits/"+addrOf("alice").String(), &dep))
	assert.Equal(t, uint64(100), dep.Entry)
	require.NotNil(t, dep.Mirror)
	assert.Equal(t, uint64(100), dep.Mirror.Amount)
	assert.Equal(t, uint64(100), dep.Refundable)

	// only the seller may start
	receipt, code = c.send(xenv.Base, "alice", body(outcry.OP_START))
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, receipt)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "precondition", receipt.Class)
	assert.Contains(t, receipt.Error, outcry.ErrUnauthorizedSeller.Error())

	receipt, code = c.send(xenv.Base, "seller", body(outcry.OP_START))
	require.Equal(t, http.StatusOK, code)
	assert.False(t, receipt.Reverted)

	receipt, code = c.send(xenv.Base, "seller", body(outcry.OP_DELEGATE))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, http.StatusOK, c.get("/auctions/"+auction.String(), &view))
	assert.Equal(t, "ephemeral", view.Source)
	assert.Equal(t, "delegated", view.Delegation)
	assert.Equal(t, "Active", view.Record.Status)

	bid := body(outcry.OP_BID)
	bid.Amount = 20
	receipt, code = c.send(xenv.Ephemeral, "alice", bid)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ephemeral", receipt.Domain)
	require.Equal(t, http.StatusOK, c.get("/auctions/"+auction.String(), &view))
	assert.Equal(t, uint64(20), view.Record.CurrentBid)

	// a delegated auction cannot take deposits on base
	receipt, code = c.send(xenv.Base, "alice", deposit)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "ownership", receipt.Class)

	c.node.Ephemeral().SetAvailable(false)
	require.Equal(t, http.StatusOK, c.get("/auctions/"+auction.String(), &view))
	assert.Equal(t, "stuck", view.Delegation)
	assert.Equal(t, "base", view.Source)
	_, code = c.send(xenv.Ephemeral, "alice", bid)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	var acc struct {
		Lamports hexutil.Uint64 `json:"lamports"`
		Owner    meter.Address  `json:"owner"`
	}
	require.Equal(t, http.StatusOK, c.get("/accounts/"+vault.String(), &acc))
	assert.Equal(t, uint64(100), uint64(acc.Lamports))
	assert.Equal(t, meter.OutcryProgramID, acc.Owner)
	assert.Equal(t, http.StatusBadRequest, c.get("/accounts/"+vault.String()+"?domain=sidechain", nil))
}

func TestSendTransaction(t *testing.T) {
	c := newClient(t)
	create := body(outcry.OP_CREATE)
	create.Duration = 600
	create.StartPrice = 10
	create.MinIncrement = 5
	raw, id := c.rawTx(xenv.Base, "seller", create)

	_, code := c.post("/transactions?domain=ephemeral", transactions.RawTx{Raw: raw})
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = c.post("/transactions", transactions.RawTx{Raw: "0xzz"})
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = c.post("/transactions", map[string]string{"tx": raw})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = c.post("/transactions", transactions.RawTx{Raw: raw})
	require.Equal(t, http.StatusOK, code)
	_, code = c.post("/transactions", transactions.RawTx{Raw: raw})
	assert.Equal(t, http.StatusConflict, code)

	var receipt transactions.Receipt
	require.Equal(t, http.StatusOK, c.get("/transactions/"+id.String()+"/receipt", &receipt))
	assert.Equal(t, id, receipt.TxID)
	assert.Equal(t, addrOf("seller"), receipt.Origin)
	assert.Equal(t, uint64(1), receipt.Seq)

	var missing *transactions.Receipt
	require.Equal(t, http.StatusOK, c.get("/transactions/"+id.String()+"/receipt?domain=ephemeral", &missing))
	assert.Nil(t, missing)

	// create never undelegates, so there is nothing to replay
	_, code = c.post("/transactions/"+id.String()+"/resume", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = c.post("/transactions/0x12/resume", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLogsAndMetrics(t *testing.T) {
	c := newClient(t)
	create := body(outcry.OP_CREATE)
	create.Duration = 600
	create.StartPrice = 10
	create.MinIncrement = 5
	_, code := c.send(xenv.Base, "seller", create)
	require.Equal(t, http.StatusOK, code)
	deposit := body(outcry.OP_DEPOSIT)
	deposit.Amount = 40
	_, code = c.send(xenv.Base, "alice", deposit)
	require.Equal(t, http.StatusOK, code)

	topic := outcry.DepositMadeEvent.String()
	res, code := c.post("/logs/events", map[string]interface{}{
		"domain":      "base",
		"criteriaSet": []map[string]interface{}{{"topic0": topic}},
	})
	require.Equal(t, http.StatusOK, code, string(res))
	var evs []map[string]interface{}
	require.NoError(t, json.Unmarshal(res, &evs))
	assert.Len(t, evs, 1)

	res, code = c.post("/logs/transfers", map[string]interface{}{
		"criteriaSet": []map[string]interface{}{{"sender": addrOf("alice").String()}},
	})
	require.Equal(t, http.StatusOK, code, string(res))
	var trs []map[string]interface{}
	require.NoError(t, json.Unmarshal(res, &trs))
	require.Len(t, trs, 1)
	assert.Equal(t, float64(40), trs[0]["amount"])

	resp, err := http.Get(c.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(metrics), "runtime_txs_total"))
}
