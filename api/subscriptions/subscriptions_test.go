// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions_test

import (
	"context"
	"crypto/ecdsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fortytw2/leaktest"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/outcry/api/subscriptions"
	"github.com/meterio/outcry/cmd/outcry/node"
	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/lvldb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script"
	"github.com/meterio/outcry/script/outcry"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asset = meter.BytesToAddress([]byte("vase"))

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

type server struct {
	node *node.Node
	subs *subscriptions.Subscriptions
	ts   *httptest.Server
	url  string
}

func newServer(t *testing.T) (*server, func()) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	n, err := node.New(db, node.Options{
		Genesis: genesis.New("subscriptions", []genesis.Alloc{
			{Address: addrOf("seller"), Lamports: 1_000_000},
			{Address: addrOf("alice"), Lamports: 1_000_000},
		}),
		Validator: keyOf("validator"),
		Clock:     domain.NewManualClock(1_700_000_000),
	})
	require.NoError(t, err)

	subs := subscriptions.New(n.Bridge(), []string{"*"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	s := &server{
		node: n,
		subs: subs,
		ts:   ts,
		url:  "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions",
	}
	return s, func() {
		subs.Close()
		ts.Close()
		db.Close()
	}
}

func (s *server) send(t *testing.T, signer string, ob *outcry.OutcryBody) error {
	clause, err := script.OutcryClause(ob)
	require.NoError(t, err)
	_, err = s.node.Send(context.Background(), xenv.Base, keyOf(signer), clause)
	return err
}

func body(op uint32) *outcry.OutcryBody {
	return &outcry.OutcryBody{Opcode: op, Seller: addrOf("seller"), Asset: asset}
}

// keepDepositing sends small deposits until stop is closed, so that a message
// arrives whenever the subscription becomes live.
func (s *server) keepDepositing(t *testing.T, stop chan struct{}, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ob := body(outcry.OP_DEPOSIT)
				ob.Amount = 1
				assert.NoError(t, s.send(t, "alice", ob))
			}
		}
	}()
}

func TestSubscribeEvents(t *testing.T) {
	defer leaktest.Check(t)()

	s, closeAll := newServer(t)
	defer closeAll()

	create := body(outcry.OP_CREATE)
	create.Duration = 600
	create.StartPrice = 10
	create.MinIncrement = 5
	require.NoError(t, s.send(t, "seller", create))

	conn, _, err := websocket.DefaultDialer.Dial(s.url+"/event?domain=base&t0="+outcry.DepositMadeEvent.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	s.keepDepositing(t, stop, &wg)
	defer func() {
		close(stop)
		wg.Wait()
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg subscriptions.EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, meter.OutcryProgramID, msg.Address)
	require.NotEmpty(t, msg.Topics)
	assert.Equal(t, outcry.DepositMadeEvent, msg.Topics[0])
	assert.Equal(t, "base", msg.Meta.Domain)
	assert.Equal(t, addrOf("alice"), msg.Meta.TxOrigin)
}

func TestSubscribeTransfers(t *testing.T) {
	defer leaktest.Check(t)()

	s, closeAll := newServer(t)
	defer closeAll()

	create := body(outcry.OP_CREATE)
	create.Duration = 600
	create.StartPrice = 10
	create.MinIncrement = 5
	require.NoError(t, s.send(t, "seller", create))
	vault, _, err := outcry.VaultAddress(mustAuction(t))
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(s.url+"/transfer?recipient="+vault.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	s.keepDepositing(t, stop, &wg)
	defer func() {
		close(stop)
		wg.Wait()
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg subscriptions.TransferMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, addrOf("alice"), msg.Sender)
	assert.Equal(t, vault, msg.Recipient)
	assert.Equal(t, uint64(1), msg.Amount)
}

func TestCloseReleasesSubscribers(t *testing.T) {
	defer leaktest.Check(t)()

	s, closeAll := newServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(s.url+"/receipt", nil)
	require.NoError(t, err)
	defer conn.Close()

	closeAll()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "%v", err)
}

func TestBadSubject(t *testing.T) {
	s, closeAll := newServer(t)
	defer closeAll()

	httpURL := "http" + strings.TrimPrefix(s.url, "ws")
	res, err := http.Get(httpURL + "/blocks")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = http.Get(httpURL + "/event?addr=nonsense")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(httpURL + "/receipt?domain=sidechain")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func mustAuction(t *testing.T) meter.Address {
	addr, _, err := outcry.AuctionAddress(addrOf("seller"), asset)
	require.NoError(t, err)
	return addr
}
