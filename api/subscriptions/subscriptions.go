// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/outcry/api/utils"
	"github.com/meterio/outcry/bridge"
	"github.com/meterio/outcry/co"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/runtime"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
)

const (
	// receipts buffered per connection before the feed blocks
	pendingLimit = 256
	writeWait    = 10 * time.Second
	pingPeriod   = 30 * time.Second
)

type msgReader interface {
	Read(ev *runtime.ReceiptEvent) []interface{}
}

type Subscriptions struct {
	runtimes []*runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	goes     co.Goes
	logger   *slog.Logger
}

func New(b *bridge.Bridge, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		runtimes: []*runtime.Runtime{b.Base(), b.Ephemeral()},
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == u.Hostname() || allowedOrigin == "*" {
						return true
					}
				}
				return false
			},
		},
		done:   make(chan struct{}),
		logger: slog.Default().With("api", "subscriptions"),
	}
}

func parseAddress(query url.Values, key string) (*meter.Address, error) {
	s := query.Get(key)
	if s == "" {
		return nil, nil
	}
	addr, err := meter.ParseAddress(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, key))
	}
	return &addr, nil
}

func parseTopic(query url.Values, key string) (*meter.Bytes32, error) {
	s := query.Get(key)
	if s == "" {
		return nil, nil
	}
	topic, err := meter.ParseBytes32(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, key))
	}
	return &topic, nil
}

func parseDomain(query url.Values) (*xenv.DomainKind, error) {
	s := query.Get("domain")
	if s == "" {
		return nil, nil
	}
	kind, err := xenv.ParseDomainKind(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "domain"))
	}
	return &kind, nil
}

func (s *Subscriptions) handleEventReader(req *http.Request) (*eventReader, error) {
	query := req.URL.Query()
	domain, err := parseDomain(query)
	if err != nil {
		return nil, err
	}
	address, err := parseAddress(query, "addr")
	if err != nil {
		return nil, err
	}
	var topics [5]*meter.Bytes32
	for i, key := range []string{"t0", "t1", "t2", "t3", "t4"} {
		if topics[i], err = parseTopic(query, key); err != nil {
			return nil, err
		}
	}
	return newEventReader(&EventFilter{
		Domain:  domain,
		Address: address,
		Topic0:  topics[0],
		Topic1:  topics[1],
		Topic2:  topics[2],
		Topic3:  topics[3],
		Topic4:  topics[4],
	}), nil
}

func (s *Subscriptions) handleTransferReader(req *http.Request) (*transferReader, error) {
	query := req.URL.Query()
	domain, err := parseDomain(query)
	if err != nil {
		return nil, err
	}
	txOrigin, err := parseAddress(query, "txOrigin")
	if err != nil {
		return nil, err
	}
	sender, err := parseAddress(query, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddress(query, "recipient")
	if err != nil {
		return nil, err
	}
	return newTransferReader(&TransferFilter{
		Domain:    domain,
		TxOrigin:  txOrigin,
		Sender:    sender,
		Recipient: recipient,
	}), nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	var (
		reader msgReader
		err    error
	)
	switch mux.Vars(req)["subject"] {
	case "event":
		reader, err = s.handleEventReader(req)
	case "transfer":
		reader, err = s.handleTransferReader(req)
	case "receipt":
		var domain *xenv.DomainKind
		if domain, err = parseDomain(req.URL.Query()); err == nil {
			reader = newReceiptReader(domain)
		}
	default:
		return utils.HTTPError(errors.New("not found"), http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		s.logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	id := uuid.New()
	s.logger.Debug("subscriber joined", "id", id, "subject", mux.Vars(req)["subject"], "remote", req.RemoteAddr)
	if err := s.pipe(conn, reader); err != nil {
		s.logger.Debug("subscriber left", "id", id, "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader) error {
	closed := make(chan struct{})
	// start read loop to handle close event
	s.goes.Go(func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := make(chan *runtime.ReceiptEvent, pendingLimit)
	for _, rt := range s.runtimes {
		sub := rt.SubscribeReceipts(ch)
		defer sub.Unsubscribe()
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-ch:
			for _, msg := range reader.Read(ev) {
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return err
				}
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
			}
		case <-s.done:
			return conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "service shutdown"),
				time.Now().Add(writeWait))
		case <-closed:
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close stops all pipes and waits for the hijacked conns to be released.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
	s.goes.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").Methods("Get").HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
