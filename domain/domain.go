// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package domain

import (
	"encoding/binary"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/state"
	"github.com/meterio/outcry/xenv"
)

var seqKey = []byte("seq")

// Domain is one execution domain: its own accounts, clock, sequence and locks
// over a bucket of the shared store.
type Domain struct {
	kind    xenv.DomainKind
	store   kv.GetPutter
	creator *state.Creator
	clock   Clock
	locks   *LockSet

	seqMu     sync.Mutex
	seq       uint64
	available atomic.Bool

	logger *slog.Logger
}

// Bucket returns the kv bucket of a domain kind.
func Bucket(kind xenv.DomainKind) kv.Bucket {
	return kv.Bucket(kind.String() + "/")
}

// New opens the domain of kind on db. The sequence resumes from the store.
func New(kind xenv.DomainKind, db kv.GetPutter, clock Clock) (*Domain, error) {
	store := Bucket(kind).ProxyGetPutter(db)
	d := &Domain{
		kind:    kind,
		store:   store,
		creator: state.NewCreator(store),
		clock:   clock,
		locks:   NewLockSet(),
		logger:  slog.Default().With("pkg", "domain", "domain", kind.String()),
	}
	raw, err := store.Get(seqKey)
	if err != nil && !store.IsNotFound(err) {
		return nil, err
	}
	if len(raw) == 8 {
		d.seq = binary.BigEndian.Uint64(raw)
	}
	d.available.Store(true)
	return d, nil
}

func (d *Domain) Kind() xenv.DomainKind   { return d.kind }
func (d *Domain) Tag() byte               { return byte(d.kind) }
func (d *Domain) Store() kv.GetPutter     { return d.store }
func (d *Domain) Creator() *state.Creator { return d.creator }
func (d *Domain) Clock() Clock            { return d.clock }
func (d *Domain) Locks() *LockSet         { return d.locks }
func (d *Domain) NewState() *state.State  { return d.creator.NewState() }
func (d *Domain) Now() uint64             { return d.clock.Now() }
func (d *Domain) IsAvailable() bool       { return d.available.Load() }

// SetAvailable takes the domain on or offline. An offline domain rejects
// every transaction.
func (d *Domain) SetAvailable(available bool) {
	if d.available.Swap(available) != available {
		d.logger.Warn("domain availability changed", "available", available)
	}
}

// Seq returns the last committed sequence.
func (d *Domain) Seq() uint64 {
	d.seqMu.Lock()
	defer d.seqMu.Unlock()
	return d.seq
}

// NextSeq reserves the next sequence and returns the write persisting it,
// to be committed with the tx that uses it.
func (d *Domain) NextSeq() (uint64, func(kv.Putter) error) {
	d.seqMu.Lock()
	defer d.seqMu.Unlock()
	d.seq++
	seq := d.seq
	return seq, func(p kv.Putter) error {
		var raw [8]byte
		binary.BigEndian.PutUint64(raw[:], seq)
		return p.Put(seqKey, raw[:])
	}
}
