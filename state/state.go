// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/stackedmap"
)

// State manages the accounts of one domain.
type State struct {
	kv       kv.GetPutter
	cache    *accountCache
	loaded   map[meter.Address]*Account // accounts read during this state's lifetime
	sm       *stackedmap.StackedMap     // keeps revisions of accounts state
	err      error
	setError func(err error)
}

// New create an uncached state object.
func New(kv kv.GetPutter) *State {
	return newState(kv, nil)
}

func newState(kv kv.GetPutter, cache *accountCache) *State {
	state := State{
		kv:     kv,
		cache:  cache,
		loaded: make(map[meter.Address]*Account),
	}
	state.setError = func(err error) {
		if state.err == nil {
			state.err = err
		}
	}
	state.sm = stackedmap.New(func(key interface{}) (value interface{}, exist bool) {
		return state.cacheGetter(key)
	})
	return &state
}

// implements stackedmap.MapGetter
func (s *State) cacheGetter(key interface{}) (value interface{}, exist bool) {
	switch k := key.(type) {
	case meter.Address:
		return s.loadAccount(k), true
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) loadAccount(addr meter.Address) *Account {
	if a, ok := s.loaded[addr]; ok {
		return a
	}
	if a, ok := s.cache.Get(addr); ok {
		s.loaded[addr] = a
		return a
	}
	gen := s.cache.Generation()
	a, err := loadAccount(s.kv, addr)
	if err != nil {
		s.setError(err)
		return emptyAccount()
	}
	s.cache.Fill(addr, a, gen)
	s.loaded[addr] = a
	return a
}

// build changes via journal of stackedMap.
func (s *State) changes() map[meter.Address]*Account {
	changes := make(map[meter.Address]*Account)
	s.sm.Journal(func(k, v interface{}) bool {
		if addr, ok := k.(meter.Address); ok {
			changes[addr] = v.(*Account)
		}
		// abort if error occurred
		return s.err == nil
	})
	return changes
}

// the returned account should not be modified
func (s *State) getAccount(addr meter.Address) *Account {
	v, _ := s.sm.Get(addr)
	return v.(*Account)
}

func (s *State) getAccountCopy(addr meter.Address) Account {
	return *s.getAccount(addr)
}

func (s *State) updateAccount(addr meter.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

// Err returns first occurred error.
func (s *State) Err() error {
	return s.err
}

// GetAccount returns a copy of the account at the given address.
func (s *State) GetAccount(addr meter.Address) Account {
	return s.getAccountCopy(addr)
}

// GetLamports returns lamports for the given address.
func (s *State) GetLamports(addr meter.Address) uint64 {
	return s.getAccount(addr).Lamports
}

// SetLamports set lamports for the given address.
func (s *State) SetLamports(addr meter.Address, lamports uint64) {
	cpy := s.getAccountCopy(addr)
	cpy.Lamports = lamports
	s.updateAccount(addr, &cpy)
}

// AddLamports credits the given address. It fails on overflow.
func (s *State) AddLamports(addr meter.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	balance, err := meter.CheckedAdd(s.GetLamports(addr), amount)
	if err != nil {
		return err
	}
	s.SetLamports(addr, balance)
	return nil
}

// SubLamports debits the given address. It returns false if balance is insufficient.
func (s *State) SubLamports(addr meter.Address, amount uint64) bool {
	if amount == 0 {
		return true
	}
	balance := s.GetLamports(addr)
	if balance < amount {
		return false
	}
	s.SetLamports(addr, balance-amount)
	return true
}

// GetOwner returns the owning program of the given address.
func (s *State) GetOwner(addr meter.Address) meter.Address {
	return s.getAccount(addr).Owner
}

// SetOwner set the owning program of the given address.
func (s *State) SetOwner(addr meter.Address, owner meter.Address) {
	cpy := s.getAccountCopy(addr)
	cpy.Owner = owner
	s.updateAccount(addr, &cpy)
}

// GetData returns account data. The returned slice should not be modified.
func (s *State) GetData(addr meter.Address) []byte {
	return s.getAccount(addr).Data
}

// SetData replaces account data.
func (s *State) SetData(addr meter.Address, data []byte) {
	cpy := s.getAccountCopy(addr)
	cpy.Data = append([]byte(nil), data...)
	s.updateAccount(addr, &cpy)
}

// EncodeData set account data encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeData(addr meter.Address, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.setError(err)
		return
	}
	s.SetData(addr, raw)
}

// DecodeData get and decode account data.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeData(addr meter.Address, dec func([]byte) error) {
	if err := dec(s.GetData(addr)); err != nil {
		s.setError(err)
	}
}

// Exists returns whether an account exists at the given address.
// See Account.IsEmpty()
func (s *State) Exists(addr meter.Address) bool {
	return !s.getAccount(addr).IsEmpty()
}

// Delete closes the account at the given address.
// Lamports must be moved out before, otherwise they are burnt.
func (s *State) Delete(addr meter.Address) {
	s.updateAccount(addr, emptyAccount())
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to compute hash of changes or commit all changes.
func (s *State) Stage() *Stage {
	if s.err != nil {
		return &Stage{err: s.err}
	}
	changes := s.changes()
	if s.err != nil {
		return &Stage{err: s.err}
	}
	return newStage(s.kv, s.cache, changes)
}
