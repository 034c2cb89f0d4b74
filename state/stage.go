// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"log/slog"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/meter"
)

// Stage abstracts changes on the accounts of a domain.
type Stage struct {
	err error

	kv      kv.GetPutter
	cache   *accountCache
	changes map[meter.Address]*Account
	addrs   []meter.Address
}

func newStage(kv kv.GetPutter, cache *accountCache, changes map[meter.Address]*Account) *Stage {
	addrs := make([]meter.Address, 0, len(changes))
	for addr := range changes {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return &Stage{
		kv:      kv,
		cache:   cache,
		changes: changes,
		addrs:   addrs,
	}
}

// Addresses returns changed addresses in ascending order.
func (s *Stage) Addresses() []meter.Address {
	return s.addrs
}

// Hash computes digest of all changes.
func (s *Stage) Hash() (meter.Bytes32, error) {
	if s.err != nil {
		return meter.Bytes32{}, s.err
	}
	hw := meter.NewBlake2b()
	for _, addr := range s.addrs {
		hw.Write(addr[:])
		if err := rlp.Encode(hw, s.changes[addr]); err != nil {
			return meter.Bytes32{}, err
		}
	}
	var hash meter.Bytes32
	hw.Sum(hash[:0])
	return hash, nil
}

// Commit commits all changes into the kv store.
func (s *Stage) Commit() (meter.Bytes32, error) {
	return s.CommitWith(nil)
}

// CommitWith commits all changes together with the extra writes, in one batch.
func (s *Stage) CommitWith(extra func(kv.Putter) error) (meter.Bytes32, error) {
	if s.err != nil {
		return meter.Bytes32{}, s.err
	}
	start := time.Now()
	hash, err := s.Hash()
	if err != nil {
		return meter.Bytes32{}, err
	}

	batch := s.kv.NewBatch()
	for _, addr := range s.addrs {
		if err := saveAccount(batch, addr, s.changes[addr]); err != nil {
			return meter.Bytes32{}, err
		}
	}
	if extra != nil {
		if err := extra(batch); err != nil {
			return meter.Bytes32{}, err
		}
	}
	if err := batch.Write(); err != nil {
		return meter.Bytes32{}, err
	}

	s.cache.Update(s.changes)

	slog.Debug("commited stage", "pkg", "state", "hash", hash, "accounts", len(s.addrs), "elapsed", meter.PrettyDuration(time.Since(start)))
	return hash, nil
}
