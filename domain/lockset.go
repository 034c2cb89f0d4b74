// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package domain

import (
	"bytes"
	"sort"
	"sync"

	"github.com/meterio/outcry/meter"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// LockSet hands out per-account mutexes. Entries are dropped once unused.
type LockSet struct {
	mu    sync.Mutex
	locks map[meter.Address]*lockEntry
}

func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[meter.Address]*lockEntry)}
}

// SortAddresses sorts and dedups addrs in place.
func SortAddresses(addrs []meter.Address) []meter.Address {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	out := addrs[:0]
	for i, a := range addrs {
		if i == 0 || a != addrs[i-1] {
			out = append(out, a)
		}
	}
	return out
}

// Lock acquires every account in ascending order, so two callers never
// deadlock. The returned func releases them.
func (ls *LockSet) Lock(addrs []meter.Address) (unlock func()) {
	sorted := SortAddresses(append([]meter.Address(nil), addrs...))

	entries := make([]*lockEntry, 0, len(sorted))
	ls.mu.Lock()
	for _, addr := range sorted {
		e, ok := ls.locks[addr]
		if !ok {
			e = &lockEntry{}
			ls.locks[addr] = e
		}
		e.refs++
		entries = append(entries, e)
	}
	ls.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
	}
	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		ls.mu.Lock()
		for i, addr := range sorted {
			e := entries[i]
			e.refs--
			if e.refs == 0 {
				delete(ls.locks, addr)
			}
		}
		ls.mu.Unlock()
	}
}

// Len returns the number of accounts currently locked or waited on.
func (ls *LockSet) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.locks)
}
