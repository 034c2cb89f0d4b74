// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/outcry/meter"
)

const accountCacheSize = 4096

// accountCache keeps committed accounts of one domain.
// Cached accounts are never mutated in place.
//
// Every commit bumps gen. A value read from kv may only be filled in if no
// commit landed since the read started, otherwise it could shadow the
// committed value.
type accountCache struct {
	lock  sync.Mutex
	gen   uint64
	cache *lru.Cache
}

func newAccountCache() *accountCache {
	cache, err := lru.New(accountCacheSize)
	if err != nil {
		return nil
	}
	return &accountCache{cache: cache}
}

func (ac *accountCache) Get(addr meter.Address) (*Account, bool) {
	if ac == nil {
		return nil, false
	}
	if v, ok := ac.cache.Get(addr); ok {
		return v.(*Account), true
	}
	return nil, false
}

// Generation returns the commit generation, to be taken before reading kv.
func (ac *accountCache) Generation() uint64 {
	if ac == nil {
		return 0
	}
	ac.lock.Lock()
	defer ac.lock.Unlock()
	return ac.gen
}

// Fill caches an account read from kv at generation gen. It is a no-op if a
// commit happened since.
func (ac *accountCache) Fill(addr meter.Address, acc *Account, gen uint64) bool {
	if ac == nil {
		return false
	}
	ac.lock.Lock()
	defer ac.lock.Unlock()
	if ac.gen != gen {
		return false
	}
	ac.cache.Add(addr, acc)
	return true
}

// Update applies committed accounts and starts a new generation.
func (ac *accountCache) Update(changes map[meter.Address]*Account) {
	if ac == nil {
		return
	}
	ac.lock.Lock()
	defer ac.lock.Unlock()
	ac.gen++
	for addr, acc := range changes {
		if acc.IsEmpty() {
			ac.cache.Remove(addr)
		} else {
			ac.cache.Add(addr, acc)
		}
	}
}
