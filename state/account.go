// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/meter"
)

// Account is the ledger representation of an account.
// RLP encoded objects are stored in the domain kv bucket keyed by address.
type Account struct {
	Lamports uint64
	Owner    meter.Address // program allowed to mutate Data and debit Lamports
	Data     []byte
}

// IsEmpty returns if an account is empty.
// An empty account has zero lamports, no data and the system owner.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 &&
		len(a.Data) == 0 &&
		a.Owner.IsZero()
}

func emptyAccount() *Account {
	return &Account{}
}

// loadAccount load an account object by address.
// It returns empty account is no account found at the address.
func loadAccount(getter kv.Getter, addr meter.Address) (*Account, error) {
	data, err := getter.Get(addr[:])
	if err != nil {
		if getter.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return emptyAccount(), nil
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// saveAccount save account at given address.
// If the given account is empty, the value for given address is deleted.
func saveAccount(putter kv.Putter, addr meter.Address, a *Account) error {
	if a.IsEmpty() {
		return putter.Delete(addr[:])
	}

	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return putter.Put(addr[:], data)
}
