// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Batch defines batch of writes.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// GetPutter defines methods to read, write and batch-write kv.
type GetPutter interface {
	Getter
	Putter
	NewBatch() Batch
}

// Iterator iterates over a range of key-value pairs.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Store defines the full functionality of kv store.
type Store interface {
	GetPutter
	NewIterator(r Range) Iterator
	Close() error
}

// Range is a key range.
type Range struct {
	Start []byte // included
	Limit []byte // excluded
}
