// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/lvldb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/state"
	"github.com/stretchr/testify/assert"
)

func TestStateReadWrite(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.NewCreator(kv).NewState()

	addr := meter.BytesToAddress([]byte("account1"))

	assert.False(t, st.Exists(addr))
	assert.Equal(t, uint64(0), st.GetLamports(addr))
	assert.True(t, st.GetOwner(addr).IsZero())

	st.SetLamports(addr, 10)
	st.SetOwner(addr, meter.OutcryProgramID)
	st.SetData(addr, []byte("data"))

	assert.True(t, st.Exists(addr))
	assert.Equal(t, uint64(10), st.GetLamports(addr))
	assert.Equal(t, meter.OutcryProgramID, st.GetOwner(addr))
	assert.Equal(t, []byte("data"), st.GetData(addr))

	st.Delete(addr)
	assert.False(t, st.Exists(addr))
	assert.Nil(t, st.Err())
}

func TestStateRevert(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)

	addr := meter.BytesToAddress([]byte("account1"))

	values := []uint64{1, 2, 3}
	var revisions []int
	for _, v := range values {
		revisions = append(revisions, st.NewCheckpoint())
		st.SetLamports(addr, v)
	}

	for i := len(revisions) - 1; i >= 0; i-- {
		st.RevertTo(revisions[i])
		if i > 0 {
			assert.Equal(t, values[i-1], st.GetLamports(addr))
		} else {
			assert.Equal(t, uint64(0), st.GetLamports(addr))
		}
	}
}

func TestStateLamports(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	addr := meter.BytesToAddress([]byte("account1"))

	assert.Nil(t, st.AddLamports(addr, 5))
	assert.False(t, st.SubLamports(addr, 6))
	assert.True(t, st.SubLamports(addr, 5))
	assert.Equal(t, uint64(0), st.GetLamports(addr))

	st.SetLamports(addr, ^uint64(0))
	assert.Equal(t, meter.ErrArithmeticOverflow, st.AddLamports(addr, 1))
	assert.Equal(t, ^uint64(0), st.GetLamports(addr))
}

func TestStageCommit(t *testing.T) {
	kv, _ := lvldb.NewMem()
	creator := state.NewCreator(kv)

	a := meter.BytesToAddress([]byte("a"))
	b := meter.BytesToAddress([]byte("b"))

	st := creator.NewState()
	st.SetLamports(a, 100)
	st.SetOwner(b, meter.OutcryProgramID)
	st.SetData(b, []byte{1, 2, 3})

	stage := st.Stage()
	assert.Len(t, stage.Addresses(), 2)
	h1, err := stage.Hash()
	assert.Nil(t, err)
	h2, err := stage.Commit()
	assert.Nil(t, err)
	assert.Equal(t, h1, h2)

	// uncached view reads straight from kv
	fresh := state.New(kv)
	assert.Equal(t, uint64(100), fresh.GetLamports(a))
	assert.Equal(t, []byte{1, 2, 3}, fresh.GetData(b))

	st = creator.NewState()
	st.Delete(b)
	_, err = st.Stage().Commit()
	assert.Nil(t, err)
	assert.False(t, state.New(kv).Exists(b))
	assert.False(t, creator.NewState().Exists(b))
}

func TestUncommittedStateIsInvisible(t *testing.T) {
	kv, _ := lvldb.NewMem()
	creator := state.NewCreator(kv)
	a := meter.BytesToAddress([]byte("a"))

	st := creator.NewState()
	st.SetLamports(a, 7)
	// discarded without Stage().Commit()

	assert.Equal(t, uint64(0), creator.NewState().GetLamports(a))
}

// slowReadKV parks the first read of key after the value was fetched, so the
// caller returns what kv held before a concurrent commit.
type slowReadKV struct {
	kv.GetPutter
	key     []byte
	armed   atomic.Bool
	fetched chan struct{}
	release chan struct{}
}

func (s *slowReadKV) Get(key []byte) ([]byte, error) {
	val, err := s.GetPutter.Get(key)
	if bytes.Equal(key, s.key) && s.armed.CompareAndSwap(true, false) {
		close(s.fetched)
		<-s.release
	}
	return val, err
}

func TestStaleReadDoesNotShadowCommit(t *testing.T) {
	db, _ := lvldb.NewMem()
	x := meter.BytesToAddress([]byte("x"))

	st := state.New(db)
	st.SetLamports(x, 1)
	_, err := st.Stage().Commit()
	assert.Nil(t, err)

	slow := &slowReadKV{
		GetPutter: db,
		key:       x[:],
		fetched:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	slow.armed.Store(true)
	creator := state.NewCreator(slow)

	readDone := make(chan uint64)
	go func() {
		readDone <- creator.NewState().GetLamports(x)
	}()
	<-slow.fetched

	writer := creator.NewState()
	assert.Equal(t, uint64(1), writer.GetLamports(x))
	writer.SetLamports(x, 2)
	_, err = writer.Stage().Commit()
	assert.Nil(t, err)

	close(slow.release)
	assert.Equal(t, uint64(1), <-readDone)

	assert.Equal(t, uint64(2), state.New(db).GetLamports(x))
	assert.Equal(t, uint64(2), creator.NewState().GetLamports(x))
}
