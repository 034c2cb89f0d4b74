// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/meterio/outcry/co"
	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var goes co.Goes
	var n int32
	for i := 0; i < 50; i++ {
		goes.Go(func() {
			time.Sleep(time.Millisecond * 5)
			atomic.AddInt32(&n, 1)
		})
	}

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("goroutines not finished")
	}
	assert.Equal(t, int32(50), atomic.LoadInt32(&n))
}
