// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/meterio/outcry/stackedmap"
	"github.com/stretchr/testify/assert"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key interface{}) (interface{}, bool) {
		v, r := src[key.(string)]
		return v, r
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []interface{}
	}{
		{func() {}, 1, "", "", "foo", M("bar", true)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true)},
		{func() {}, 2, "foo", "qux", "foo", M("qux", true)},
		{func() { sm.Push() }, 3, "", "", "foo", M("qux", true)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("qux", true)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true)},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(sm.Depth(), test.depth)
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(M(sm.Get(test.getKey)), test.getReturn)
		}
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(key interface{}) (interface{}, bool) { return nil, false })

	sm.Put("a", 1)
	rev := sm.Push()
	sm.Put("b", 2)
	sm.Put("a", 3)

	var keys []interface{}
	sm.Journal(func(k, v interface{}) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, M("a", "b", "a"), keys)

	sm.PopTo(rev)
	keys = nil
	sm.Journal(func(k, v interface{}) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, M("a"), keys)
	v, ok := sm.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
