// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"testing"

	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/lvldb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevnet(t *testing.T) {
	db, _ := lvldb.NewMem()
	d, err := domain.New(xenv.Base, db, domain.NewManualClock(1000))
	require.NoError(t, err)

	g := genesis.NewDevnet()
	applied, err := g.Apply(d)
	require.NoError(t, err)
	assert.True(t, applied)

	st := d.NewState()
	for _, a := range genesis.DevAccounts() {
		assert.Equal(t, genesis.DevLamports, st.GetLamports(a.Address))
	}

	// second apply is a no-op
	applied, err = g.Apply(d)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, genesis.DevLamports, d.NewState().GetLamports(genesis.DevAccounts()[0].Address))

	_, err = genesis.New("other", nil).Apply(d)
	assert.ErrorIs(t, err, genesis.ErrNameMismatch)
}

func TestApplyEphemeral(t *testing.T) {
	db, _ := lvldb.NewMem()
	d, err := domain.New(xenv.Ephemeral, db, domain.SystemClock{})
	require.NoError(t, err)

	_, err = genesis.NewDevnet().Apply(d)
	assert.Equal(t, genesis.ErrNotBase, err)
}

func TestParse(t *testing.T) {
	g, err := genesis.Parse([]byte(`
name: staging
accounts:
  - address: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
    lamports: 500
  - address: "0xd3ae78222beadb038203be21ed5ce7c9b1bff602"
    lamports: 18446744073709551615
`))
	require.NoError(t, err)
	assert.Equal(t, "staging", g.Name())
	require.Len(t, g.Allocs(), 2)
	assert.Equal(t, meter.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), g.Allocs()[0].Address)
	assert.Equal(t, uint64(500), g.Allocs()[0].Lamports)
	assert.Equal(t, ^uint64(0), g.Allocs()[1].Lamports)

	_, err = genesis.Parse([]byte("accounts: []"))
	assert.Error(t, err)

	_, err = genesis.Parse([]byte("name: x\naccounts:\n  - address: nothex\n"))
	assert.Error(t, err)

	_, err = genesis.Parse([]byte("name: x\nvalidators: []\n"))
	assert.Error(t, err)
}
