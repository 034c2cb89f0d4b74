// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"log/slog"
	"os"

	"github.com/meterio/outcry/domain"
	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/xenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var (
	genesisKey = []byte("genesis")
	log        = slog.Default().With("pkg", "genesis")

	ErrNotBase      = errors.New("genesis applies to the base domain only")
	ErrNameMismatch = errors.New("domain was initialised by another genesis")
)

// Alloc is a pre-funded account.
type Alloc struct {
	Address  meter.Address
	Lamports uint64
}

// Genesis describes the initial state of the base domain.
type Genesis struct {
	name   string
	allocs []Alloc
}

func New(name string, allocs []Alloc) *Genesis {
	return &Genesis{name: name, allocs: allocs}
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

func (g *Genesis) Allocs() []Alloc {
	return append([]Alloc(nil), g.allocs...)
}

// Apply funds the allocs on a fresh base domain. It returns false when the
// domain was already initialised by a genesis of the same name.
func (g *Genesis) Apply(d *domain.Domain) (bool, error) {
	if d.Kind() != xenv.Base {
		return false, ErrNotBase
	}
	raw, err := d.Store().Get(genesisKey)
	if err == nil {
		if string(raw) != g.name {
			return false, errors.WithMessagef(ErrNameMismatch, "have %q, want %q", raw, g.name)
		}
		return false, nil
	}
	if !d.Store().IsNotFound(err) {
		return false, err
	}

	st := d.NewState()
	for _, a := range g.allocs {
		if err := st.AddLamports(a.Address, a.Lamports); err != nil {
			return false, errors.WithMessagef(err, "alloc %v", a.Address)
		}
	}
	if _, err := st.Stage().CommitWith(func(p kv.Putter) error {
		return p.Put(genesisKey, []byte(g.name))
	}); err != nil {
		return false, errors.Wrap(err, "commit genesis")
	}
	log.Info("genesis applied", "name", g.name, "accounts", len(g.allocs))
	return true, nil
}

type fileAlloc struct {
	Address  string `yaml:"address"`
	Lamports uint64 `yaml:"lamports"`
}

type file struct {
	Name     string      `yaml:"name"`
	Accounts []fileAlloc `yaml:"accounts"`
}

// Parse decodes a YAML genesis document.
func Parse(raw []byte) (*Genesis, error) {
	var f file
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, err
	}
	if f.Name == "" {
		return nil, errors.New("genesis name required")
	}
	allocs := make([]Alloc, 0, len(f.Accounts))
	for i, a := range f.Accounts {
		addr, err := meter.ParseAddress(a.Address)
		if err != nil {
			return nil, errors.WithMessagef(err, "accounts[%d]", i)
		}
		allocs = append(allocs, Alloc{Address: addr, Lamports: a.Lamports})
	}
	return New(f.Name, allocs), nil
}

// Load reads a YAML genesis file.
func Load(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
