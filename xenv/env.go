// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"fmt"

	"github.com/meterio/outcry/meter"
)

// DomainKind distinguishes the authoritative domain from the execution domain.
type DomainKind byte

const (
	Base      DomainKind = 0
	Ephemeral DomainKind = 1
)

func (k DomainKind) String() string {
	switch k {
	case Base:
		return "base"
	case Ephemeral:
		return "ephemeral"
	}
	return fmt.Sprintf("domain(%d)", byte(k))
}

// ParseDomainKind parses "base" or "ephemeral".
func ParseDomainKind(s string) (DomainKind, error) {
	switch s {
	case "", "base":
		return Base, nil
	case "ephemeral", "er":
		return Ephemeral, nil
	}
	return 0, fmt.Errorf("unknown domain %q", s)
}

// BlockContext execution context of the domain a tx runs on.
type BlockContext struct {
	Domain DomainKind
	Seq    uint64
	Time   uint64 // unix seconds from the domain clock
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID          meter.Bytes32
	Origin      meter.Address
	Nonce       uint64
	ClauseIndex uint32
}

func (ctx *TransactionContext) String() string {
	return fmt.Sprintf("txCtx{ID:%s Origin:%s Nonce:%d Clause:%d}", ctx.ID.String(), ctx.Origin.String(), ctx.Nonce, ctx.ClauseIndex)
}
