// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of the seed is too long for address generation")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
	ErrBumpMismatch          = errors.New("stored bump does not derive the expected address")

	pdaMarker = []byte("ProgramDerivedAddress")
)

// CreateProgramAddress derives the program address of the given seeds and bump.
// Candidates whose digest is a valid x coordinate on secp256k1 are rejected,
// so no private key can ever sign for a program address.
func CreateProgramAddress(seeds [][]byte, bump uint8, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, ErrMaxSeedLengthExceeded
	}
	hw := NewBlake2b()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Address{}, ErrMaxSeedLengthExceeded
		}
		hw.Write(seed)
	}
	hw.Write([]byte{bump})
	hw.Write(programID[:])
	hw.Write(pdaMarker)

	var digest Bytes32
	hw.Sum(digest[:0])
	if isOnCurve(digest) {
		return Address{}, ErrInvalidSeeds
	}
	return BytesToAddress(digest[12:]), nil
}

// FindProgramAddress searches bumps from 255 downward and returns the first
// viable program address.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateProgramAddress(seeds, uint8(bump), programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if err != ErrInvalidSeeds {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// VerifyProgramAddress checks that addr is derived from seeds with the stored bump.
func VerifyProgramAddress(addr Address, seeds [][]byte, bump uint8, programID Address) error {
	derived, err := CreateProgramAddress(seeds, bump, programID)
	if err != nil {
		return err
	}
	if derived != addr {
		return ErrBumpMismatch
	}
	return nil
}

// isOnCurve reports whether x^3 + b has a square root modulo p.
func isOnCurve(digest Bytes32) bool {
	params := crypto.S256().Params()
	x := new(big.Int).SetBytes(digest[:])
	if x.Cmp(params.P) >= 0 {
		return false
	}
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, params.B)
	rhs.Mod(rhs, params.P)
	return new(big.Int).ModSqrt(rhs, params.P) != nil
}
