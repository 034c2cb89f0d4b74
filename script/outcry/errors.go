// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package outcry

import (
	"errors"

	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/delegation"
	setypes "github.com/meterio/outcry/script/types"
)

var (
	ErrInvalidDuration       = errors.New("duration must be positive")
	ErrInvalidBidIncrement   = errors.New("min increment must be positive")
	ErrInvalidAuctionStatus  = errors.New("invalid auction status")
	ErrUnauthorizedSeller    = errors.New("caller is not the seller")
	ErrUnauthorizedBidder    = errors.New("signer is not authorized for bidder")
	ErrAuctionStillActive    = errors.New("auction still active")
	ErrAuctionExpired        = errors.New("auction expired")
	ErrBidTooLow             = errors.New("bid too low")
	ErrInsufficientDeposit   = errors.New("insufficient deposit")
	ErrInvalidDepositAmount  = errors.New("deposit amount must be positive")
	ErrRefundNotAvailable    = errors.New("refund not available")
	ErrNothingToRefund       = errors.New("nothing to refund")
	ErrAuctionHasBids        = errors.New("auction has bids")
	ErrAccountAlreadyExists  = errors.New("account already exists")
	ErrAuctionFull           = errors.New("auction full")
	ErrArithmeticOverflow    = meter.ErrArithmeticOverflow
	ErrAccountDelegated      = errors.New("account is delegated")
	ErrAccountNotDelegated   = errors.New("account is not delegated to this domain")
	ErrBaseOnly              = errors.New("operation is only allowed on the base domain")
	ErrEphemeralOnly         = errors.New("operation is only allowed on the ephemeral domain")
	ErrAccountNotFound       = errors.New("account not found")
	ErrUnknownOpcode         = errors.New("unknown outcry opcode")
	ErrInvalidSessionSigner  = errors.New("invalid session signer")
	ErrAuctionMismatch       = errors.New("auction does not match seller and asset")
	ErrDepositMirrorMismatch = errors.New("deposit mirror does not match")
)

// Class groups errors by how a client should react.
type Class int

const (
	ClassInternal Class = iota
	ClassPrecondition
	ClassCapacity
	ClassOverflow
	ClassOwnership
)

func (c Class) String() string {
	switch c {
	case ClassPrecondition:
		return "precondition"
	case ClassCapacity:
		return "capacity"
	case ClassOverflow:
		return "overflow"
	case ClassOwnership:
		return "ownership"
	default:
		return "internal"
	}
}

var classes = map[error]Class{
	ErrInvalidDuration:      ClassPrecondition,
	ErrInvalidBidIncrement:  ClassPrecondition,
	ErrInvalidAuctionStatus: ClassPrecondition,
	ErrUnauthorizedSeller:   ClassPrecondition,
	ErrUnauthorizedBidder:   ClassPrecondition,
	ErrAuctionStillActive:   ClassPrecondition,
	ErrAuctionExpired:       ClassPrecondition,
	ErrBidTooLow:            ClassPrecondition,
	ErrInsufficientDeposit:  ClassPrecondition,
	ErrInvalidDepositAmount: ClassPrecondition,
	ErrRefundNotAvailable:   ClassPrecondition,
	ErrNothingToRefund:      ClassPrecondition,
	ErrAuctionHasBids:       ClassPrecondition,
	ErrAccountAlreadyExists: ClassPrecondition,
	ErrInvalidSessionSigner: ClassPrecondition,
	ErrAuctionMismatch:      ClassPrecondition,

	setypes.ErrInsufficientFunds: ClassPrecondition,
	setypes.ErrNotSigner:         ClassPrecondition,

	ErrAuctionFull: ClassCapacity,

	ErrArithmeticOverflow: ClassOverflow,

	ErrAccountDelegated:      ClassOwnership,
	ErrAccountNotDelegated:   ClassOwnership,
	ErrBaseOnly:              ClassOwnership,
	ErrEphemeralOnly:         ClassOwnership,
	ErrAccountNotFound:       ClassOwnership,
	ErrDepositMirrorMismatch: ClassOwnership,

	meter.ErrBumpMismatch:    ClassOwnership,
	setypes.ErrOwnerMismatch: ClassOwnership,
	setypes.ErrAccountInUse:  ClassOwnership,

	delegation.ErrAlreadyDelegated:  ClassOwnership,
	delegation.ErrNotDelegated:      ClassOwnership,
	delegation.ErrNotOwnedByProgram: ClassOwnership,
	delegation.ErrBaseOnly:          ClassOwnership,
	delegation.ErrEphemeralOnly:     ClassOwnership,
}

// ClassOf maps an error, possibly wrapped, to its class.
func ClassOf(err error) Class {
	for e, c := range classes {
		if errors.Is(err, e) {
			return c
		}
	}
	return ClassInternal
}

// ErrorFromString recovers a sentinel from receipt return data.
func ErrorFromString(msg string) error {
	for e := range classes {
		if e.Error() == msg {
			return e
		}
	}
	return nil
}
