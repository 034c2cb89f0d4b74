// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	"github.com/pkg/errors"
)

var (
	ErrUnsigned = errors.New("tx is not signed")
)

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		signingHash atomic.Value
		signer      atomic.Value
		id          atomic.Value
	}
}

// body describes details of a tx.
type body struct {
	DomainTag  byte
	Expiration uint64
	Clauses    []*Clause
	Nonce      uint64
	Signature  []byte
}

// DomainTag returns the tag of the domain the tx is intended for.
func (t *Transaction) DomainTag() byte {
	return t.body.DomainTag
}

// Nonce returns nonce value.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// Expiration returns the unix time after which the tx is rejected.
// Zero means never.
func (t *Transaction) Expiration() uint64 {
	return t.body.Expiration
}

// IsExpired returns whether the tx is expired at the given time.
func (t *Transaction) IsExpired(now uint64) bool {
	return t.body.Expiration != 0 && now > t.body.Expiration
}

// ID returns id of tx.
// ID = hash(signingHash, signer).
// It returns zero Bytes32 if signer not available.
func (t *Transaction) ID() (id meter.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() { t.cache.id.Store(id) }()

	signer, err := t.Signer()
	if err != nil {
		return
	}
	hw := meter.NewBlake2b()
	hw.Write(t.SigningHash().Bytes())
	hw.Write(signer.Bytes())
	hw.Sum(id[:0])
	return
}

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() (hash meter.Bytes32) {
	if cached := t.cache.signingHash.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() { t.cache.signingHash.Store(hash) }()

	hw := meter.NewBlake2b()
	err := rlp.Encode(hw, []interface{}{
		t.body.DomainTag,
		t.body.Expiration,
		t.body.Clauses,
		t.body.Nonce,
	})
	if err != nil {
		return
	}

	hw.Sum(hash[:0])
	return
}

// Clauses returns caluses in tx.
func (t *Transaction) Clauses() []*Clause {
	return append([]*Clause(nil), t.body.Clauses...)
}

// Signature returns signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// Signer extract signer of tx from signature.
func (t *Transaction) Signer() (signer meter.Address, err error) {
	if len(t.body.Signature) == 0 {
		return meter.Address{}, ErrUnsigned
	}
	if cached := t.cache.signer.Load(); cached != nil {
		return cached.(meter.Address), nil
	}
	defer func() {
		if err == nil {
			t.cache.signer.Store(signer)
		}
	}()

	pub, err := crypto.SigToPub(t.SigningHash().Bytes(), t.body.Signature)
	if err != nil {
		return meter.Address{}, errors.WithMessage(err, "recover signer")
	}
	signer = meter.Address(crypto.PubkeyToAddress(*pub))
	return
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{
		body: t.body,
	}
	// copy sig
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// Sign signs the tx with the given private key.
func (t *Transaction) Sign(key *ecdsa.PrivateKey) (*Transaction, error) {
	sig, err := crypto.Sign(t.SigningHash().Bytes(), key)
	if err != nil {
		return nil, err
	}
	return t.WithSignature(sig), nil
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	return nil
}

// Decode decodes a raw rlp encoded tx.
func Decode(raw []byte) (*Transaction, error) {
	var t Transaction
	if err := rlp.DecodeBytes(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Transaction) String() string {
	var (
		from      string
		br        = fmt.Sprintf("%d", t.body.Expiration)
		signer, _ = t.Signer()
	)
	from = signer.String()

	return fmt.Sprintf(`
	Tx(%v)
	From:           %v
	Domain:         %v
	Clauses:        %v
	Expiration:     %v
	Nonce:          %v
	Signature:      %v
`, t.ID(), from, t.body.DomainTag, t.body.Clauses, br, t.body.Nonce, hexutil.Encode(t.body.Signature))
}
