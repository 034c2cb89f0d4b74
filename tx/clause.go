// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
)

// Clause is the basic execution unit of a transaction.
type Clause struct {
	body clauseBody
}

type clauseBody struct {
	To   meter.Address
	Data []byte
}

// NewClause create a new clause instance targeting the given program.
func NewClause(to meter.Address) *Clause {
	return &Clause{
		clauseBody{
			To:   to,
			Data: nil,
		},
	}
}

// WithData create a new clause with data set.
func (c *Clause) WithData(data []byte) *Clause {
	newClause := *c
	newClause.body.Data = append([]byte(nil), data...)
	return &newClause
}

// To returns the program the clause is sent to.
func (c *Clause) To() meter.Address {
	return c.body.To
}

// Data returns 'Data'.
func (c *Clause) Data() []byte {
	return append([]byte(nil), c.body.Data...)
}

// EncodeRLP implements rlp.Encoder
func (c *Clause) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &c.body)
}

// DecodeRLP implements rlp.Decoder
func (c *Clause) DecodeRLP(s *rlp.Stream) error {
	var body clauseBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*c = Clause{body}
	return nil
}

func (c *Clause) String() string {
	return fmt.Sprintf(`
		(To:	%v
		 Data:	%v)`, c.body.To, hexutil.Encode(c.body.Data))
}
