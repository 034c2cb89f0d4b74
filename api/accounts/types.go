// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/outcry/meter"
)

//Account for marshal account
type Account struct {
	Domain   string              `json:"domain"`
	Lamports math.HexOrDecimal64 `json:"lamports"`
	Owner    meter.Address       `json:"owner"`
	HasData  bool                `json:"hasData"`
}
