// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/meterio/outcry/domain"
)

type DomainStats struct {
	Name      string `json:"name"`
	Tag       byte   `json:"tag"`
	Seq       uint64 `json:"seq"`
	Time      uint64 `json:"time"`
	Available bool   `json:"available"`
}

func convertDomain(d *domain.Domain) *DomainStats {
	return &DomainStats{
		Name:      d.Kind().String(),
		Tag:       d.Tag(),
		Seq:       d.Seq(),
		Time:      d.Now(),
		Available: d.IsAvailable(),
	}
}
