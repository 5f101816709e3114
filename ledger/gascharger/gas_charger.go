// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gascharger meters the storage work done by a single ledger
// operation. The runtime enforces the per-operation gas limit.
package gascharger

import (
	"fmt"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

type Charger struct {
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	balanceOps     uint64
	transferOps    uint64
	customGas      uint64
	totalGas       uint64
}

func New() *Charger {
	return &Charger{}
}

func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	// handle multiples and single operations
	case gas%quai.SstoreSetGas == 0 && gas > 0:
		c.sstoreSetOps += gas / quai.SstoreSetGas

	case gas%quai.SstoreResetGas == 0 && gas > 0:
		c.sstoreResetOps += gas / quai.SstoreResetGas

	case gas%quai.TransferGas == 0 && gas > 0:
		c.transferOps += gas / quai.TransferGas

	case gas%quai.GetBalanceGas == 0 && gas > 0:
		c.balanceOps += gas / quai.GetBalanceGas

	case gas%quai.SloadGas == 0 && gas > 0:
		c.sloadOps += gas / quai.SloadGas

	default:
		// unknown/custom gas amount
		c.customGas += gas
	}
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}

// Exceeded reports whether the metered work passed the given limit.
func (c *Charger) Exceeded(limit uint64) bool {
	return c.totalGas > limit
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops | SSTORE_SET: %d ops | SSTORE_RESET: %d ops | BALANCE: %d ops | TRANSFER: %d ops | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sstoreSetOps,
		c.sstoreResetOps,
		c.balanceOps,
		c.transferOps,
		c.customGas,
		c.totalGas,
	)
}
