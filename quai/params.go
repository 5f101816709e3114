// Copyright (c) 2025 The go-quai-stake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quai

import "math/big"

// Constants of the staking ledger environment.
const (
	BlockInterval uint64 = 10 // time interval between two consecutive blocks, in seconds.

	SloadGas       uint64 = 200   // gas charged per 32-byte slot read.
	SstoreSetGas   uint64 = 20000 // gas charged per 32-byte slot first write.
	SstoreResetGas uint64 = 5000  // gas charged per 32-byte slot rewrite.
	GetBalanceGas  uint64 = 400   // gas charged per balance read.
	TransferGas    uint64 = 9000  // gas charged per value transfer.

	// OperationGasLimit bounds the resources a single ledger operation may consume.
	OperationGasLimit uint64 = 2 * 1000 * 1000
)

// Reward accounting precision.
var (
	// AccPrecision scales the pool-wide reward-per-weight accumulator.
	// Stored accumulator values are fixed-point with this denominator.
	AccPrecision = big.NewInt(1e12)
)

// Defaults of the native staking pool.
const (
	ExitWindow     uint64 = 2 * 24 * 3600 // seconds between requesting and executing a withdrawal.
	RewardDelay    uint64 = 24 * 3600     // seconds between a reward being earned and becoming claimable.
	CheckpointCap  int    = 96            // checkpoint ring capacity.
	CheckpointStep uint64 = 3600          // minimum seconds between two checkpoint pushes.
)

// Defaults of the LP pool lock cycle.
const (
	LPLockDuration uint64 = 8640 * 7 // blocks the position stays locked after a deposit.
	LPGracePeriod  uint64 = 8640     // blocks the position stays withdrawable before relocking.
)

// SecondsPerYear is used for APY estimation only.
const SecondsPerYear uint64 = 365 * 24 * 3600
