// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Amounts travel as hex-or-decimal strings so dashboard code can post either.

type DepositRequest struct {
	Staker   quai.Address          `json:"staker"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Duration uint64                `json:"duration,omitempty"` // native pool only, seconds
}

type WithdrawRequest struct {
	Staker quai.Address          `json:"staker"`
	Amount *math.HexOrDecimal256 `json:"amount,omitempty"`
}

type ClaimRequest struct {
	Staker quai.Address `json:"staker"`
}

type FundRequest struct {
	Funder quai.Address          `json:"funder"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type RateRequest struct {
	Caller quai.Address          `json:"caller"`
	Rate   *math.HexOrDecimal256 `json:"rate"`
}

type LimitRequest struct {
	Caller quai.Address          `json:"caller"`
	Limit  *math.HexOrDecimal256 `json:"limit"`
}

type PeriodsRequest struct {
	Caller quai.Address `json:"caller"`
	// native: exit window and reward delay in seconds;
	// lp: lock duration and grace period in blocks
	First  uint64 `json:"first"`
	Second uint64 `json:"second"`
}

type SweepRequest struct {
	Caller quai.Address          `json:"caller"`
	To     quai.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// OpResponse reports one executed operation.
type OpResponse struct {
	BlockTime   uint64                `json:"blockTime"`
	BlockNumber uint64                `json:"blockNumber"`
	GasUsed     uint64                `json:"gasUsed"`
	Paid        *math.HexOrDecimal256 `json:"paid,omitempty"`
}

func amountOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v)
}
