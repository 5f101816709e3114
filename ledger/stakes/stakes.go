// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes defines the commitment durations a staker may choose and the
// boost each one applies. Durations form a closed enumeration; anything not
// listed here is rejected, and the multiplier is frozen for the life of a
// position.
package stakes

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
)

// Duration is a commitment period in seconds.
type Duration uint64

const (
	DurationLow    = Duration(14 * 24 * 3600) // 14 days
	DurationMedium = Duration(30 * 24 * 3600) // 30 days
	DurationHigh   = Duration(90 * 24 * 3600) // 90 days
)

// Boost multipliers, in percent.
const (
	MultiplierLow    = uint8(100)
	MultiplierMedium = uint8(125)
	MultiplierHigh   = uint8(150)
)

// Multiplier maps a commitment duration to its boost multiplier.
// Unknown durations are rejected.
func Multiplier(d Duration) (uint8, error) {
	switch d {
	case DurationLow:
		return MultiplierLow, nil
	case DurationMedium:
		return MultiplierMedium, nil
	case DurationHigh:
		return MultiplierHigh, nil
	default:
		return 0, reverts.NewRequireError("unsupported staking duration")
	}
}

// IsValid reports whether d is one of the allowed commitment durations.
func IsValid(d Duration) bool {
	_, err := Multiplier(d)
	return err == nil
}

// CalculateWeight returns stake * multiplier / 100%.
func CalculateWeight(stake *big.Int, multiplier uint8) *big.Int {
	weight := new(big.Int).Mul(stake, big.NewInt(int64(multiplier)))
	return weight.Div(weight, big.NewInt(100))
}

// WeightedStake couples a principal amount with its boosted weight.
type WeightedStake struct {
	amount *big.Int // the principal staked
	weight *big.Int // the weight, calculated as (stake * multiplier / 100%)
}

func NewWeightedStake(amount *big.Int, multiplier uint8) *WeightedStake {
	return &WeightedStake{
		amount: amount,
		weight: CalculateWeight(amount, multiplier),
	}
}

func (s *WeightedStake) Amount() *big.Int {
	return s.amount
}

func (s *WeightedStake) Weight() *big.Int {
	return s.weight
}
