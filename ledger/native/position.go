// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package native

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Position is one staker's footprint in the pool.
//
// Reward bookkeeping works in "streaks": the stretch between two changes of
// the position's weight. Within a streak, earned reward is
// weight*acc/PRECISION - RewardDebt, and the matured share of it is measured
// against DelayBase via the checkpoint ring. When the weight changes the
// streak is settled into the Matured bucket (claimable now) and a Parked
// entry (claimable at ParkedUnlock), and a new streak starts.
type Position struct {
	Principal  *big.Int // staked amount, including the part queued for exit
	Weight     *big.Int // boosted earning weight; excludes exiting principal
	RewardDebt *big.Int // weight*acc/PRECISION as of the last streak settlement
	DelayBase  *big.Int // accumulator baseline for maturity within the streak

	Duration  uint64 // committed duration in seconds
	StartTime uint64 // commitment start

	Matured      *big.Int // reward matured and claimable
	Parked       *big.Int // reward earned, still maturing
	ParkedUnlock uint64   // when Parked becomes claimable

	ExitTime   uint64   // withdrawal request time, 0 when no exit is pending
	ExitAmount *big.Int // principal queued for exit; non-earning
}

func newPosition() *Position {
	return &Position{
		Principal:  new(big.Int),
		Weight:     new(big.Int),
		RewardDebt: new(big.Int),
		DelayBase:  new(big.Int),
		Matured:    new(big.Int),
		Parked:     new(big.Int),
		ExitAmount: new(big.Int),
	}
}

// normalize replaces nil big fields left by RLP decoding of an absent entry.
func (p *Position) normalize() *Position {
	for _, f := range []**big.Int{&p.Principal, &p.Weight, &p.RewardDebt, &p.DelayBase, &p.Matured, &p.Parked, &p.ExitAmount} {
		if *f == nil {
			*f = new(big.Int)
		}
	}
	return p
}

// IsEmpty reports whether the position holds no principal and no reward.
func (p *Position) IsEmpty() bool {
	return p.Principal.Sign() == 0 &&
		p.Matured.Sign() == 0 &&
		p.Parked.Sign() == 0 &&
		p.ExitAmount.Sign() == 0
}

// ExitPending reports whether a withdrawal has been requested and not yet
// executed or cancelled.
func (p *Position) ExitPending() bool {
	return p.ExitTime != 0
}

// Committed reports whether the commitment period has elapsed at time now.
func (p *Position) Committed(now uint64) bool {
	return p.Principal.Sign() > 0 && now >= p.StartTime+p.Duration
}

// streakAccrued returns the reward earned since the streak settlement,
// given the current accumulator.
func (p *Position) streakAccrued(acc *big.Int) *big.Int {
	earned := new(big.Int).Mul(p.Weight, acc)
	earned.Div(earned, quai.AccPrecision)
	earned.Sub(earned, p.RewardDebt)
	if earned.Sign() < 0 {
		earned.SetInt64(0)
	}
	return earned
}

// streakMatured returns the matured share of the streak accrual, where cpAcc
// is the accumulator as of now - delay. The result is clamped to the total
// streak accrual so a fresh baseline can never mature more than was earned.
func (p *Position) streakMatured(acc, cpAcc *big.Int) *big.Int {
	base := p.DelayBase
	if cpAcc.Cmp(base) <= 0 {
		return new(big.Int)
	}
	cp := cpAcc
	if cp.Cmp(acc) > 0 {
		cp = acc
	}
	matured := new(big.Int).Sub(cp, base)
	matured.Mul(matured, p.Weight)
	matured.Div(matured, quai.AccPrecision)
	if accrued := p.streakAccrued(acc); matured.Cmp(accrued) > 0 {
		matured.Set(accrued)
	}
	return matured
}

// collectParked moves a matured parked entry into the claimable bucket.
func (p *Position) collectParked(now uint64) {
	if p.Parked.Sign() > 0 && p.ParkedUnlock <= now {
		p.Matured.Add(p.Matured, p.Parked)
		p.Parked = new(big.Int)
		p.ParkedUnlock = 0
	}
}

// closeStreak settles the current streak at accumulator acc: the matured
// share joins the claimable bucket; the immature share is either parked until
// now + delay or forfeited (returned to the caller). The streak restarts at
// acc with the current weight.
func (p *Position) closeStreak(acc, cpAcc *big.Int, now, delay uint64, forfeitImmature bool) (forfeited *big.Int) {
	matured := p.streakMatured(acc, cpAcc)
	accrued := p.streakAccrued(acc)
	immature := new(big.Int).Sub(accrued, matured)

	p.Matured.Add(p.Matured, matured)

	forfeited = new(big.Int)
	if immature.Sign() > 0 {
		if forfeitImmature {
			forfeited = immature
		} else {
			p.Parked.Add(p.Parked, immature)
			p.ParkedUnlock = now + delay
		}
	}

	p.DelayBase = new(big.Int).Set(acc)
	p.resetDebt(acc)
	return forfeited
}

// resetDebt re-anchors RewardDebt at the current weight and accumulator.
func (p *Position) resetDebt(acc *big.Int) {
	debt := new(big.Int).Mul(p.Weight, acc)
	p.RewardDebt = debt.Div(debt, quai.AccPrecision)
}
