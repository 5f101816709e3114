// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package native implements the duration-boosted QUAI staking pool. Stakers
// commit principal for a fixed duration and earn a boosted share of a
// per-second emission. Rewards mature after a delay window tracked by a
// checkpoint ring, and withdrawals pass through an exit window during which
// the exiting principal earns nothing.
package native

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/ledger/funding"
	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/ledger/stakes"
	"github.com/dominant-strategies/go-quai-stake/ledger/token"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Pool is the staking ledger facade. All methods follow the same discipline:
// global settlement first, then position settlement, then the state change.
type Pool struct {
	sctx  *solidity.Context
	store *storage
	guard *funding.Guard
	cps   *checkpoints
	asset token.Asset
}

// New creates the pool ledger bound to the contract address of sctx. The
// staked asset is also the reward asset, so deposited principal is reserved
// against the funding guard.
func New(sctx *solidity.Context, asset token.Asset) *Pool {
	return &Pool{
		sctx:  sctx,
		store: newStorage(sctx),
		guard: funding.New(sctx, asset),
		cps:   newCheckpoints(sctx, quai.CheckpointCap, quai.CheckpointStep),
		asset: asset,
	}
}

// Guard exposes the pool's funding guard.
func (p *Pool) Guard() *funding.Guard {
	return p.guard
}

// Address returns the pool's contract address.
func (p *Pool) Address() quai.Address {
	return p.sctx.Address()
}

// Initialize sets the pool owner and starts the emission clock. It can only
// run once.
func (p *Pool) Initialize(owner quai.Address, now uint64) error {
	current, err := p.store.owner.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.NewRequireError("pool already initialized")
	}
	if owner.IsZero() {
		return reverts.NewRequireError("owner must not be the zero address")
	}
	p.store.owner.Set(owner)
	return p.store.lastUpdate.Set(new(big.Int).SetUint64(now))
}

func (p *Pool) requireOwner(caller quai.Address) error {
	owner, err := p.store.owner.Get()
	if err != nil {
		return err
	}
	if owner != caller {
		return reverts.NewRequireError("caller is not the pool owner")
	}
	return nil
}

func (p *Pool) enter() error {
	entered, err := p.store.entered.Get()
	if err != nil {
		return err
	}
	if entered.Sign() != 0 {
		return reverts.NewRequireError("re-entrant pool call")
	}
	return p.store.entered.Set(big.NewInt(1))
}

func (p *Pool) leave() {
	// runs inside a checkpointed operation; a failed reset reverts with it
	_ = p.store.entered.Set(new(big.Int))
}

// settle advances the accumulator to now. Emission is capped by the funding
// guard's allocation headroom; while nobody is staked the time cursor still
// advances so an empty period mints nothing retroactively.
func (p *Pool) settle(now uint64) (*big.Int, error) {
	acc, err := p.store.accPerShare.Get()
	if err != nil {
		return nil, err
	}
	last, err := p.store.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	if now <= last.Uint64() {
		return acc, nil
	}
	totalWeight, err := p.store.totalWeight.Get()
	if err != nil {
		return nil, err
	}
	if totalWeight.Sign() > 0 {
		emission, err := p.emissionFor(now-last.Uint64(), true)
		if err != nil {
			return nil, err
		}
		if emission.Sign() > 0 {
			grow := new(big.Int).Mul(emission, quai.AccPrecision)
			acc.Add(acc, grow.Div(grow, totalWeight))
			if err := p.store.accPerShare.Set(acc); err != nil {
				return nil, err
			}
			if err := p.guard.Allocate(emission); err != nil {
				return nil, err
			}
		}
	}
	if err := p.store.lastUpdate.Set(new(big.Int).SetUint64(now)); err != nil {
		return nil, err
	}
	return acc, p.cps.Push(now, acc)
}

// emissionFor returns emissionRate*elapsed, capped to the allocation headroom
// when capped is set.
func (p *Pool) emissionFor(elapsed uint64, capped bool) (*big.Int, error) {
	rate, err := p.store.emissionRate.Get()
	if err != nil {
		return nil, err
	}
	emission := rate.Mul(rate, new(big.Int).SetUint64(elapsed))
	if capped {
		headroom, err := p.guard.AllocationCap()
		if err != nil {
			return nil, err
		}
		if emission.Cmp(headroom) > 0 {
			emission = headroom
		}
	}
	return emission, nil
}

// virtualAcc computes the accumulator as settle(now) would leave it, without
// touching storage. Used by the read views.
func (p *Pool) virtualAcc(now uint64) (*big.Int, error) {
	acc, err := p.store.accPerShare.Get()
	if err != nil {
		return nil, err
	}
	last, err := p.store.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	if now <= last.Uint64() {
		return acc, nil
	}
	totalWeight, err := p.store.totalWeight.Get()
	if err != nil {
		return nil, err
	}
	if totalWeight.Sign() == 0 {
		return acc, nil
	}
	emission, err := p.emissionFor(now-last.Uint64(), true)
	if err != nil {
		return nil, err
	}
	grow := new(big.Int).Mul(emission, quai.AccPrecision)
	return acc.Add(acc, grow.Div(grow, totalWeight)), nil
}

// maturityAcc returns the checkpointed accumulator as of now - delay.
func (p *Pool) maturityAcc(now, delay uint64) (*big.Int, error) {
	cutoff := uint64(0)
	if now > delay {
		cutoff = now - delay
	}
	return p.cps.AccAt(cutoff)
}

// settleAccount closes the position's accrual streak at the settled
// accumulator. When forfeitImmature is set (exit before the commitment
// elapsed, cancel), the immature share is returned to the fundable budget.
func (p *Pool) settleAccount(pos *Position, acc *big.Int, now uint64, forfeitImmature bool) error {
	delay, err := p.store.rewardDelay.Get()
	if err != nil {
		return err
	}
	pos.collectParked(now)
	cpAcc, err := p.maturityAcc(now, delay)
	if err != nil {
		return err
	}
	forfeited := pos.closeStreak(acc, cpAcc, now, delay, forfeitImmature)
	if forfeited.Sign() > 0 {
		return p.guard.Deallocate(forfeited)
	}
	return nil
}

// payMatured transfers min(matured bucket, fundable budget) to the account.
func (p *Pool) payMatured(pos *Position, to quai.Address) (*big.Int, error) {
	fundable, err := p.guard.Fundable()
	if err != nil {
		return nil, err
	}
	pay := new(big.Int).Set(pos.Matured)
	if pay.Cmp(fundable) > 0 {
		pay.Set(fundable)
	}
	if pay.Sign() == 0 {
		return pay, nil
	}
	if err := p.guard.PayReward(to, pay); err != nil {
		return nil, err
	}
	pos.Matured = new(big.Int).Sub(pos.Matured, pay)
	return pay, nil
}

// Deposit stakes amount for the given commitment duration. A new position
// anchors its maturity baseline at the accumulator as of now - delay; a
// top-up must repeat the committed duration and settles the running streak
// before the weight changes. Deposits are rejected while an exit is pending.
func (p *Pool) Deposit(staker quai.Address, amount *big.Int, duration stakes.Duration, now uint64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	if amount.Sign() <= 0 {
		return reverts.NewRequireError("deposit amount must be positive")
	}
	multiplier, err := stakes.Multiplier(duration)
	if err != nil {
		return err
	}
	pos, err := p.store.getPosition(staker)
	if err != nil {
		return err
	}
	wasEmpty := pos.IsEmpty()
	if pos.ExitPending() {
		return reverts.NewRequireError("cannot deposit while a withdrawal is pending")
	}

	totalPrincipal, err := p.store.totalPrincipal.Get()
	if err != nil {
		return err
	}
	limit, err := p.store.poolLimit.Get()
	if err != nil {
		return err
	}
	if limit.Sign() > 0 && new(big.Int).Add(totalPrincipal, amount).Cmp(limit) > 0 {
		return reverts.NewRequireError("deposit exceeds pool limit")
	}

	acc, err := p.settle(now)
	if err != nil {
		return err
	}

	if err := p.asset.Transfer(staker, p.sctx.Address(), amount); err != nil {
		return err
	}
	if err := p.guard.Reserve(amount); err != nil {
		return err
	}

	oldWeight := new(big.Int).Set(pos.Weight)
	if pos.Principal.Sign() == 0 {
		delay, err := p.store.rewardDelay.Get()
		if err != nil {
			return err
		}
		baseline, err := p.maturityAcc(now, delay)
		if err != nil {
			return err
		}
		pos.Duration = uint64(duration)
		pos.StartTime = now
		pos.Principal = new(big.Int).Set(amount)
		pos.Weight = stakes.CalculateWeight(pos.Principal, multiplier)
		pos.DelayBase = new(big.Int).Set(baseline)
		pos.resetDebt(acc)
	} else {
		if pos.Duration != uint64(duration) {
			return reverts.NewRequireError("top-up duration must match the committed duration")
		}
		if err := p.settleAccount(pos, acc, now, false); err != nil {
			return err
		}
		pos.Principal.Add(pos.Principal, amount)
		pos.Weight = stakes.CalculateWeight(pos.Principal, multiplier)
		pos.resetDebt(acc)
	}

	if err := p.store.totalPrincipal.Add(amount); err != nil {
		return err
	}
	if err := p.store.totalWeight.Add(new(big.Int).Sub(pos.Weight, oldWeight)); err != nil {
		return err
	}
	return p.store.setPosition(staker, pos, wasEmpty)
}

// RequestWithdraw queues amount of principal for exit. The exiting amount
// stops earning from this instant. A request after the commitment has elapsed
// harvests the matured reward and parks the still-maturing accrual; a request
// before the commitment elapsed forfeits the immature accrual.
func (p *Pool) RequestWithdraw(staker quai.Address, amount *big.Int, now uint64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	if amount.Sign() <= 0 {
		return reverts.NewRequireError("withdraw amount must be positive")
	}
	pos, err := p.store.getPosition(staker)
	if err != nil {
		return err
	}
	if pos.Principal.Sign() == 0 {
		return reverts.NewRequireError("no active position")
	}
	if pos.ExitPending() {
		return reverts.NewRequireError("a withdrawal is already pending")
	}
	if amount.Cmp(pos.Principal) > 0 {
		return reverts.NewRequireError("withdraw amount exceeds staked principal")
	}

	acc, err := p.settle(now)
	if err != nil {
		return err
	}
	committed := pos.Committed(now)
	if err := p.settleAccount(pos, acc, now, !committed); err != nil {
		return err
	}
	if committed {
		if _, err := p.payMatured(pos, staker); err != nil {
			return err
		}
	}

	multiplier, err := stakes.Multiplier(stakes.Duration(pos.Duration))
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(pos.Principal, amount)
	oldWeight := pos.Weight
	pos.Weight = stakes.CalculateWeight(remaining, multiplier)
	pos.resetDebt(acc)
	pos.ExitTime = now
	pos.ExitAmount = new(big.Int).Set(amount)

	if err := p.store.totalWeight.Sub(new(big.Int).Sub(oldWeight, pos.Weight)); err != nil {
		return err
	}
	if err := p.store.totalExiting.Add(amount); err != nil {
		return err
	}
	return p.store.setPosition(staker, pos, false)
}

// ExecuteWithdraw pays out the queued principal once the exit window has
// elapsed, along with any matured reward the budget can cover. A position
// emptied of principal forgets its commitment; an immature parked entry
// survives and can be claimed once it unlocks.
func (p *Pool) ExecuteWithdraw(staker quai.Address, now uint64) (*big.Int, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos, err := p.store.getPosition(staker)
	if err != nil {
		return nil, err
	}
	if !pos.ExitPending() {
		return nil, reverts.NewRequireError("no withdrawal pending")
	}
	window, err := p.store.exitWindow.Get()
	if err != nil {
		return nil, err
	}
	if now < pos.ExitTime+window {
		return nil, reverts.NewRequireError("exit window has not elapsed")
	}

	if _, err := p.settle(now); err != nil {
		return nil, err
	}

	amount := pos.ExitAmount
	if err := p.guard.Release(amount); err != nil {
		return nil, err
	}
	if err := p.asset.Transfer(p.sctx.Address(), staker, amount); err != nil {
		return nil, err
	}
	if err := p.store.totalExiting.Sub(amount); err != nil {
		return nil, err
	}
	if err := p.store.totalPrincipal.Sub(amount); err != nil {
		return nil, err
	}

	pos.Principal = new(big.Int).Sub(pos.Principal, amount)
	pos.ExitTime = 0
	pos.ExitAmount = new(big.Int)
	pos.collectParked(now)
	if _, err := p.payMatured(pos, staker); err != nil {
		return nil, err
	}
	if pos.Principal.Sign() == 0 {
		pos.Duration = 0
		pos.StartTime = 0
	}
	return amount, p.store.setPosition(staker, pos, false)
}

// CancelWithdraw aborts a pending exit: the queued principal resumes earning
// at its boosted weight and every parked (not yet matured) reward entry is
// forfeited back to the reward budget.
func (p *Pool) CancelWithdraw(staker quai.Address, now uint64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	pos, err := p.store.getPosition(staker)
	if err != nil {
		return err
	}
	if !pos.ExitPending() {
		return reverts.NewRequireError("no withdrawal pending")
	}

	acc, err := p.settle(now)
	if err != nil {
		return err
	}
	if err := p.settleAccount(pos, acc, now, true); err != nil {
		return err
	}
	if pos.Parked.Sign() > 0 {
		if err := p.guard.Deallocate(pos.Parked); err != nil {
			return err
		}
		pos.Parked = new(big.Int)
		pos.ParkedUnlock = 0
	}

	multiplier, err := stakes.Multiplier(stakes.Duration(pos.Duration))
	if err != nil {
		return err
	}
	amount := pos.ExitAmount
	oldWeight := pos.Weight
	pos.Weight = stakes.CalculateWeight(pos.Principal, multiplier)
	pos.resetDebt(acc)
	pos.ExitTime = 0
	pos.ExitAmount = new(big.Int)

	if err := p.store.totalWeight.Add(new(big.Int).Sub(pos.Weight, oldWeight)); err != nil {
		return err
	}
	if err := p.store.totalExiting.Sub(amount); err != nil {
		return err
	}
	return p.store.setPosition(staker, pos, false)
}

// Claim pays out matured reward, capped by the fundable budget. An
// underfunded claim pays the fundable fraction and leaves the remainder
// pending against the unadvanced portion of the maturity baseline; it never
// fails outright for lack of funding.
func (p *Pool) Claim(staker quai.Address, now uint64) (*big.Int, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos, err := p.store.getPosition(staker)
	if err != nil {
		return nil, err
	}
	if pos.IsEmpty() {
		return nil, reverts.NewRequireError("no position")
	}

	acc, err := p.settle(now)
	if err != nil {
		return nil, err
	}
	delay, err := p.store.rewardDelay.Get()
	if err != nil {
		return nil, err
	}
	pos.collectParked(now)
	cpAcc, err := p.maturityAcc(now, delay)
	if err != nil {
		return nil, err
	}
	fresh := pos.streakMatured(acc, cpAcc)

	claimable := new(big.Int).Add(pos.Matured, fresh)
	fundable, err := p.guard.Fundable()
	if err != nil {
		return nil, err
	}
	pay := claimable
	if pay.Cmp(fundable) > 0 {
		pay = fundable
	}

	// the matured bucket drains first; whatever remains comes out of the
	// streak, advancing its baseline in proportion to the fraction paid
	fromBucket := new(big.Int).Set(pay)
	if fromBucket.Cmp(pos.Matured) > 0 {
		fromBucket.Set(pos.Matured)
	}
	fromStreak := new(big.Int).Sub(pay, fromBucket)

	pos.Matured = new(big.Int).Sub(pos.Matured, fromBucket)
	if fromStreak.Sign() > 0 {
		pos.RewardDebt = new(big.Int).Add(pos.RewardDebt, fromStreak)
		advance := new(big.Int).Mul(fromStreak, quai.AccPrecision)
		advance.Div(advance, pos.Weight)
		pos.DelayBase = new(big.Int).Add(pos.DelayBase, advance)
	}

	if err := p.guard.PayReward(staker, pay); err != nil {
		return nil, err
	}
	return pay, p.store.setPosition(staker, pos, false)
}

// SetEmissionRate updates the per-second emission after settling the elapsed
// period at the old rate.
func (p *Pool) SetEmissionRate(caller quai.Address, rate *big.Int, now uint64) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if rate.Sign() < 0 {
		return reverts.NewRequireError("emission rate must not be negative")
	}
	if _, err := p.settle(now); err != nil {
		return err
	}
	return p.store.emissionRate.Set(rate)
}

// FundRewards moves reward budget from the funder into the pool. Anyone may
// fund.
func (p *Pool) FundRewards(funder quai.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.NewRequireError("funding amount must be positive")
	}
	return p.asset.Transfer(funder, p.sctx.Address(), amount)
}

// UpdatePoolLimit sets the maximum total principal. Zero removes the limit.
// An existing total above the new limit stays; only new deposits are blocked.
func (p *Pool) UpdatePoolLimit(caller quai.Address, limit *big.Int) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if limit.Sign() < 0 {
		return reverts.NewRequireError("pool limit must not be negative")
	}
	return p.store.poolLimit.Set(limit)
}

// UpdatePeriods sets the exit window and the reward maturity delay.
func (p *Pool) UpdatePeriods(caller quai.Address, exitWindow, rewardDelay uint64) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if exitWindow == 0 || rewardDelay == 0 {
		return reverts.NewRequireError("periods must be positive")
	}
	if err := p.store.exitWindow.Set(exitWindow); err != nil {
		return err
	}
	return p.store.rewardDelay.Set(rewardDelay)
}

// WithdrawExcessReward moves surplus reward budget to the given address. It
// is hard-rejected when it would breach reserved principal or allocated
// rewards.
func (p *Pool) WithdrawExcessReward(caller, to quai.Address, amount *big.Int, now uint64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return reverts.NewRequireError("withdraw amount must be positive")
	}
	if _, err := p.settle(now); err != nil {
		return err
	}
	return p.guard.WithdrawSurplus(to, amount)
}

// RecoverForeignAsset sweeps tokens that are not the pool's staked asset.
func (p *Pool) RecoverForeignAsset(caller quai.Address, foreign token.Asset, to quai.Address, amount *big.Int) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if foreign.Address() == p.asset.Address() {
		return reverts.NewRequireError("cannot recover the pool asset")
	}
	return foreign.Transfer(p.sctx.Address(), to, amount)
}
