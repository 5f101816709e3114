// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lppool implements the LP-token staking pool. Accrual is indexed by
// block number at a flat reward-per-block rate, with no duration boost and no
// maturity delay. Each account cycles through a lock phase followed by a
// grace phase; withdrawals are only allowed during grace, and a deposit
// restarts the cycle.
package lppool

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/ledger/funding"
	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/ledger/token"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Pool is the LP staking ledger. The staked asset and the reward asset are
// distinct, so the funding guard never reserves principal; the entire reward
// asset balance is budget.
type Pool struct {
	sctx   *solidity.Context
	store  *storage
	guard  *funding.Guard
	staked token.Asset
	reward token.Asset
}

// New creates the pool ledger bound to the contract address of sctx.
func New(sctx *solidity.Context, staked, reward token.Asset) *Pool {
	return &Pool{
		sctx:   sctx,
		store:  newStorage(sctx),
		guard:  funding.New(sctx, reward),
		staked: staked,
		reward: reward,
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

// Initialize sets the pool owner and starts the accrual clock. It can only
// run once.
func (p *Pool) Initialize(owner quai.Address, block uint64) error {
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
	return p.store.lastRewardBlock.Set(new(big.Int).SetUint64(block))
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
	_ = p.store.entered.Set(new(big.Int))
}

// settle advances the accumulator to the given block, capping emission to the
// funding guard's headroom. An empty pool advances the block cursor without
// minting.
func (p *Pool) settle(block uint64) (*big.Int, error) {
	acc, err := p.store.accPerShare.Get()
	if err != nil {
		return nil, err
	}
	last, err := p.store.lastRewardBlock.Get()
	if err != nil {
		return nil, err
	}
	if block <= last.Uint64() {
		return acc, nil
	}
	totalStaked, err := p.store.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	if totalStaked.Sign() > 0 {
		rate, err := p.store.rewardPerBlock.Get()
		if err != nil {
			return nil, err
		}
		emission := rate.Mul(rate, new(big.Int).SetUint64(block-last.Uint64()))
		headroom, err := p.guard.AllocationCap()
		if err != nil {
			return nil, err
		}
		if emission.Cmp(headroom) > 0 {
			emission = headroom
		}
		if emission.Sign() > 0 {
			grow := new(big.Int).Mul(emission, quai.AccPrecision)
			acc.Add(acc, grow.Div(grow, totalStaked))
			if err := p.store.accPerShare.Set(acc); err != nil {
				return nil, err
			}
			if err := p.guard.Allocate(emission); err != nil {
				return nil, err
			}
		}
	}
	return acc, p.store.lastRewardBlock.Set(new(big.Int).SetUint64(block))
}

// harvest moves the streak accrual into the pending bucket and pays out as
// much of it as the budget covers. The unpaid remainder stays in the bucket.
func (p *Pool) harvest(pos *Position, to quai.Address, acc *big.Int) (*big.Int, error) {
	pos.Pending.Add(pos.Pending, pos.accrued(acc))
	pos.resetDebt(acc)

	fundable, err := p.guard.Fundable()
	if err != nil {
		return nil, err
	}
	pay := new(big.Int).Set(pos.Pending)
	if pay.Cmp(fundable) > 0 {
		pay.Set(fundable)
	}
	if pay.Sign() == 0 {
		return pay, nil
	}
	if err := p.guard.PayReward(to, pay); err != nil {
		return nil, err
	}
	pos.Pending = new(big.Int).Sub(pos.Pending, pay)
	return pay, nil
}

// cyclePosition returns where the account stands inside its lock+grace cycle.
func (p *Pool) cyclePosition(pos *Position, block uint64) (offset, lock, grace uint64, err error) {
	lock, err = p.store.lockDuration.Get()
	if err != nil {
		return
	}
	grace, err = p.store.gracePeriod.Get()
	if err != nil {
		return
	}
	if block > pos.LockStart {
		offset = (block - pos.LockStart) % (lock + grace)
	}
	return
}

// inGrace reports whether the account may withdraw at the given block.
func (p *Pool) inGrace(pos *Position, block uint64) (bool, error) {
	offset, lock, _, err := p.cyclePosition(pos, block)
	if err != nil {
		return false, err
	}
	return offset >= lock, nil
}

// Deposit stakes LP tokens, harvesting any earned reward first. The lock
// cycle restarts at the current block.
func (p *Pool) Deposit(staker quai.Address, amount *big.Int, block uint64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	if amount.Sign() <= 0 {
		return reverts.NewRequireError("deposit amount must be positive")
	}
	pos, err := p.store.getPosition(staker)
	if err != nil {
		return err
	}
	wasEmpty := pos.IsEmpty()

	acc, err := p.settle(block)
	if err != nil {
		return err
	}
	if pos.Amount.Sign() > 0 {
		if _, err := p.harvest(pos, staker, acc); err != nil {
			return err
		}
	}

	if err := p.staked.Transfer(staker, p.sctx.Address(), amount); err != nil {
		return err
	}
	pos.Amount.Add(pos.Amount, amount)
	pos.resetDebt(acc)
	pos.LockStart = block

	if err := p.store.totalStaked.Add(amount); err != nil {
		return err
	}
	return p.store.setPosition(staker, pos, wasEmpty)
}

// Withdraw unstakes LP tokens. Only allowed while the account's cycle is in
// its grace phase; earned reward is harvested alongside.
func (p *Pool) Withdraw(staker quai.Address, amount *big.Int, block uint64) error {
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
	if pos.Amount.Sign() == 0 {
		return reverts.NewRequireError("no active position")
	}
	if amount.Cmp(pos.Amount) > 0 {
		return reverts.NewRequireError("withdraw amount exceeds staked balance")
	}
	withdrawable, err := p.inGrace(pos, block)
	if err != nil {
		return err
	}
	if !withdrawable {
		return reverts.NewRequireError("position is locked")
	}

	acc, err := p.settle(block)
	if err != nil {
		return err
	}
	if _, err := p.harvest(pos, staker, acc); err != nil {
		return err
	}

	if err := p.staked.Transfer(p.sctx.Address(), staker, amount); err != nil {
		return err
	}
	pos.Amount = new(big.Int).Sub(pos.Amount, amount)
	pos.resetDebt(acc)

	if err := p.store.totalStaked.Sub(amount); err != nil {
		return err
	}
	return p.store.setPosition(staker, pos, false)
}

// Claim pays out earned reward, capped by the fundable budget; the unpaid
// remainder stays pending. It never fails for lack of funding.
func (p *Pool) Claim(staker quai.Address, block uint64) (*big.Int, error) {
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

	acc, err := p.settle(block)
	if err != nil {
		return nil, err
	}
	paid, err := p.harvest(pos, staker, acc)
	if err != nil {
		return nil, err
	}
	return paid, p.store.setPosition(staker, pos, false)
}

// EmergencyWithdraw returns the entire staked balance immediately, ignoring
// the lock cycle and forfeiting all earned reward back to the budget.
func (p *Pool) EmergencyWithdraw(staker quai.Address, block uint64) (*big.Int, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos, err := p.store.getPosition(staker)
	if err != nil {
		return nil, err
	}
	if pos.Amount.Sign() == 0 {
		return nil, reverts.NewRequireError("no active position")
	}

	acc, err := p.settle(block)
	if err != nil {
		return nil, err
	}
	forfeited := new(big.Int).Add(pos.Pending, pos.accrued(acc))
	if forfeited.Sign() > 0 {
		if err := p.guard.Deallocate(forfeited); err != nil {
			return nil, err
		}
	}

	amount := pos.Amount
	if err := p.staked.Transfer(p.sctx.Address(), staker, amount); err != nil {
		return nil, err
	}
	if err := p.store.totalStaked.Sub(amount); err != nil {
		return nil, err
	}

	pos.Amount = new(big.Int)
	pos.RewardDebt = new(big.Int)
	pos.Pending = new(big.Int)
	pos.LockStart = 0
	return amount, p.store.setPosition(staker, pos, false)
}

// SetRewardPerBlock updates the emission after settling the elapsed blocks at
// the old rate.
func (p *Pool) SetRewardPerBlock(caller quai.Address, rate *big.Int, block uint64) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if rate.Sign() < 0 {
		return reverts.NewRequireError("reward rate must not be negative")
	}
	if _, err := p.settle(block); err != nil {
		return err
	}
	return p.store.rewardPerBlock.Set(rate)
}

// FundRewards moves reward budget from the funder into the pool.
func (p *Pool) FundRewards(funder quai.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.NewRequireError("funding amount must be positive")
	}
	return p.reward.Transfer(funder, p.sctx.Address(), amount)
}

// UpdatePeriods sets the lock and grace phases, in blocks.
func (p *Pool) UpdatePeriods(caller quai.Address, lockDuration, gracePeriod uint64) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if lockDuration == 0 || gracePeriod == 0 {
		return reverts.NewRequireError("periods must be positive")
	}
	if err := p.store.lockDuration.Set(lockDuration); err != nil {
		return err
	}
	return p.store.gracePeriod.Set(gracePeriod)
}

// WithdrawExcessReward moves surplus reward budget out of the pool. Only
// permitted while nobody is staked at all; this stronger rule can never
// starve active stakers.
func (p *Pool) WithdrawExcessReward(caller, to quai.Address, amount *big.Int, block uint64) error {
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
	totalStaked, err := p.store.totalStaked.Get()
	if err != nil {
		return err
	}
	if totalStaked.Sign() != 0 {
		return reverts.NewRequireError("reward withdrawal requires an empty pool")
	}
	if _, err := p.settle(block); err != nil {
		return err
	}
	return p.guard.WithdrawSurplus(to, amount)
}

// RecoverForeignAsset sweeps tokens that are neither the staked LP token nor
// the reward asset.
func (p *Pool) RecoverForeignAsset(caller quai.Address, foreign token.Asset, to quai.Address, amount *big.Int) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if foreign.Address() == p.staked.Address() || foreign.Address() == p.reward.Address() {
		return reverts.NewRequireError("cannot recover a pool asset")
	}
	return foreign.Transfer(p.sctx.Address(), to, amount)
}
