// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lppool

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// UserInfo aggregates one account's LP stake for the dashboard.
type UserInfo struct {
	Amount    *big.Int `json:"amount"`
	Pending   *big.Int `json:"pending"`
	LockStart uint64   `json:"lockStart"`
}

// LockInfo describes where an account stands inside its lock+grace cycle.
type LockInfo struct {
	LockStart    uint64 `json:"lockStart"`
	Withdrawable bool   `json:"withdrawable"`
	// UnlockBlock is when the current (or next) grace phase opens;
	// RelockBlock is when it closes again.
	UnlockBlock uint64 `json:"unlockBlock"`
	RelockBlock uint64 `json:"relockBlock"`
}

// PoolInfo aggregates the pool-wide figures.
type PoolInfo struct {
	TotalStaked     *big.Int `json:"totalStaked"`
	RewardPerBlock  *big.Int `json:"rewardPerBlock"`
	RewardBalance   *big.Int `json:"rewardBalance"`
	LockDuration    uint64   `json:"lockDuration"`
	GracePeriod     uint64   `json:"gracePeriod"`
	LastRewardBlock uint64   `json:"lastRewardBlock"`
}

// virtualAcc computes the accumulator as settle(block) would leave it,
// without touching storage.
func (p *Pool) virtualAcc(block uint64) (*big.Int, error) {
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
	if totalStaked.Sign() == 0 {
		return acc, nil
	}
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
	grow := new(big.Int).Mul(emission, quai.AccPrecision)
	return acc.Add(acc, grow.Div(grow, totalStaked)), nil
}

// PendingReward returns earned but unpaid reward at the given block.
func (p *Pool) PendingReward(account quai.Address, block uint64) (*big.Int, error) {
	pos, err := p.store.getPosition(account)
	if err != nil {
		return nil, err
	}
	acc, err := p.virtualAcc(block)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(pos.Pending, pos.accrued(acc)), nil
}

// GetUserInfo returns the aggregate view of one account.
func (p *Pool) GetUserInfo(account quai.Address, block uint64) (*UserInfo, error) {
	pos, err := p.store.getPosition(account)
	if err != nil {
		return nil, err
	}
	pending, err := p.PendingReward(account, block)
	if err != nil {
		return nil, err
	}
	return &UserInfo{
		Amount:    pos.Amount,
		Pending:   pending,
		LockStart: pos.LockStart,
	}, nil
}

// GetLockInfo returns the account's position inside its lock+grace cycle.
func (p *Pool) GetLockInfo(account quai.Address, block uint64) (*LockInfo, error) {
	pos, err := p.store.getPosition(account)
	if err != nil {
		return nil, err
	}
	offset, lock, grace, err := p.cyclePosition(pos, block)
	if err != nil {
		return nil, err
	}
	info := &LockInfo{
		LockStart:    pos.LockStart,
		Withdrawable: offset >= lock,
	}
	cycleStart := block - offset
	info.UnlockBlock = cycleStart + lock
	info.RelockBlock = cycleStart + lock + grace
	return info, nil
}

// GetPoolInfo returns the pool-wide figures.
func (p *Pool) GetPoolInfo() (*PoolInfo, error) {
	info := &PoolInfo{}
	var err error
	if info.TotalStaked, err = p.store.totalStaked.Get(); err != nil {
		return nil, err
	}
	if info.RewardPerBlock, err = p.store.rewardPerBlock.Get(); err != nil {
		return nil, err
	}
	if info.RewardBalance, err = p.guard.Fundable(); err != nil {
		return nil, err
	}
	if info.LockDuration, err = p.store.lockDuration.Get(); err != nil {
		return nil, err
	}
	if info.GracePeriod, err = p.store.gracePeriod.Get(); err != nil {
		return nil, err
	}
	last, err := p.store.lastRewardBlock.Get()
	if err != nil {
		return nil, err
	}
	info.LastRewardBlock = last.Uint64()
	return info, nil
}

// GetRewardBalance returns the fundable reward budget.
func (p *Pool) GetRewardBalance() (*big.Int, error) {
	return p.guard.Fundable()
}

// Owner returns the pool owner.
func (p *Pool) Owner() (quai.Address, error) {
	return p.store.owner.Get()
}
