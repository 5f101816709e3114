// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package native

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/ledger/stakes"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

// UserInfo aggregates one account's position for the dashboard.
type UserInfo struct {
	Principal  *big.Int `json:"principal"`
	Weight     *big.Int `json:"weight"`
	Duration   uint64   `json:"duration"`
	StartTime  uint64   `json:"startTime"`
	Pending    *big.Int `json:"pending"`
	Claimable  *big.Int `json:"claimable"`
	Locked     *big.Int `json:"locked"`
	ExitAmount *big.Int `json:"exitAmount"`
	ExitTime   uint64   `json:"exitTime"`
	ExitUnlock uint64   `json:"exitUnlock"`
}

// PoolInfo aggregates the pool-wide figures.
type PoolInfo struct {
	TotalPrincipal *big.Int `json:"totalPrincipal"`
	TotalWeight    *big.Int `json:"totalWeight"`
	TotalExiting   *big.Int `json:"totalExiting"`
	EmissionRate   *big.Int `json:"emissionRate"`
	PoolLimit      *big.Int `json:"poolLimit"`
	RewardBalance  *big.Int `json:"rewardBalance"`
	ExitWindow     uint64   `json:"exitWindow"`
	RewardDelay    uint64   `json:"rewardDelay"`
	LastUpdate     uint64   `json:"lastUpdate"`
}

// PendingReward returns everything the account has earned and not been paid:
// matured, parked and still-accruing reward.
func (p *Pool) PendingReward(account quai.Address, now uint64) (*big.Int, error) {
	pos, err := p.store.getPosition(account)
	if err != nil {
		return nil, err
	}
	acc, err := p.virtualAcc(now)
	if err != nil {
		return nil, err
	}
	pending := new(big.Int).Add(pos.Matured, pos.Parked)
	return pending.Add(pending, pos.streakAccrued(acc)), nil
}

// Claimable returns the portion of pending reward a claim would target right
// now: the matured bucket, any parked entry past its unlock, and the matured
// share of the running streak.
func (p *Pool) Claimable(account quai.Address, now uint64) (*big.Int, error) {
	pos, err := p.store.getPosition(account)
	if err != nil {
		return nil, err
	}
	acc, err := p.virtualAcc(now)
	if err != nil {
		return nil, err
	}
	delay, err := p.store.rewardDelay.Get()
	if err != nil {
		return nil, err
	}
	cpAcc, err := p.maturityAcc(now, delay)
	if err != nil {
		return nil, err
	}
	claimable := new(big.Int).Set(pos.Matured)
	if pos.Parked.Sign() > 0 && pos.ParkedUnlock <= now {
		claimable.Add(claimable, pos.Parked)
	}
	return claimable.Add(claimable, pos.streakMatured(acc, cpAcc)), nil
}

// Locked returns reward earned but still inside the maturity delay.
func (p *Pool) Locked(account quai.Address, now uint64) (*big.Int, error) {
	pending, err := p.PendingReward(account, now)
	if err != nil {
		return nil, err
	}
	claimable, err := p.Claimable(account, now)
	if err != nil {
		return nil, err
	}
	locked := pending.Sub(pending, claimable)
	if locked.Sign() < 0 {
		locked.SetInt64(0)
	}
	return locked, nil
}

// GetUserInfo returns the aggregate view of one account.
func (p *Pool) GetUserInfo(account quai.Address, now uint64) (*UserInfo, error) {
	pos, err := p.store.getPosition(account)
	if err != nil {
		return nil, err
	}
	pending, err := p.PendingReward(account, now)
	if err != nil {
		return nil, err
	}
	claimable, err := p.Claimable(account, now)
	if err != nil {
		return nil, err
	}
	locked := new(big.Int).Sub(pending, claimable)
	if locked.Sign() < 0 {
		locked.SetInt64(0)
	}
	info := &UserInfo{
		Principal:  pos.Principal,
		Weight:     pos.Weight,
		Duration:   pos.Duration,
		StartTime:  pos.StartTime,
		Pending:    pending,
		Claimable:  claimable,
		Locked:     locked,
		ExitAmount: pos.ExitAmount,
		ExitTime:   pos.ExitTime,
	}
	if pos.ExitPending() {
		window, err := p.store.exitWindow.Get()
		if err != nil {
			return nil, err
		}
		info.ExitUnlock = pos.ExitTime + window
	}
	return info, nil
}

// GetPoolInfo returns the pool-wide figures.
func (p *Pool) GetPoolInfo(now uint64) (*PoolInfo, error) {
	info := &PoolInfo{}
	var err error
	if info.TotalPrincipal, err = p.store.totalPrincipal.Get(); err != nil {
		return nil, err
	}
	if info.TotalWeight, err = p.store.totalWeight.Get(); err != nil {
		return nil, err
	}
	if info.TotalExiting, err = p.store.totalExiting.Get(); err != nil {
		return nil, err
	}
	if info.EmissionRate, err = p.store.emissionRate.Get(); err != nil {
		return nil, err
	}
	if info.PoolLimit, err = p.store.poolLimit.Get(); err != nil {
		return nil, err
	}
	if info.RewardBalance, err = p.guard.Fundable(); err != nil {
		return nil, err
	}
	if info.ExitWindow, err = p.store.exitWindow.Get(); err != nil {
		return nil, err
	}
	if info.RewardDelay, err = p.store.rewardDelay.Get(); err != nil {
		return nil, err
	}
	last, err := p.store.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	info.LastUpdate = last.Uint64()
	return info, nil
}

// GetEstimatedAPY estimates the annual reward per unit of principal for the
// given commitment duration, in basis points against the current pool weight.
// Returns zero while nobody is staked.
func (p *Pool) GetEstimatedAPY(duration stakes.Duration) (*big.Int, error) {
	multiplier, err := stakes.Multiplier(duration)
	if err != nil {
		return nil, err
	}
	totalWeight, err := p.store.totalWeight.Get()
	if err != nil {
		return nil, err
	}
	if totalWeight.Sign() == 0 {
		return new(big.Int), nil
	}
	rate, err := p.store.emissionRate.Get()
	if err != nil {
		return nil, err
	}
	// yearly emission share of one principal unit at this boost, in bps
	apy := rate.Mul(rate, new(big.Int).SetUint64(quai.SecondsPerYear))
	apy.Mul(apy, big.NewInt(int64(multiplier)))
	apy.Mul(apy, big.NewInt(100)) // percent -> bps, net of the /100 boost scale
	return apy.Div(apy, totalWeight), nil
}

// GetRewardBalance returns the fundable reward budget.
func (p *Pool) GetRewardBalance() (*big.Int, error) {
	return p.guard.Fundable()
}

// Owner returns the pool owner.
func (p *Pool) Owner() (quai.Address, error) {
	return p.store.owner.Get()
}
