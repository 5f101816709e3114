// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package funding tracks how much of a pool's reward-asset balance is actual
// reward budget versus reserved principal, and caps every allocation and
// payout to what is truly funded. The accumulator may only ever promise what
// this guard can back.
package funding

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/ledger/token"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

var (
	slotReserved  = quai.BytesToBytes32([]byte("funding-reserved-principal"))
	slotAllocated = quai.BytesToBytes32([]byte("funding-cumulative-allocated"))
	slotPaid      = quai.BytesToBytes32([]byte("funding-cumulative-paid"))
)

// Guard manages the reward budget of one pool instance.
type Guard struct {
	pool   quai.Address
	reward token.Asset

	reserved  *solidity.Uint256
	allocated *solidity.Uint256
	paid      *solidity.Uint256
}

// New creates a guard for the pool at the given address, paying rewards in
// the given asset.
func New(sctx *solidity.Context, reward token.Asset) *Guard {
	return &Guard{
		pool:      sctx.Address(),
		reward:    reward,
		reserved:  solidity.NewUint256(sctx, slotReserved),
		allocated: solidity.NewUint256(sctx, slotAllocated),
		paid:      solidity.NewUint256(sctx, slotPaid),
	}
}

// Fundable returns the reward budget: the pool's reward-asset balance minus
// the principal it must never touch.
func (g *Guard) Fundable() (*big.Int, error) {
	balance, err := g.reward.BalanceOf(g.pool)
	if err != nil {
		return nil, err
	}
	reserved, err := g.reserved.Get()
	if err != nil {
		return nil, err
	}
	fundable := new(big.Int).Sub(balance, reserved)
	if fundable.Sign() < 0 {
		fundable.SetInt64(0)
	}
	return fundable, nil
}

// Outstanding returns allocated-but-unpaid reward.
func (g *Guard) Outstanding() (*big.Int, error) {
	allocated, err := g.allocated.Get()
	if err != nil {
		return nil, err
	}
	paid, err := g.paid.Get()
	if err != nil {
		return nil, err
	}
	outstanding := allocated.Sub(allocated, paid)
	if outstanding.Sign() < 0 {
		outstanding.SetInt64(0)
	}
	return outstanding, nil
}

// AllocationCap returns how much new emission may be minted into the
// accumulator right now: max(0, fundable - outstanding).
func (g *Guard) AllocationCap() (*big.Int, error) {
	fundable, err := g.Fundable()
	if err != nil {
		return nil, err
	}
	outstanding, err := g.Outstanding()
	if err != nil {
		return nil, err
	}
	headroom := fundable.Sub(fundable, outstanding)
	if headroom.Sign() < 0 {
		headroom.SetInt64(0)
	}
	return headroom, nil
}

// Allocate records reward minted into the accumulator.
func (g *Guard) Allocate(amount *big.Int) error {
	return g.allocated.Add(amount)
}

// Deallocate returns forfeited reward to the fundable budget.
// Clamps at zero rather than failing; forfeits can race funding top-ups.
func (g *Guard) Deallocate(amount *big.Int) error {
	allocated, err := g.allocated.Get()
	if err != nil {
		return err
	}
	if allocated.Cmp(amount) < 0 {
		return g.allocated.Set(new(big.Int))
	}
	return g.allocated.Set(allocated.Sub(allocated, amount))
}

// PayReward transfers earned reward out of the pool and records it as paid.
// The caller is responsible for having capped amount to Fundable().
func (g *Guard) PayReward(to quai.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := g.reward.Transfer(g.pool, to, amount); err != nil {
		return err
	}
	return g.paid.Add(amount)
}

// Reserve marks principal as untouchable by reward payouts. Only used by
// pools whose staked asset is the reward asset.
func (g *Guard) Reserve(amount *big.Int) error {
	return g.reserved.Add(amount)
}

// Release un-reserves principal on withdrawal.
func (g *Guard) Release(amount *big.Int) error {
	return g.reserved.Sub(amount)
}

// Reserved returns the currently reserved principal.
func (g *Guard) Reserved() (*big.Int, error) {
	return g.reserved.Get()
}

// Allocated returns cumulative reward allocated to the accumulator.
func (g *Guard) Allocated() (*big.Int, error) {
	return g.allocated.Get()
}

// Paid returns cumulative reward paid out.
func (g *Guard) Paid() (*big.Int, error) {
	return g.paid.Get()
}

// WithdrawSurplus moves unallocated reward budget out of the pool. It is
// hard-rejected if it would breach the backing of principal or of already
// allocated rewards.
func (g *Guard) WithdrawSurplus(to quai.Address, amount *big.Int) error {
	surplus, err := g.AllocationCap()
	if err != nil {
		return err
	}
	if amount.Cmp(surplus) > 0 {
		return reverts.NewRequireError("withdraw exceeds surplus reward budget")
	}
	return g.reward.Transfer(g.pool, to, amount)
}
