// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lppool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

var (
	slotOwner           = quai.BytesToBytes32([]byte("lp-owner"))
	slotRewardPerBlock  = quai.BytesToBytes32([]byte("lp-reward-per-block"))
	slotAccPerShare     = quai.BytesToBytes32([]byte("lp-acc-per-share"))
	slotTotalStaked     = quai.BytesToBytes32([]byte("lp-total-staked"))
	slotLastRewardBlock = quai.BytesToBytes32([]byte("lp-last-reward-block"))
	slotPositions       = quai.BytesToBytes32([]byte("lp-positions"))
	slotEntered         = quai.BytesToBytes32([]byte("lp-entered"))
)

// Position is one account's LP stake.
//
// Pending holds reward that was harvested but could not be fully paid out of
// the fundable budget; it is paid first on the next harvest.
type Position struct {
	Amount     *big.Int // staked LP tokens
	RewardDebt *big.Int // amount*acc/PRECISION as of the last harvest
	Pending    *big.Int // harvested but unpaid reward
	LockStart  uint64   // block the current lock cycle started at
}

func (p *Position) normalize() *Position {
	for _, f := range []**big.Int{&p.Amount, &p.RewardDebt, &p.Pending} {
		if *f == nil {
			*f = new(big.Int)
		}
	}
	return p
}

// IsEmpty reports whether the position holds no stake and no unpaid reward.
func (p *Position) IsEmpty() bool {
	return p.Amount.Sign() == 0 && p.Pending.Sign() == 0
}

// accrued returns reward earned since the last harvest at accumulator acc.
func (p *Position) accrued(acc *big.Int) *big.Int {
	earned := new(big.Int).Mul(p.Amount, acc)
	earned.Div(earned, quai.AccPrecision)
	earned.Sub(earned, p.RewardDebt)
	if earned.Sign() < 0 {
		earned.SetInt64(0)
	}
	return earned
}

func (p *Position) resetDebt(acc *big.Int) {
	debt := new(big.Int).Mul(p.Amount, acc)
	p.RewardDebt = debt.Div(debt, quai.AccPrecision)
}

type storage struct {
	owner *solidity.Address

	rewardPerBlock  *solidity.Uint256
	accPerShare     *solidity.Uint256 // scaled by quai.AccPrecision
	totalStaked     *solidity.Uint256
	lastRewardBlock *solidity.Uint256

	positions *solidity.Mapping[quai.Address, *Position]

	lockDuration *solidity.ConfigVariable // blocks
	gracePeriod  *solidity.ConfigVariable // blocks

	entered *solidity.Uint256
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		owner:           solidity.NewAddress(sctx, slotOwner),
		rewardPerBlock:  solidity.NewUint256(sctx, slotRewardPerBlock),
		accPerShare:     solidity.NewUint256(sctx, slotAccPerShare),
		totalStaked:     solidity.NewUint256(sctx, slotTotalStaked),
		lastRewardBlock: solidity.NewUint256(sctx, slotLastRewardBlock),
		positions:       solidity.NewMapping[quai.Address, *Position](sctx, slotPositions),
		lockDuration:    solidity.NewConfigVariable(sctx, "lp-lock-duration", quai.LPLockDuration),
		gracePeriod:     solidity.NewConfigVariable(sctx, "lp-grace-period", quai.LPGracePeriod),
		entered:         solidity.NewUint256(sctx, slotEntered),
	}
}

func (s *storage) getPosition(addr quai.Address) (*Position, error) {
	pos, err := s.positions.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return pos.normalize(), nil
}

func (s *storage) setPosition(addr quai.Address, pos *Position, isNew bool) error {
	if pos.IsEmpty() {
		return errors.Wrap(s.positions.Clear(addr), "failed to clear position")
	}
	return errors.Wrap(s.positions.Set(addr, pos, isNew), "failed to set position")
}
