// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package native

import (
	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

var (
	slotOwner          = quai.BytesToBytes32([]byte("native-owner"))
	slotEmissionRate   = quai.BytesToBytes32([]byte("native-emission-rate"))
	slotAccPerShare    = quai.BytesToBytes32([]byte("native-acc-per-share"))
	slotTotalPrincipal = quai.BytesToBytes32([]byte("native-total-principal"))
	slotTotalWeight    = quai.BytesToBytes32([]byte("native-total-weight"))
	slotTotalExiting   = quai.BytesToBytes32([]byte("native-total-exiting"))
	slotLastUpdate     = quai.BytesToBytes32([]byte("native-last-update"))
	slotPoolLimit      = quai.BytesToBytes32([]byte("native-pool-limit"))
	slotPositions      = quai.BytesToBytes32([]byte("native-positions"))
	slotEntered        = quai.BytesToBytes32([]byte("native-entered"))
)

// storage groups the pool's typed slots.
type storage struct {
	owner *solidity.Address

	emissionRate   *solidity.Uint256 // reward units per second
	accPerShare    *solidity.Uint256 // scaled by quai.AccPrecision
	totalPrincipal *solidity.Uint256
	totalWeight    *solidity.Uint256
	totalExiting   *solidity.Uint256
	lastUpdate     *solidity.Uint256
	poolLimit      *solidity.Uint256 // 0 means unlimited

	positions *solidity.Mapping[quai.Address, *Position]

	exitWindow  *solidity.ConfigVariable
	rewardDelay *solidity.ConfigVariable

	entered *solidity.Uint256 // re-entrancy flag
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		owner:          solidity.NewAddress(sctx, slotOwner),
		emissionRate:   solidity.NewUint256(sctx, slotEmissionRate),
		accPerShare:    solidity.NewUint256(sctx, slotAccPerShare),
		totalPrincipal: solidity.NewUint256(sctx, slotTotalPrincipal),
		totalWeight:    solidity.NewUint256(sctx, slotTotalWeight),
		totalExiting:   solidity.NewUint256(sctx, slotTotalExiting),
		lastUpdate:     solidity.NewUint256(sctx, slotLastUpdate),
		poolLimit:      solidity.NewUint256(sctx, slotPoolLimit),
		positions:      solidity.NewMapping[quai.Address, *Position](sctx, slotPositions),
		exitWindow:     solidity.NewConfigVariable(sctx, "native-exit-window", quai.ExitWindow),
		rewardDelay:    solidity.NewConfigVariable(sctx, "native-reward-delay", quai.RewardDelay),
		entered:        solidity.NewUint256(sctx, slotEntered),
	}
}

func (s *storage) getPosition(addr quai.Address) (*Position, error) {
	pos, err := s.positions.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return pos.normalize(), nil
}

// setPosition persists the position, clearing the slot when it is empty.
func (s *storage) setPosition(addr quai.Address, pos *Position, isNew bool) error {
	if pos.IsEmpty() {
		return errors.Wrap(s.positions.Clear(addr), "failed to clear position")
	}
	return errors.Wrap(s.positions.Set(addr, pos, isNew), "failed to set position")
}
