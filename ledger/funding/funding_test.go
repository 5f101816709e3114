// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/ledger/token"
	"github.com/dominant-strategies/go-quai-stake/lvldb"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/state"
)

var (
	poolAddr = quai.BytesToAddress([]byte("pool"))
	staker   = quai.BytesToAddress([]byte("staker"))
)

func newTestGuard(t *testing.T, balance int64) (*Guard, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	require.NoError(t, st.AddBalance(poolAddr, big.NewInt(balance)))
	return New(solidity.NewContext(poolAddr, st, nil), token.NewNative(st, nil)), st
}

func mustInt(t *testing.T) func(*big.Int, error) int64 {
	return func(got *big.Int, err error) int64 {
		require.NoError(t, err)
		return got.Int64()
	}
}

func TestFundableExcludesReserved(t *testing.T) {
	guard, _ := newTestGuard(t, 1000)

	assert.Equal(t, int64(1000), mustInt(t)(guard.Fundable()))

	require.NoError(t, guard.Reserve(big.NewInt(300)))
	assert.Equal(t, int64(700), mustInt(t)(guard.Fundable()))
	assert.Equal(t, int64(300), mustInt(t)(guard.Reserved()))

	require.NoError(t, guard.Release(big.NewInt(100)))
	assert.Equal(t, int64(800), mustInt(t)(guard.Fundable()))

	// more reserved than the balance covers clamps fundable at zero
	require.NoError(t, guard.Reserve(big.NewInt(5000)))
	assert.Equal(t, int64(0), mustInt(t)(guard.Fundable()))
}

func TestAllocationCap(t *testing.T) {
	guard, _ := newTestGuard(t, 1000)

	assert.Equal(t, int64(1000), mustInt(t)(guard.AllocationCap()))

	require.NoError(t, guard.Allocate(big.NewInt(600)))
	assert.Equal(t, int64(600), mustInt(t)(guard.Outstanding()))
	assert.Equal(t, int64(400), mustInt(t)(guard.AllocationCap()))

	// paying allocated reward moves balance and outstanding down together,
	// leaving the cap unchanged
	require.NoError(t, guard.PayReward(staker, big.NewInt(200)))
	assert.Equal(t, int64(400), mustInt(t)(guard.Outstanding()))
	assert.Equal(t, int64(800), mustInt(t)(guard.Fundable()))
	assert.Equal(t, int64(400), mustInt(t)(guard.AllocationCap()))

	// forfeits free their allocation
	require.NoError(t, guard.Deallocate(big.NewInt(400)))
	assert.Equal(t, int64(0), mustInt(t)(guard.Outstanding()))
	assert.Equal(t, int64(800), mustInt(t)(guard.AllocationCap()))
}

func TestDeallocateClampsAtZero(t *testing.T) {
	guard, _ := newTestGuard(t, 100)

	require.NoError(t, guard.Allocate(big.NewInt(50)))
	require.NoError(t, guard.Deallocate(big.NewInt(80)))
	assert.Equal(t, int64(0), mustInt(t)(guard.Allocated()))
}

func TestPayReward(t *testing.T) {
	guard, st := newTestGuard(t, 500)

	require.NoError(t, guard.PayReward(staker, big.NewInt(0)))
	require.NoError(t, guard.PayReward(staker, big.NewInt(120)))
	assert.Equal(t, int64(120), mustInt(t)(guard.Paid()))

	bal, err := st.GetBalance(staker)
	require.NoError(t, err)
	assert.Equal(t, int64(120), bal.Int64())
}

func TestWithdrawSurplus(t *testing.T) {
	guard, st := newTestGuard(t, 1000)

	require.NoError(t, guard.Reserve(big.NewInt(300)))
	require.NoError(t, guard.Allocate(big.NewInt(200)))
	// surplus = 1000 - 300 reserved - 200 outstanding

	err := guard.WithdrawSurplus(staker, big.NewInt(501))
	assert.True(t, reverts.IsRevertErr(err))

	require.NoError(t, guard.WithdrawSurplus(staker, big.NewInt(500)))
	bal, err := st.GetBalance(staker)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal.Int64())
}
