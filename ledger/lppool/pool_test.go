// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lppool

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
	testPoolAddr = quai.BytesToAddress([]byte("lp-pool"))
	testLPAddr   = quai.BytesToAddress([]byte("lp-token"))
	testOwner    = quai.BytesToAddress([]byte("owner"))
	alice        = quai.BytesToAddress([]byte("alice"))
	bob          = quai.BytesToAddress([]byte("bob"))
)

const (
	b0        = uint64(1000)
	testLock  = uint64(100)
	testGrace = uint64(10)
)

// newTestPool builds a pool earning 1 QUAI per block over a lock/grace cycle
// of 100+10 blocks, funded with 1M of reward budget.
func newTestPool(t *testing.T) (*Pool, *token.Token, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	lpToken := token.New(testLPAddr, solidity.NewContext(testLPAddr, st, nil))
	pool := New(solidity.NewContext(testPoolAddr, st, nil), lpToken, token.NewNative(st, nil))

	require.NoError(t, pool.Initialize(testOwner, b0))
	require.NoError(t, pool.SetRewardPerBlock(testOwner, big.NewInt(1), b0))
	require.NoError(t, pool.UpdatePeriods(testOwner, testLock, testGrace))

	require.NoError(t, st.AddBalance(testOwner, big.NewInt(2_000_000)))
	require.NoError(t, pool.FundRewards(testOwner, big.NewInt(1_000_000)))

	require.NoError(t, lpToken.Mint(alice, big.NewInt(10_000)))
	require.NoError(t, lpToken.Mint(bob, big.NewInt(10_000)))
	return pool, lpToken, st
}

func lpBalanceOf(t *testing.T, lpToken *token.Token, addr quai.Address) int64 {
	bal, err := lpToken.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Int64()
}

func nativeBalanceOf(t *testing.T, st *state.State, addr quai.Address) *big.Int {
	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	return bal
}

func TestAccrualByBlock(t *testing.T) {
	pool, lpToken, _ := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))
	assert.Equal(t, int64(9_900), lpBalanceOf(t, lpToken, alice))
	assert.Equal(t, int64(100), lpBalanceOf(t, lpToken, testPoolAddr))

	pending, err := pool.PendingReward(alice, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), pending.Int64())

	// bob joins without a share of the earlier blocks
	require.NoError(t, pool.Deposit(bob, big.NewInt(100), b0+50))
	pending, err = pool.PendingReward(bob, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Int64())

	alicePending, err := pool.PendingReward(alice, b0+100)
	require.NoError(t, err)
	bobPending, err := pool.PendingReward(bob, b0+100)
	require.NoError(t, err)
	assert.Equal(t, int64(75), alicePending.Int64())
	assert.Equal(t, int64(25), bobPending.Int64())
}

func TestLockGraceCycle(t *testing.T) {
	pool, _, _ := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))

	// locked through block b0+99
	err := pool.Withdraw(alice, big.NewInt(100), b0+testLock-1)
	assert.True(t, reverts.IsRevertErr(err))

	info, err := pool.GetLockInfo(alice, b0+testLock-1)
	require.NoError(t, err)
	assert.False(t, info.Withdrawable)
	assert.Equal(t, b0+testLock, info.UnlockBlock)
	assert.Equal(t, b0+testLock+testGrace, info.RelockBlock)

	// withdrawable during the 10 block grace phase
	info, err = pool.GetLockInfo(alice, b0+testLock)
	require.NoError(t, err)
	assert.True(t, info.Withdrawable)

	// missing the grace phase relocks for a full cycle
	err = pool.Withdraw(alice, big.NewInt(100), b0+testLock+testGrace)
	assert.True(t, reverts.IsRevertErr(err))

	info, err = pool.GetLockInfo(alice, b0+testLock+testGrace)
	require.NoError(t, err)
	assert.False(t, info.Withdrawable)
	assert.Equal(t, b0+2*testLock+testGrace, info.UnlockBlock)

	// second cycle's grace phase works again
	require.NoError(t, pool.Withdraw(alice, big.NewInt(100), b0+2*testLock+testGrace))
}

func TestWithdrawDuringGrace(t *testing.T) {
	pool, lpToken, st := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))

	// withdrawal harvests the accrued reward alongside
	before := nativeBalanceOf(t, st, alice)
	require.NoError(t, pool.Withdraw(alice, big.NewInt(40), b0+testLock))
	assert.Equal(t, int64(9_940), lpBalanceOf(t, lpToken, alice))

	harvested := new(big.Int).Sub(nativeBalanceOf(t, st, alice), before)
	assert.Equal(t, int64(testLock), harvested.Int64())

	// the cycle does not restart on withdraw; the rest is still withdrawable
	require.NoError(t, pool.Withdraw(alice, big.NewInt(60), b0+testLock+testGrace-1))
	assert.Equal(t, int64(10_000), lpBalanceOf(t, lpToken, alice))

	user, err := pool.GetUserInfo(alice, b0+testLock+testGrace)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Amount.Int64())
}

func TestDepositRestartsCycle(t *testing.T) {
	pool, _, st := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))

	// topping up during grace harvests and relocks from this block
	before := nativeBalanceOf(t, st, alice)
	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0+testLock))
	harvested := new(big.Int).Sub(nativeBalanceOf(t, st, alice), before)
	assert.Equal(t, int64(testLock), harvested.Int64())

	err := pool.Withdraw(alice, big.NewInt(10), b0+testLock+1)
	assert.True(t, reverts.IsRevertErr(err))

	info, err := pool.GetLockInfo(alice, b0+testLock+1)
	require.NoError(t, err)
	assert.Equal(t, b0+testLock, info.LockStart)
	assert.Equal(t, b0+2*testLock, info.UnlockBlock)
}

func TestClaimUnderfunded(t *testing.T) {
	pool, _, st := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))

	// allocate 50 blocks of reward, then drain the budget to 30 out-of-band
	require.NoError(t, pool.SetRewardPerBlock(testOwner, big.NewInt(1), b0+50))
	poolBal := nativeBalanceOf(t, st, testPoolAddr)
	ok, err := st.SubBalance(testPoolAddr, new(big.Int).Sub(poolBal, big.NewInt(30)))
	require.NoError(t, err)
	require.True(t, ok)

	paid, err := pool.Claim(alice, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(30), paid.Int64())

	pending, err := pool.PendingReward(alice, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(20), pending.Int64())

	// a funding top-up makes the remainder payable
	require.NoError(t, pool.FundRewards(testOwner, big.NewInt(1_000)))
	paid, err = pool.Claim(alice, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(20), paid.Int64())
}

func TestEmissionCappedByFunding(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	lpToken := token.New(testLPAddr, solidity.NewContext(testLPAddr, st, nil))
	pool := New(solidity.NewContext(testPoolAddr, st, nil), lpToken, token.NewNative(st, nil))
	require.NoError(t, pool.Initialize(testOwner, b0))
	require.NoError(t, pool.SetRewardPerBlock(testOwner, big.NewInt(1), b0))
	require.NoError(t, st.AddBalance(testOwner, big.NewInt(30)))
	require.NoError(t, pool.FundRewards(testOwner, big.NewInt(30)))
	require.NoError(t, lpToken.Mint(alice, big.NewInt(100)))

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))

	// 50 blocks elapsed but only 30 funded; the shortfall is never minted
	pending, err := pool.PendingReward(alice, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(30), pending.Int64())
}

func TestEmergencyWithdrawForfeits(t *testing.T) {
	pool, lpToken, st := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))

	before := nativeBalanceOf(t, st, alice)
	amount, err := pool.EmergencyWithdraw(alice, b0+50)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount.Int64())
	assert.Equal(t, int64(10_000), lpBalanceOf(t, lpToken, alice))

	// no reward is paid, the lock is ignored, the forfeit frees the budget
	assert.Equal(t, before, nativeBalanceOf(t, st, alice))
	outstanding, err := pool.Guard().Outstanding()
	require.NoError(t, err)
	assert.Equal(t, int64(0), outstanding.Int64())

	_, err = pool.Claim(alice, b0+51)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestWithdrawExcessRewardRequiresEmptyPool(t *testing.T) {
	pool, _, st := newTestPool(t)

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))
	err := pool.WithdrawExcessReward(testOwner, testOwner, big.NewInt(10), b0+1)
	assert.True(t, reverts.IsRevertErr(err))

	_, err = pool.EmergencyWithdraw(alice, b0+1)
	require.NoError(t, err)

	before := nativeBalanceOf(t, st, testOwner)
	require.NoError(t, pool.WithdrawExcessReward(testOwner, testOwner, big.NewInt(1_000_000), b0+1))
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(1_000_000)), nativeBalanceOf(t, st, testOwner))
}

func TestRecoverForeignAsset(t *testing.T) {
	pool, lpToken, st := newTestPool(t)

	err := pool.RecoverForeignAsset(testOwner, lpToken, testOwner, big.NewInt(1))
	assert.True(t, reverts.IsRevertErr(err))
	err = pool.RecoverForeignAsset(testOwner, token.NewNative(st, nil), testOwner, big.NewInt(1))
	assert.True(t, reverts.IsRevertErr(err))

	foreignAddr := quai.BytesToAddress([]byte("other-token"))
	foreign := token.New(foreignAddr, solidity.NewContext(foreignAddr, st, nil))
	require.NoError(t, foreign.Mint(testPoolAddr, big.NewInt(55)))
	require.NoError(t, pool.RecoverForeignAsset(testOwner, foreign, testOwner, big.NewInt(55)))

	bal, err := foreign.BalanceOf(testOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(55), bal.Int64())
}

func TestAdminAuthorization(t *testing.T) {
	pool, _, _ := newTestPool(t)

	assert.True(t, reverts.IsRevertErr(pool.SetRewardPerBlock(alice, big.NewInt(2), b0)))
	assert.True(t, reverts.IsRevertErr(pool.UpdatePeriods(alice, 1, 1)))
	assert.True(t, reverts.IsRevertErr(pool.WithdrawExcessReward(alice, alice, big.NewInt(1), b0)))
	assert.True(t, reverts.IsRevertErr(pool.Initialize(testOwner, b0)))
}

func TestDepositValidation(t *testing.T) {
	pool, _, _ := newTestPool(t)

	err := pool.Deposit(alice, big.NewInt(0), b0)
	assert.True(t, reverts.IsRevertErr(err))

	// more than the staker's LP balance
	err = pool.Deposit(alice, big.NewInt(20_000), b0)
	assert.True(t, reverts.IsRevertErr(err))

	require.NoError(t, pool.Deposit(alice, big.NewInt(100), b0))
	err = pool.Withdraw(alice, big.NewInt(101), b0+testLock)
	assert.True(t, reverts.IsRevertErr(err))
	_, err = pool.Claim(bob, b0)
	assert.True(t, reverts.IsRevertErr(err))
}
