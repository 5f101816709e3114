// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominant-strategies/go-quai-stake/api/pools"
	"github.com/dominant-strategies/go-quai-stake/eventdb"
	"github.com/dominant-strategies/go-quai-stake/ledger/lppool"
	"github.com/dominant-strategies/go-quai-stake/ledger/native"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/ledger/stakes"
	"github.com/dominant-strategies/go-quai-stake/ledger/token"
	"github.com/dominant-strategies/go-quai-stake/lvldb"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/runtime"
	"github.com/dominant-strategies/go-quai-stake/staking"
	"github.com/dominant-strategies/go-quai-stake/state"
)

var (
	nativeAddr  = quai.BytesToAddress([]byte("native-pool"))
	lpAddr      = quai.BytesToAddress([]byte("lp-pool"))
	lpTokenAddr = quai.BytesToAddress([]byte("lp-token"))
	owner       = quai.BytesToAddress([]byte("owner"))
	alice       = quai.BytesToAddress([]byte("alice"))
)

type testClock struct {
	now   uint64
	block uint64
}

func (c *testClock) Now() uint64   { return c.now }
func (c *testClock) Block() uint64 { return c.block }

func amt(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func newTestServer(t *testing.T) (*httptest.Server, *staking.Service, *testClock) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	clock := &testClock{now: 1_000_000, block: 100}
	rt := runtime.New(st, clock)

	quaiAsset := token.NewNative(st, rt.UseGas)
	lpToken := token.New(lpTokenAddr, solidity.NewContext(lpTokenAddr, st, rt.UseGas))
	nativePool := native.New(solidity.NewContext(nativeAddr, st, rt.UseGas), quaiAsset)
	lpPool := lppool.New(solidity.NewContext(lpAddr, st, rt.UseGas), lpToken, quaiAsset)

	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	_, err = rt.Execute(func(env *runtime.Env) error {
		if err := st.AddBalance(owner, big.NewInt(10_000_000)); err != nil {
			return err
		}
		if err := st.AddBalance(alice, big.NewInt(100_000)); err != nil {
			return err
		}
		if err := lpToken.Mint(alice, big.NewInt(10_000)); err != nil {
			return err
		}
		if err := nativePool.Initialize(owner, env.Now()); err != nil {
			return err
		}
		if err := nativePool.SetEmissionRate(owner, big.NewInt(1), env.Now()); err != nil {
			return err
		}
		if err := lpPool.Initialize(owner, env.Block()); err != nil {
			return err
		}
		return lpPool.SetRewardPerBlock(owner, big.NewInt(1), env.Block())
	})
	require.NoError(t, err)

	svc := staking.NewService(rt, nativePool, lpPool, events)
	_, err = svc.NativeFundRewards(owner, big.NewInt(1_000_000))
	require.NoError(t, err)
	_, err = svc.LPFundRewards(owner, big.NewInt(1_000_000))
	require.NoError(t, err)

	server := httptest.NewServer(New(svc, nil))
	t.Cleanup(server.Close)
	return server, svc, clock
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func getJSON(t *testing.T, url string, v any) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestNativeEndpoints(t *testing.T) {
	server, _, clock := newTestServer(t)

	res := postJSON(t, server.URL+"/staking/native/deposits", &pools.DepositRequest{
		Staker:   alice,
		Amount:   amt(100),
		Duration: uint64(stakes.DurationLow),
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var op pools.OpResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&op))
	assert.Equal(t, clock.now, op.BlockTime)
	assert.Positive(t, op.GasUsed)

	var info native.PoolInfo
	getJSON(t, server.URL+"/staking/native/info", &info)
	assert.Equal(t, int64(100), info.TotalPrincipal.Int64())
	assert.Equal(t, int64(100), info.TotalWeight.Int64())
	assert.Equal(t, uint64(quai.ExitWindow), info.ExitWindow)

	var user native.UserInfo
	getJSON(t, server.URL+"/staking/native/accounts/"+alice.String(), &user)
	assert.Equal(t, int64(100), user.Principal.Int64())
	assert.Equal(t, int64(100), user.Weight.Int64())

	// rate 1/s over weight 100, boosted 100%, annualized in bps
	var apy struct {
		APYBps *math.HexOrDecimal256 `json:"apyBps"`
	}
	getJSON(t, server.URL+fmt.Sprintf("/staking/native/apy/%d", stakes.DurationLow), &apy)
	assert.Equal(t, int64(quai.SecondsPerYear)*100, (*big.Int)(apy.APYBps).Int64())

	var balance struct {
		RewardBalance *math.HexOrDecimal256 `json:"rewardBalance"`
	}
	getJSON(t, server.URL+"/staking/native/reward-balance", &balance)
	assert.Equal(t, int64(1_000_000), (*big.Int)(balance.RewardBalance).Int64())
}

func TestNativeErrorMapping(t *testing.T) {
	server, _, _ := newTestServer(t)

	// malformed address in the path
	res, err := http.Get(server.URL + "/staking/native/accounts/zzz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// a ledger revert maps to forbidden
	res = postJSON(t, server.URL+"/staking/native/deposits", &pools.DepositRequest{
		Staker:   alice,
		Amount:   amt(0),
		Duration: uint64(stakes.DurationLow),
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// strict body parsing rejects unknown fields
	res = postJSON(t, server.URL+"/staking/native/deposits", map[string]any{
		"staker": alice,
		"amount": "100",
		"bogus":  true,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLPEndpoints(t *testing.T) {
	server, _, clock := newTestServer(t)

	res := postJSON(t, server.URL+"/staking/lp/admin/periods", &pools.PeriodsRequest{
		Caller: owner, First: 100, Second: 10,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = postJSON(t, server.URL+"/staking/lp/deposits", &pools.DepositRequest{
		Staker: alice, Amount: amt(100),
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	// still inside the lock phase
	res = postJSON(t, server.URL+"/staking/lp/withdrawals", &pools.WithdrawRequest{
		Staker: alice, Amount: amt(100),
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	var lock lppool.LockInfo
	getJSON(t, server.URL+"/staking/lp/accounts/"+alice.String()+"/lock", &lock)
	assert.False(t, lock.Withdrawable)
	assert.Equal(t, clock.block+100, lock.UnlockBlock)

	clock.block += 100
	getJSON(t, server.URL+"/staking/lp/accounts/"+alice.String()+"/lock", &lock)
	assert.True(t, lock.Withdrawable)

	res = postJSON(t, server.URL+"/staking/lp/withdrawals", &pools.WithdrawRequest{
		Staker: alice, Amount: amt(100),
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestEventsEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	// no matches still answers with an array
	res := postJSON(t, server.URL+"/events", &eventdb.Filter{Op: "burn"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var raw bytes.Buffer
	_, err := raw.ReadFrom(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(raw.String()))

	res = postJSON(t, server.URL+"/staking/native/deposits", &pools.DepositRequest{
		Staker:   alice,
		Amount:   amt(100),
		Duration: uint64(stakes.DurationLow),
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = postJSON(t, server.URL+"/events", &eventdb.Filter{Pool: staking.PoolNative, Op: "deposit"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var events []*eventdb.Event
	require.NoError(t, json.NewDecoder(res.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, alice, events[0].Account)
	assert.Equal(t, big.NewInt(100), events[0].Amount)
}

func TestSubscriptionFeed(t *testing.T) {
	server, svc, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/subscriptions/ops"
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	res.Body.Close()

	// keep publishing until the feed is registered and delivers
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(20 * time.Millisecond):
				svc.NativeFundRewards(owner, big.NewInt(1))
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event eventdb.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, staking.PoolNative, event.Pool)
	assert.Equal(t, "fundRewards", event.Op)
	assert.Equal(t, owner, event.Account)
}
