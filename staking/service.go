// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking ties the pools, the runtime, the event history and the
// meters together into the service the API layer talks to. Every mutating
// call runs as one runtime operation; on success it is appended to the event
// db and published to subscribers.
package staking

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/eventdb"
	"github.com/dominant-strategies/go-quai-stake/ledger/lppool"
	"github.com/dominant-strategies/go-quai-stake/ledger/native"
	"github.com/dominant-strategies/go-quai-stake/ledger/stakes"
	"github.com/dominant-strategies/go-quai-stake/log"
	"github.com/dominant-strategies/go-quai-stake/metrics"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/runtime"
)

// Pool names used in events and metrics labels.
const (
	PoolNative = "native"
	PoolLP     = "lp"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricOpCount = metrics.LazyLoadCounterVec("ledger_op_count", []string{"pool", "op", "status"})
	metricOpGas   = metrics.LazyLoadHistogram("ledger_op_gas", []int64{
		0, 10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 2_000_000,
	})
)

// Service is the staking ledger backend.
type Service struct {
	rt     *runtime.Runtime
	native *native.Pool
	lp     *lppool.Pool
	events *eventdb.EventDB
	broker *Broker
}

// NewService wires the pools to the runtime and event store.
func NewService(rt *runtime.Runtime, nativePool *native.Pool, lpPool *lppool.Pool, events *eventdb.EventDB) *Service {
	return &Service{
		rt:     rt,
		native: nativePool,
		lp:     lpPool,
		events: events,
		broker: NewBroker(),
	}
}

// Native returns the native pool ledger.
func (s *Service) Native() *native.Pool { return s.native }

// LP returns the LP pool ledger.
func (s *Service) LP() *lppool.Pool { return s.lp }

// Events returns the operation history store.
func (s *Service) Events() *eventdb.EventDB { return s.events }

// Subscribe registers an event feed subscriber.
func (s *Service) Subscribe() (<-chan *eventdb.Event, func()) {
	return s.broker.Subscribe()
}

// execute runs op through the runtime and records the outcome.
func (s *Service) execute(pool, op string, account quai.Address, amount *big.Int, fn func(env *runtime.Env) error) (*runtime.Receipt, error) {
	receipt, err := s.rt.Execute(fn)
	if err != nil {
		metricOpCount().AddWithLabel(1, map[string]string{"pool": pool, "op": op, "status": "reverted"})
		logger.Debug("operation reverted", "pool", pool, "op", op, "account", account, "err", err)
		return nil, err
	}
	metricOpCount().AddWithLabel(1, map[string]string{"pool": pool, "op": op, "status": "executed"})
	metricOpGas().Observe(int64(receipt.GasUsed))

	event := &eventdb.Event{
		Pool:        pool,
		Op:          op,
		Account:     account,
		Amount:      amount,
		GasUsed:     receipt.GasUsed,
		BlockNumber: receipt.Block,
		BlockTime:   receipt.Now,
	}
	if err := s.events.Insert(event); err != nil {
		// the ledger state is already committed; history is best-effort
		logger.Warn("failed to record event", "pool", pool, "op", op, "err", err)
	}
	s.broker.Publish(event)
	logger.Info("operation executed",
		"pool", pool, "op", op, "account", account, "amount", amount, "gas", receipt.GasUsed)
	return receipt, nil
}

// NativeDeposit stakes amount into the native pool.
func (s *Service) NativeDeposit(staker quai.Address, amount *big.Int, duration stakes.Duration) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "deposit", staker, amount, func(env *runtime.Env) error {
		return s.native.Deposit(staker, amount, duration, env.Now())
	})
}

// NativeRequestWithdraw queues principal for exit.
func (s *Service) NativeRequestWithdraw(staker quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "requestWithdraw", staker, amount, func(env *runtime.Env) error {
		return s.native.RequestWithdraw(staker, amount, env.Now())
	})
}

// NativeExecuteWithdraw pays out a matured exit.
func (s *Service) NativeExecuteWithdraw(staker quai.Address) (*runtime.Receipt, *big.Int, error) {
	var paid *big.Int
	receipt, err := s.execute(PoolNative, "executeWithdraw", staker, nil, func(env *runtime.Env) error {
		var err error
		paid, err = s.native.ExecuteWithdraw(staker, env.Now())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return receipt, paid, nil
}

// NativeCancelWithdraw aborts a pending exit.
func (s *Service) NativeCancelWithdraw(staker quai.Address) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "cancelWithdraw", staker, nil, func(env *runtime.Env) error {
		return s.native.CancelWithdraw(staker, env.Now())
	})
}

// NativeClaim pays out matured reward.
func (s *Service) NativeClaim(staker quai.Address) (*runtime.Receipt, *big.Int, error) {
	var paid *big.Int
	receipt, err := s.execute(PoolNative, "claim", staker, nil, func(env *runtime.Env) error {
		var err error
		paid, err = s.native.Claim(staker, env.Now())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return receipt, paid, nil
}

// NativeSetEmissionRate updates the native pool emission.
func (s *Service) NativeSetEmissionRate(caller quai.Address, rate *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "setEmissionRate", caller, rate, func(env *runtime.Env) error {
		return s.native.SetEmissionRate(caller, rate, env.Now())
	})
}

// NativeFundRewards moves reward budget into the native pool.
func (s *Service) NativeFundRewards(funder quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "fundRewards", funder, amount, func(env *runtime.Env) error {
		return s.native.FundRewards(funder, amount)
	})
}

// NativeUpdatePoolLimit sets the native pool's principal cap.
func (s *Service) NativeUpdatePoolLimit(caller quai.Address, limit *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "updatePoolLimit", caller, limit, func(env *runtime.Env) error {
		return s.native.UpdatePoolLimit(caller, limit)
	})
}

// NativeUpdatePeriods sets the native pool's exit window and reward delay.
func (s *Service) NativeUpdatePeriods(caller quai.Address, exitWindow, rewardDelay uint64) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "updatePeriods", caller, nil, func(env *runtime.Env) error {
		return s.native.UpdatePeriods(caller, exitWindow, rewardDelay)
	})
}

// NativeWithdrawExcessReward sweeps surplus reward budget.
func (s *Service) NativeWithdrawExcessReward(caller, to quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolNative, "withdrawExcessReward", caller, amount, func(env *runtime.Env) error {
		return s.native.WithdrawExcessReward(caller, to, amount, env.Now())
	})
}

// LPDeposit stakes LP tokens.
func (s *Service) LPDeposit(staker quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolLP, "deposit", staker, amount, func(env *runtime.Env) error {
		return s.lp.Deposit(staker, amount, env.Block())
	})
}

// LPWithdraw unstakes LP tokens during the grace phase.
func (s *Service) LPWithdraw(staker quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolLP, "withdraw", staker, amount, func(env *runtime.Env) error {
		return s.lp.Withdraw(staker, amount, env.Block())
	})
}

// LPClaim pays out earned LP reward.
func (s *Service) LPClaim(staker quai.Address) (*runtime.Receipt, *big.Int, error) {
	var paid *big.Int
	receipt, err := s.execute(PoolLP, "claim", staker, nil, func(env *runtime.Env) error {
		var err error
		paid, err = s.lp.Claim(staker, env.Block())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return receipt, paid, nil
}

// LPEmergencyWithdraw unstakes everything immediately, forfeiting reward.
func (s *Service) LPEmergencyWithdraw(staker quai.Address) (*runtime.Receipt, *big.Int, error) {
	var amount *big.Int
	receipt, err := s.execute(PoolLP, "emergencyWithdraw", staker, nil, func(env *runtime.Env) error {
		var err error
		amount, err = s.lp.EmergencyWithdraw(staker, env.Block())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return receipt, amount, nil
}

// LPSetRewardPerBlock updates the LP pool emission.
func (s *Service) LPSetRewardPerBlock(caller quai.Address, rate *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolLP, "setRewardPerBlock", caller, rate, func(env *runtime.Env) error {
		return s.lp.SetRewardPerBlock(caller, rate, env.Block())
	})
}

// LPFundRewards moves reward budget into the LP pool.
func (s *Service) LPFundRewards(funder quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolLP, "fundRewards", funder, amount, func(env *runtime.Env) error {
		return s.lp.FundRewards(funder, amount)
	})
}

// LPUpdatePeriods sets the LP lock and grace phases.
func (s *Service) LPUpdatePeriods(caller quai.Address, lockDuration, gracePeriod uint64) (*runtime.Receipt, error) {
	return s.execute(PoolLP, "updatePeriods", caller, nil, func(env *runtime.Env) error {
		return s.lp.UpdatePeriods(caller, lockDuration, gracePeriod)
	})
}

// LPWithdrawExcessReward sweeps surplus reward budget from an empty pool.
func (s *Service) LPWithdrawExcessReward(caller, to quai.Address, amount *big.Int) (*runtime.Receipt, error) {
	return s.execute(PoolLP, "withdrawExcessReward", caller, amount, func(env *runtime.Env) error {
		return s.lp.WithdrawExcessReward(caller, to, amount, env.Block())
	})
}

// Read runs a view against a consistent state snapshot.
func (s *Service) Read(view func(env *runtime.Env) error) error {
	return s.rt.Read(view)
}
