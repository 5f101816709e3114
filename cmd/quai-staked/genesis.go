// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/dominant-strategies/go-quai-stake/eventdb"
	"github.com/dominant-strategies/go-quai-stake/ledger/lppool"
	"github.com/dominant-strategies/go-quai-stake/ledger/native"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/ledger/token"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/runtime"
	"github.com/dominant-strategies/go-quai-stake/staking"
)

// buildService wires the pools to the runtime and, on a fresh database,
// applies the genesis configuration.
func buildService(rt *runtime.Runtime, cfg *Config, events *eventdb.EventDB) (*staking.Service, error) {
	st := rt.State()

	quaiAsset := token.NewNative(st, rt.UseGas)
	lpToken := token.New(cfg.LPPool.LPToken.Address, solidity.NewContext(cfg.LPPool.LPToken.Address, st, rt.UseGas))

	nativePool := native.New(solidity.NewContext(cfg.NativePool.Address.Address, st, rt.UseGas), quaiAsset)
	lpPool := lppool.New(solidity.NewContext(cfg.LPPool.Address.Address, st, rt.UseGas), lpToken, quaiAsset)

	var owner quai.Address
	if err := rt.Read(func(*runtime.Env) error {
		var err error
		owner, err = nativePool.Owner()
		return err
	}); err != nil {
		return nil, err
	}
	if owner.IsZero() {
		if err := applyGenesis(rt, cfg, nativePool, lpPool, lpToken); err != nil {
			return nil, err
		}
		logger.Info("genesis applied", "owner", cfg.Owner.Address)
	}

	return staking.NewService(rt, nativePool, lpPool, events), nil
}

// applyGenesis seeds balances and initializes both pools in one atomic
// operation, so a fresh daemon either starts fully configured or not at all.
func applyGenesis(rt *runtime.Runtime, cfg *Config, nativePool *native.Pool, lpPool *lppool.Pool, lpToken *token.Token) error {
	_, err := rt.Execute(func(env *runtime.Env) error {
		st := rt.State()
		for _, alloc := range cfg.Allocations {
			if alloc.Balance.Num().Sign() > 0 {
				if err := st.AddBalance(alloc.Address.Address, alloc.Balance.Num()); err != nil {
					return err
				}
			}
			if alloc.LPUnits.Num().Sign() > 0 {
				if err := lpToken.Mint(alloc.Address.Address, alloc.LPUnits.Num()); err != nil {
					return err
				}
			}
		}

		owner := cfg.Owner.Address
		if err := nativePool.Initialize(owner, env.Now()); err != nil {
			return err
		}
		if rate := cfg.NativePool.EmissionRate.Num(); rate.Sign() > 0 {
			if err := nativePool.SetEmissionRate(owner, rate, env.Now()); err != nil {
				return err
			}
		}
		if limit := cfg.NativePool.PoolLimit.Num(); limit.Sign() > 0 {
			if err := nativePool.UpdatePoolLimit(owner, limit); err != nil {
				return err
			}
		}
		if cfg.NativePool.ExitWindow != 0 && cfg.NativePool.RewardDelay != 0 {
			if err := nativePool.UpdatePeriods(owner, cfg.NativePool.ExitWindow, cfg.NativePool.RewardDelay); err != nil {
				return err
			}
		}
		if fund := cfg.NativePool.RewardFund.Num(); fund.Sign() > 0 {
			if err := st.AddBalance(nativePool.Address(), fund); err != nil {
				return err
			}
		}

		if err := lpPool.Initialize(owner, env.Block()); err != nil {
			return err
		}
		if rate := cfg.LPPool.RewardPerBlock.Num(); rate.Sign() > 0 {
			if err := lpPool.SetRewardPerBlock(owner, rate, env.Block()); err != nil {
				return err
			}
		}
		if cfg.LPPool.LockDuration != 0 && cfg.LPPool.GracePeriod != 0 {
			if err := lpPool.UpdatePeriods(owner, cfg.LPPool.LockDuration, cfg.LPPool.GracePeriod); err != nil {
				return err
			}
		}
		if fund := cfg.LPPool.RewardFund.Num(); fund.Sign() > 0 {
			if err := st.AddBalance(lpPool.Address(), fund); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}
