// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/dominant-strategies/go-quai-stake/metrics"
	"github.com/dominant-strategies/go-quai-stake/runtime"
	"github.com/dominant-strategies/go-quai-stake/staking"
)

const sampleInterval = 30 * time.Second

var metricPoolTotals = metrics.LazyLoadGaugeVec("pool_totals", []string{"pool", "kind"})

// meterLoop periodically samples pool-wide figures into gauges until ctx ends.
func meterLoop(ctx context.Context, svc *staking.Service) error {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := samplePools(svc); err != nil {
				logger.Debug("failed to sample pool stats", "err", err)
			}
		}
	}
}

func samplePools(svc *staking.Service) error {
	return svc.Read(func(env *runtime.Env) error {
		native, err := svc.Native().GetPoolInfo(env.Now())
		if err != nil {
			return err
		}
		set := func(pool, kind string, v int64) {
			metricPoolTotals().SetWithLabel(v, map[string]string{"pool": pool, "kind": kind})
		}
		set(staking.PoolNative, "principal", native.TotalPrincipal.Int64())
		set(staking.PoolNative, "weight", native.TotalWeight.Int64())
		set(staking.PoolNative, "exiting", native.TotalExiting.Int64())
		set(staking.PoolNative, "rewardBalance", native.RewardBalance.Int64())

		lp, err := svc.LP().GetPoolInfo()
		if err != nil {
			return err
		}
		set(staking.PoolLP, "staked", lp.TotalStaked.Int64())
		set(staking.PoolLP, "rewardBalance", lp.RewardBalance.Int64())
		return nil
	})
}
