// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package native

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

var (
	slotCheckpointCount = quai.BytesToBytes32([]byte("checkpoints-count"))
	slotCheckpointRing  = quai.BytesToBytes32([]byte("checkpoints-ring"))
)

// ringKey addresses one entry of the checkpoint ring.
type ringKey uint64

func (k ringKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

type checkpoint struct {
	Ts  uint64
	Acc *big.Int
}

// checkpoints is a bounded ring of (timestamp, accumulator) snapshots used to
// answer "what was the accumulator as of now - delay". Entries are pushed at
// a bounded minimum interval and overwritten oldest-first once the ring is
// full. Lookups older than the oldest retained entry degrade to the zero
// accumulator; callers clamp against the account's own baseline, so such an
// account simply sees no freshly matured reward until a newer checkpoint
// covers it. This mirrors the original contract and is deliberately not
// "fixed" here.
type checkpoints struct {
	count   *solidity.Uint256
	entries *solidity.Mapping[ringKey, *checkpoint]

	capacity uint64
	step     uint64
}

func newCheckpoints(sctx *solidity.Context, capacity int, step uint64) *checkpoints {
	return &checkpoints{
		count:    solidity.NewUint256(sctx, slotCheckpointCount),
		entries:  solidity.NewMapping[ringKey, *checkpoint](sctx, slotCheckpointRing),
		capacity: uint64(capacity),
		step:     step,
	}
}

func (c *checkpoints) get(logical uint64) (*checkpoint, error) {
	cp, err := c.entries.Get(ringKey(logical % c.capacity))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint")
	}
	return cp, nil
}

// Push records (ts, acc), unless the previous checkpoint is younger than the
// minimum push interval.
func (c *checkpoints) Push(ts uint64, acc *big.Int) error {
	count, err := c.count.Get()
	if err != nil {
		return err
	}
	n := count.Uint64()
	if n > 0 {
		last, err := c.get(n - 1)
		if err != nil {
			return err
		}
		if last.Acc != nil && ts < last.Ts+c.step {
			return nil
		}
	}
	isNew := n < c.capacity
	if err := c.entries.Set(ringKey(n%c.capacity), &checkpoint{Ts: ts, Acc: acc}, isNew); err != nil {
		return errors.Wrap(err, "failed to set checkpoint")
	}
	return c.count.Set(new(big.Int).SetUint64(n + 1))
}

// AccAt returns the accumulator value at the most recent checkpoint with
// timestamp <= ts, or zero if no retained checkpoint is that old.
func (c *checkpoints) AccAt(ts uint64) (*big.Int, error) {
	count, err := c.count.Get()
	if err != nil {
		return nil, err
	}
	n := count.Uint64()
	if n == 0 {
		return new(big.Int), nil
	}

	oldest := uint64(0)
	if n > c.capacity {
		oldest = n - c.capacity
	}

	// binary search the retained window [oldest, n) for the newest entry <= ts
	lo, hi := oldest, n
	for lo < hi {
		mid := (lo + hi) / 2
		cp, err := c.get(mid)
		if err != nil {
			return nil, err
		}
		if cp.Ts <= ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == oldest {
		// older than the oldest retained checkpoint
		return new(big.Int), nil
	}
	cp, err := c.get(lo - 1)
	if err != nil {
		return nil, err
	}
	if cp.Acc == nil {
		return new(big.Int), nil
	}
	return cp.Acc, nil
}
