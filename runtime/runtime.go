// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes ledger operations one at a time against a single
// serialized state stream. Every operation runs inside a state checkpoint
// with its own gas meter: it either commits whole or reverts whole, and an
// operation that exceeds the gas limit reverts like any other failure.
package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/ledger/gascharger"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/state"
)

// Clock supplies the single time observation an operation is allowed.
type Clock interface {
	// Now is the current unix time in seconds.
	Now() uint64
	// Block is the current block number.
	Block() uint64
}

// SystemClock derives time from the wall clock and block numbers from the
// configured genesis time and block interval.
type SystemClock struct {
	genesis uint64
}

func NewSystemClock(genesisTime uint64) *SystemClock {
	return &SystemClock{genesis: genesisTime}
}

func (c *SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

func (c *SystemClock) Block() uint64 {
	now := c.Now()
	if now <= c.genesis {
		return 0
	}
	return (now - c.genesis) / quai.BlockInterval
}

// Env is what an operation sees: one frozen time observation and the gas
// meter. All external reads (balances, time) happen exactly once per
// operation, at entry.
type Env struct {
	now     uint64
	block   uint64
	charger *gascharger.Charger
}

func (e *Env) Now() uint64   { return e.now }
func (e *Env) Block() uint64 { return e.block }

// Receipt summarizes one executed operation.
type Receipt struct {
	Now     uint64
	Block   uint64
	GasUsed uint64
}

// Runtime owns the world state and serializes every operation against it.
type Runtime struct {
	mu    sync.Mutex
	state *state.State
	clock Clock

	current *gascharger.Charger
}

// New creates a runtime over the given state. Pools must be constructed with
// rt.UseGas as their gas charger so their slot accesses meter into the
// running operation.
func New(st *state.State, clock Clock) *Runtime {
	return &Runtime{state: st, clock: clock}
}

// State returns the runtime's world state.
func (rt *Runtime) State() *state.State {
	return rt.state
}

// UseGas charges gas to the operation currently executing, if any. Reads
// served outside Execute charge nothing.
func (rt *Runtime) UseGas(gas uint64) {
	if rt.current != nil {
		rt.current.Charge(gas)
	}
}

// Execute runs one ledger operation atomically: state changes commit to the
// underlying store only if op returns nil and stays within the gas limit;
// otherwise everything reverts and the error is returned.
func (rt *Runtime) Execute(op func(env *Env) error) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	charger := gascharger.New()
	rt.current = charger
	defer func() { rt.current = nil }()

	env := &Env{
		now:     rt.clock.Now(),
		block:   rt.clock.Block(),
		charger: charger,
	}
	err := op(env)
	if err == nil && charger.Exceeded(quai.OperationGasLimit) {
		err = errors.Errorf("operation exceeded gas limit: %s", charger.Breakdown())
	}
	if err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, err
	}
	if err := rt.state.Commit(); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, errors.Wrap(err, "failed to commit operation")
	}
	return &Receipt{
		Now:     env.now,
		Block:   env.block,
		GasUsed: charger.TotalGas(),
	}, nil
}

// Read runs a view against the current state without metering or committing.
// It still serializes with Execute so a view never observes a half-applied
// operation.
func (rt *Runtime) Read(view func(env *Env) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)

	return view(&Env{
		now:   rt.clock.Now(),
		block: rt.clock.Block(),
	})
}
