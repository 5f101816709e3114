// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides typed storage-slot wrappers for ledger contracts,
// similar to declaring state variables in a Solidity contract. Every slot
// access is charged to the operation's gas meter.
package solidity

import (
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/state"
)

// UseGasFunc consumes gas from the running operation.
type UseGasFunc func(gas uint64)

// Context binds a contract address to the world state and a gas meter.
type Context struct {
	address quai.Address
	state   *state.State
	charger UseGasFunc
}

func NewContext(address quai.Address, state *state.State, charger UseGasFunc) *Context {
	return &Context{
		address: address,
		state:   state,
		charger: charger,
	}
}

func (c *Context) Address() quai.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}
