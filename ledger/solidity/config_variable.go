// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// ConfigVariable is a named uint64 parameter with a default value that can be
// overridden by a value stored in the contract's own storage. Administrative
// operations update the slot; reads fall back to the default while the slot
// is unset.
type ConfigVariable struct {
	context      *Context
	slot         *Uint256
	name         string
	defaultValue uint64
}

func NewConfigVariable(context *Context, name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		context:      context,
		slot:         NewUint256(context, nameToSlot(name)),
		name:         name,
		defaultValue: defaultValue,
	}
}

func nameToSlot(name string) quai.Bytes32 {
	return quai.BytesToBytes32([]byte(name))
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Get() (uint64, error) {
	stored, err := c.slot.Get()
	if err != nil {
		return 0, err
	}
	if stored.Sign() == 0 {
		return c.defaultValue, nil
	}
	return stored.Uint64(), nil
}

func (c *ConfigVariable) Set(value uint64) error {
	return c.slot.Set(new(big.Int).SetUint64(value))
}
