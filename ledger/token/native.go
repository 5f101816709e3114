// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/state"
)

// Native is the QUAI asset backed by world-state account balances.
type Native struct {
	state   *state.State
	charger solidity.UseGasFunc
}

var _ Asset = (*Native)(nil)

// NewNative creates the native QUAI asset over the given state.
func NewNative(st *state.State, charger solidity.UseGasFunc) *Native {
	return &Native{state: st, charger: charger}
}

func (n *Native) useGas(gas uint64) {
	if n.charger != nil {
		n.charger(gas)
	}
}

// Address of the native asset is the zero address.
func (n *Native) Address() quai.Address {
	return quai.Address{}
}

func (n *Native) BalanceOf(addr quai.Address) (*big.Int, error) {
	n.useGas(quai.GetBalanceGas)
	return n.state.GetBalance(addr)
}

func (n *Native) Transfer(from, to quai.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.NewRequireError("transfer amount must not be negative")
	}
	n.useGas(quai.TransferGas)
	ok, err := n.state.SubBalance(from, amount)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.NewRequireError("insufficient QUAI balance")
	}
	return n.state.AddBalance(to, amount)
}
