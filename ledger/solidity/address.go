// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Address is a wrapper for storage and retrieval of an address, similar to an
// address state variable in a smart contract.
type Address struct {
	context *Context
	pos     quai.Bytes32
}

func NewAddress(context *Context, pos quai.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (quai.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return quai.Address{}, err
	}
	a.context.UseGas(quai.SloadGas)
	return quai.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr quai.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, quai.BytesToBytes32(addr.Bytes()))
	a.context.UseGas(quai.SstoreResetGas)
}
