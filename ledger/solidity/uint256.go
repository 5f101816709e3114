// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Uint256 is a wrapper for storage and retrieval of an uint256, similar to an
// uint256 state variable in a smart contract. Stored values are unsigned;
// Sub fails on underflow instead of wrapping.
type Uint256 struct {
	context *Context
	pos     quai.Bytes32
}

func NewUint256(context *Context, slot quai.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	u.context.UseGas(quai.SloadGas)
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("negative value for uint256 slot")
	}
	u.context.state.SetStorage(u.context.address, u.pos, quai.BytesToBytes32(value.Bytes()))
	u.context.UseGas(quai.SstoreResetGas)
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored.Add(stored, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	if stored.Cmp(value) < 0 {
		return errors.New("uint256 slot underflow")
	}
	return u.Set(stored.Sub(stored, value))
}
