// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible assets the staking pools move around:
// native QUAI held as state balances, and storage-backed tokens (the LP token,
// plus any foreign token subject to recovery).
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Asset is the transferable value interface the pools and the funding guard
// operate on. Transfer must reject (not wrap) on insufficient balance.
type Asset interface {
	// Address returns the asset's ledger address, zero for native QUAI.
	Address() quai.Address
	BalanceOf(addr quai.Address) (*big.Int, error)
	Transfer(from, to quai.Address, amount *big.Int) error
}

var (
	slotTotalSupply = quai.BytesToBytes32([]byte("token-total-supply"))
	slotBalances    = quai.BytesToBytes32([]byte("token-balances"))
)

// Token is a storage-backed fungible token ledger.
type Token struct {
	addr     quai.Address
	balances *solidity.Mapping[quai.Address, *big.Int]
	supply   *solidity.Uint256
}

var _ Asset = (*Token)(nil)

// New binds a token ledger at the given contract address.
func New(addr quai.Address, sctx *solidity.Context) *Token {
	return &Token{
		addr:     addr,
		balances: solidity.NewMapping[quai.Address, *big.Int](sctx, slotBalances),
		supply:   solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func (t *Token) Address() quai.Address {
	return t.addr
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) BalanceOf(addr quai.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token balance")
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

// Mint credits the address and grows total supply.
func (t *Token) Mint(addr quai.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.NewRequireError("mint amount must not be negative")
	}
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	if err := t.balances.Set(addr, new(big.Int).Add(bal, amount), bal.Sign() == 0); err != nil {
		return errors.Wrap(err, "failed to set token balance")
	}
	return t.supply.Add(amount)
}

func (t *Token) Transfer(from, to quai.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.NewRequireError("transfer amount must not be negative")
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.NewRequireError("insufficient token balance")
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(from, new(big.Int).Sub(fromBal, amount), false); err != nil {
		return errors.Wrap(err, "failed to set token balance")
	}
	if err := t.balances.Set(to, new(big.Int).Add(toBal, amount), toBal.Sign() == 0); err != nil {
		return errors.Wrap(err, "failed to set token balance")
	}
	return nil
}
