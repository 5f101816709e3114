// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominant-strategies/go-quai-stake/ledger/reverts"
	"github.com/dominant-strategies/go-quai-stake/ledger/solidity"
	"github.com/dominant-strategies/go-quai-stake/lvldb"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/state"
)

var (
	tokenAddr = quai.BytesToAddress([]byte("token"))
	holder    = quai.BytesToAddress([]byte("holder"))
	receiver  = quai.BytesToAddress([]byte("receiver"))
)

func newTestState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return state.New(db)
}

func TestTokenMintAndTransfer(t *testing.T) {
	st := newTestState(t)
	tok := New(tokenAddr, solidity.NewContext(tokenAddr, st, nil))

	assert.Equal(t, tokenAddr, tok.Address())

	require.NoError(t, tok.Mint(holder, big.NewInt(1000)))
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())

	require.NoError(t, tok.Transfer(holder, receiver, big.NewInt(400)))

	bal, err := tok.BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, int64(600), bal.Int64())
	bal, err = tok.BalanceOf(receiver)
	require.NoError(t, err)
	assert.Equal(t, int64(400), bal.Int64())

	// transfers never change supply
	supply, err = tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())
}

func TestTokenTransferInsufficient(t *testing.T) {
	st := newTestState(t)
	tok := New(tokenAddr, solidity.NewContext(tokenAddr, st, nil))

	require.NoError(t, tok.Mint(holder, big.NewInt(10)))
	err := tok.Transfer(holder, receiver, big.NewInt(11))
	assert.True(t, reverts.IsRevertErr(err))

	err = tok.Transfer(holder, receiver, big.NewInt(-1))
	assert.True(t, reverts.IsRevertErr(err))

	bal, err := tok.BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal.Int64())
}

func TestNativeTransfer(t *testing.T) {
	st := newTestState(t)
	native := NewNative(st, nil)

	assert.True(t, native.Address().IsZero())

	require.NoError(t, st.AddBalance(holder, big.NewInt(500)))
	require.NoError(t, native.Transfer(holder, receiver, big.NewInt(200)))

	bal, err := native.BalanceOf(receiver)
	require.NoError(t, err)
	assert.Equal(t, int64(200), bal.Int64())

	err = native.Transfer(holder, receiver, big.NewInt(301))
	assert.True(t, reverts.IsRevertErr(err))
	err = native.Transfer(holder, receiver, big.NewInt(-1))
	assert.True(t, reverts.IsRevertErr(err))

	// a failed transfer moves nothing
	bal, err = native.BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal.Int64())
}
