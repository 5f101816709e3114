// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dominant-strategies/go-quai-stake/ledger/gascharger"
	"github.com/dominant-strategies/go-quai-stake/lvldb"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/state"
)

// newTestContext binds a fresh in-memory state to a metered context. The
// returned charger can be swapped mid-test to isolate the gas of one call.
func newTestContext(t *testing.T) (*Context, *gascharger.Charger) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	ctx := NewContext(quai.BytesToAddress([]byte("contract")), state.New(db), nil)
	charger := gascharger.New()
	ctx.charger = charger.Charge
	return ctx, charger
}

func resetCharger(ctx *Context) *gascharger.Charger {
	charger := gascharger.New()
	ctx.charger = charger.Charge
	return charger
}
