// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

var (
	alice = quai.BytesToAddress([]byte("alice"))
	bob   = quai.BytesToAddress([]byte("bob"))
)

func newTestDB(t *testing.T) *EventDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedEvents(t *testing.T, db *EventDB) {
	require.NoError(t, db.Insert(
		&Event{Pool: "native", Op: "deposit", Account: alice, Amount: big.NewInt(100), GasUsed: 1, BlockNumber: 10, BlockTime: 1000},
		&Event{Pool: "native", Op: "claim", Account: alice, Amount: big.NewInt(5), GasUsed: 2, BlockNumber: 20, BlockTime: 2000},
		&Event{Pool: "lp", Op: "deposit", Account: bob, Amount: big.NewInt(50), GasUsed: 3, BlockNumber: 30, BlockTime: 3000},
		&Event{Pool: "native", Op: "requestWithdraw", Account: bob, Amount: big.NewInt(40), GasUsed: 4, BlockNumber: 40, BlockTime: 4000},
	))
}

func TestInsertAndQueryAll(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)

	events, err := db.Query(&Filter{})
	require.NoError(t, err)
	require.Len(t, events, 4)

	// sequence numbers are assigned in insert order
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, "deposit", events[0].Op)
	assert.Equal(t, alice, events[0].Account)
	assert.Equal(t, big.NewInt(100), events[0].Amount)
	assert.Equal(t, uint64(4), events[3].Seq)
}

func TestQueryFilters(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)

	events, err := db.Query(&Filter{Pool: "native"})
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = db.Query(&Filter{Pool: "native", Op: "deposit"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, alice, events[0].Account)

	events, err = db.Query(&Filter{Account: &bob})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = db.Query(&Filter{Op: "burn"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestQueryRange(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)

	events, err := db.Query(&Filter{Range: &Range{Unit: Block, From: 20, To: 30}})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(20), events[0].BlockNumber)
	assert.Equal(t, uint64(30), events[1].BlockNumber)

	events, err = db.Query(&Filter{Range: &Range{Unit: Time, From: 3000, To: 10_000}})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// an open upper bound (To < From) only applies the lower bound
	events, err = db.Query(&Filter{Range: &Range{Unit: Block, From: 20, To: 0}})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestQueryOrderAndPaging(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)

	events, err := db.Query(&Filter{Order: DESC})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, uint64(4), events[0].Seq)

	events, err = db.Query(&Filter{Options: &Options{Offset: 1, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(2), events[0].Seq)
	assert.Equal(t, uint64(3), events[1].Seq)
}

func TestInsertNilAmount(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Insert(&Event{Pool: "native", Op: "cancelWithdraw", Account: alice}))

	events, err := db.Query(&Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].Amount.Sign())
}
