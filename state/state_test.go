// Copyright (c) 2025 The go-quai-stake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominant-strategies/go-quai-stake/lvldb"
	"github.com/dominant-strategies/go-quai-stake/quai"
)

var (
	addr = quai.BytesToAddress([]byte("account"))
	slot = quai.BytesToBytes32([]byte("slot"))
)

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return New(db), db
}

func TestBalance(t *testing.T) {
	st, _ := newTestState(t)

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	require.NoError(t, st.AddBalance(addr, big.NewInt(100)))
	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Int64())

	ok, err := st.SubBalance(addr, big.NewInt(40))
	require.NoError(t, err)
	assert.True(t, ok)

	// insufficient balance leaves the state untouched
	ok, err = st.SubBalance(addr, big.NewInt(61))
	require.NoError(t, err)
	assert.False(t, ok)

	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal.Int64())
}

func TestStorage(t *testing.T) {
	st, _ := newTestState(t)

	v, err := st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	want := quai.BytesToBytes32([]byte("value"))
	st.SetStorage(addr, slot, want)
	v, err = st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, want, v)

	// zero value clears the slot
	st.SetStorage(addr, slot, quai.Bytes32{})
	raw, err := st.GetRawStorage(addr, slot)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestCheckpointRevert(t *testing.T) {
	st, _ := newTestState(t)

	require.NoError(t, st.AddBalance(addr, big.NewInt(100)))
	cp := st.NewCheckpoint()
	require.NoError(t, st.AddBalance(addr, big.NewInt(50)))
	st.SetStorage(addr, slot, quai.BytesToBytes32([]byte("dirty")))

	st.RevertTo(cp)

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Int64())
	v, err := st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestCommitPersists(t *testing.T) {
	st, db := newTestState(t)

	require.NoError(t, st.AddBalance(addr, big.NewInt(77)))
	st.SetStorage(addr, slot, quai.BytesToBytes32([]byte("kept")))
	require.NoError(t, st.Commit())

	// a fresh state over the same store sees the committed values
	st2 := New(db)
	bal, err := st2.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(77), bal.Int64())
	v, err := st2.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, quai.BytesToBytes32([]byte("kept")), v)

	// the committing state stays usable
	require.NoError(t, st.AddBalance(addr, big.NewInt(1)))
	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(78), bal.Int64())
}

func TestCommitDropsZeroBalances(t *testing.T) {
	st, db := newTestState(t)

	require.NoError(t, st.AddBalance(addr, big.NewInt(5)))
	require.NoError(t, st.Commit())
	ok, err := st.SubBalance(addr, big.NewInt(5))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, st.Commit())

	st2 := New(db)
	bal, err := st2.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())
}

func TestEncodeDecodeStorage(t *testing.T) {
	st, _ := newTestState(t)

	require.NoError(t, st.EncodeStorage(addr, slot, func() ([]byte, error) {
		return []byte{0x01, 0x02}, nil
	}))
	var got []byte
	require.NoError(t, st.DecodeStorage(addr, slot, func(raw []byte) error {
		got = append([]byte(nil), raw...)
		return nil
	}))
	assert.Equal(t, []byte{0x01, 0x02}, got)
}
