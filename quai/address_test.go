// Copyright (c) 2025 The go-quai-stake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	want := "0x00112233445566778899aabbccddeeff00112233"

	addr, err := ParseAddress(want)
	require.NoError(t, err)
	assert.Equal(t, want, addr.String())

	// without 0x prefix
	addr, err = ParseAddress(want[2:])
	require.NoError(t, err)
	assert.Equal(t, want, addr.String())

	for _, s := range []string{
		"",
		"0x1234",
		"zz112233445566778899aabbccddeeff00112233",
		want + "00",
	} {
		_, err := ParseAddress(s)
		assert.Error(t, err, "input %q", s)
	}

	assert.Panics(t, func() { MustParseAddress("bad") })
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("account"))

	raw, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, addr, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"0x12"`), &decoded))
}

func TestBytesToAddress(t *testing.T) {
	// short input extends from the left
	addr := BytesToAddress([]byte{0x01})
	assert.Equal(t, byte(0x01), addr[AddressLength-1])
	assert.False(t, addr.IsZero())
	assert.True(t, Address{}.IsZero())
}
