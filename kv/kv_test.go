// Copyright (c) 2025 The go-quai-stake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixRange(t *testing.T) {
	r := PrefixRange([]byte{0x01, 0x02})
	assert.Equal(t, []byte{0x01, 0x02}, r.From)
	assert.Equal(t, []byte{0x01, 0x03}, r.To)

	// trailing 0xff carries into the previous byte
	r = PrefixRange([]byte{0x01, 0xff})
	assert.Equal(t, []byte{0x02}, r.To)

	// an all-0xff prefix has no exclusive upper bound
	r = PrefixRange([]byte{0xff, 0xff})
	assert.Nil(t, r.To)
}
