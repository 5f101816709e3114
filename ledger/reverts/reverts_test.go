// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRequireError(t *testing.T) {
	err := NewRequireError("amount must be positive")
	assert.Equal(t, "amount must be positive", err.Error())
	assert.True(t, IsRevertErr(err))

	err = Requiref("amount %d exceeds limit %d", 7, 5)
	assert.Equal(t, "amount 7 exceeds limit 5", err.Error())
	assert.True(t, IsRevertErr(err))
}

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(errors.New("io failure")))

	// wrapped reverts are still reverts
	wrapped := errors.Wrap(NewRequireError("locked"), "withdraw")
	assert.True(t, IsRevertErr(wrapped))
}
