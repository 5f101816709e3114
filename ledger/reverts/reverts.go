// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error type for require-style rejections of
// ledger operations. A revert carries a reason string surfaced to the caller;
// the runtime rolls back all state changes of the rejected operation.
package reverts

import (
	"errors"
	"fmt"
)

// ErrRequire is the rejection of a ledger operation before (or instead of)
// committing any state change.
type ErrRequire struct {
	message string
}

// NewRequireError creates a revert with the given reason.
func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{message: message}
}

// Requiref creates a revert with a formatted reason.
func Requiref(format string, args ...any) *ErrRequire {
	return &ErrRequire{message: fmt.Sprintf(format, args...)}
}

func (e *ErrRequire) Error() string {
	return e.message
}

// IsRevertErr reports whether err is (or wraps) a require-style revert.
func IsRevertErr(err error) bool {
	if err == nil {
		return false
	}
	var ve *ErrRequire
	return errors.As(err, &ve) && ve != nil
}
