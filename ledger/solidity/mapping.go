// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

// Key constrains mapping keys to byte-representable types.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for ledger contracts, similar to
// the mapping type in Solidity. Values are RLP coded; gas is charged per
// occupied 32-byte slot.
type Mapping[K Key, V any] struct {
	context *Context
	basePos quai.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos quai.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) quai.Bytes32 {
	return quai.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		slots := (uint64(len(raw)) + 31) / 32
		m.context.UseGas(slots * quai.SloadGas)
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V, newValue bool) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		raw, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		slots := (uint64(len(raw)) + 31) / 32
		if newValue {
			m.context.UseGas(slots * quai.SstoreSetGas)
		} else {
			m.context.UseGas(slots * quai.SstoreResetGas)
		}
		return raw, nil
	})
}

// Clear deletes the value stored for the key.
func (m *Mapping[K, V]) Clear(key K) error {
	m.context.UseGas(quai.SstoreResetGas)
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return nil, nil
	})
}
