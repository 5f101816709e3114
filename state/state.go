// Copyright (c) 2025 The go-quai-stake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the ledger world state: QUAI account balances and
// per-contract storage slots, journaled so that an operation can be reverted
// as a whole. Unlike a chain node there is no Merkle trie here; slots map to a
// flat keyspace in the backing kv store.
package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/dominant-strategies/go-quai-stake/kv"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/stackedmap"
)

var (
	balanceKeyPrefix = []byte("b")
	storageKeyPrefix = []byte("s")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

type (
	balanceKey quai.Address
	storageKey struct {
		addr quai.Address
		key  quai.Bytes32
	}
)

// State manages the world state.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap // keeps revisions of the state
}

// New creates a state object backed by the given kv store.
func New(store kv.GetPutter) *State {
	s := &State{store: store}
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.loadFromStore(key)
	})
	// use a base level to keep uncommitted writes
	s.sm.Push()
	return s
}

func (s *State) loadFromStore(key any) (any, bool, error) {
	switch k := key.(type) {
	case balanceKey:
		raw, err := s.store.Get(append(balanceKeyPrefix, k[:]...))
		if err != nil {
			if s.store.IsNotFound(err) {
				return &big.Int{}, true, nil
			}
			return nil, false, &Error{err}
		}
		return new(big.Int).SetBytes(raw), true, nil
	case storageKey:
		raw, err := s.store.Get(storeKeyOf(k))
		if err != nil {
			if s.store.IsNotFound(err) {
				return []byte(nil), true, nil
			}
			return nil, false, &Error{err}
		}
		return raw, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func storeKeyOf(k storageKey) []byte {
	buf := make([]byte, 0, 1+quai.AddressLength+32)
	buf = append(buf, storageKeyPrefix...)
	buf = append(buf, k.addr[:]...)
	return append(buf, k.key[:]...)
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the checkpoint which can be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// GetBalance returns the QUAI balance of the given address.
func (s *State) GetBalance(addr quai.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	return v.(*big.Int), nil
}

// SetBalance sets the QUAI balance of the given address.
func (s *State) SetBalance(addr quai.Address, balance *big.Int) {
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
}

// AddBalance adds the amount to the balance of the given address.
func (s *State) AddBalance(addr quai.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	s.SetBalance(addr, new(big.Int).Add(balance, amount))
	return nil
}

// SubBalance subtracts the amount from the balance of the given address.
// Returns false if the balance is insufficient, leaving the state untouched.
func (s *State) SubBalance(addr quai.Address, amount *big.Int) (bool, error) {
	if amount.Sign() == 0 {
		return true, nil
	}
	balance, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if balance.Cmp(amount) < 0 {
		return false, nil
	}
	s.SetBalance(addr, new(big.Int).Sub(balance, amount))
	return true, nil
}

// GetRawStorage returns the raw bytes stored at (addr, key).
func (s *State) GetRawStorage(addr quai.Address, key quai.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// SetRawStorage stores raw bytes at (addr, key). Empty raw clears the slot.
func (s *State) SetRawStorage(addr quai.Address, key quai.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns a 32-byte slot value at (addr, key).
func (s *State) GetStorage(addr quai.Address, key quai.Bytes32) (quai.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return quai.Bytes32{}, err
	}
	if len(raw) == 0 {
		return quai.Bytes32{}, nil
	}
	var content []byte
	if err := rlp.DecodeBytes(raw, &content); err != nil {
		return quai.Bytes32{}, &Error{err}
	}
	return quai.BytesToBytes32(content), nil
}

// SetStorage sets a 32-byte slot value at (addr, key).
func (s *State) SetStorage(addr quai.Address, key, value quai.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	trimmed := value.Bytes()
	for len(trimmed) > 0 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}
	raw, _ := rlp.EncodeToBytes(trimmed)
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage decodes raw storage at (addr, key) via the decoder callback.
func (s *State) DecodeStorage(addr quai.Address, key quai.Bytes32, decode func(raw []byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return decode(raw)
}

// EncodeStorage encodes raw storage at (addr, key) via the encoder callback.
func (s *State) EncodeStorage(addr quai.Address, key quai.Bytes32, encode func() ([]byte, error)) error {
	raw, err := encode()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// Commit writes all journaled changes into the backing kv store and resets
// the journal. The state stays usable afterwards.
func (s *State) Commit() error {
	batch := s.store.NewBatch()

	var werr error
	s.sm.Journal(func(key, value any) bool {
		switch k := key.(type) {
		case balanceKey:
			bal := value.(*big.Int)
			storeKey := append(balanceKeyPrefix, k[:]...)
			if bal.Sign() == 0 {
				werr = batch.Delete(storeKey)
			} else {
				werr = batch.Put(storeKey, bal.Bytes())
			}
		case storageKey:
			raw := value.([]byte)
			if len(raw) == 0 {
				werr = batch.Delete(storeKeyOf(k))
			} else {
				werr = batch.Put(storeKeyOf(k), raw)
			}
		}
		return werr == nil
	})
	if werr != nil {
		return &Error{werr}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	// restart journaling on top of the persisted snapshot
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
