// Copyright (c) 2025 The go-quai-stake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap implements a map with save-restore/snapshot-revert manner.
package stackedmap

// MapGetter defines the getter of the underlying data source.
// It returns the value for a key along with whether the key exists,
// or an error if the source failed.
type MapGetter func(key any) (value any, exist bool, err error)

// JournalEntry is an entry of the write journal.
type JournalEntry struct {
	Key   any
	Value any
}

type level struct {
	kvs     map[any]any
	journal []*JournalEntry
}

// StackedMap maintains maps in a stack.
// Each level inherits key/values of the level below it, so Put operations can
// be reverted wholesale by popping levels.
type StackedMap struct {
	src    MapGetter
	levels []*level
}

// New creates an instance of StackedMap. src acts as the source of data.
func New(src MapGetter) *StackedMap {
	return &StackedMap{src: src}
}

// Depth returns the depth of the stack.
func (sm *StackedMap) Depth() int {
	return len(sm.levels)
}

// Push pushes a new level onto the stack and
// returns the stack depth before the push.
func (sm *StackedMap) Push() int {
	sm.levels = append(sm.levels, &level{kvs: make(map[any]any)})
	return len(sm.levels) - 1
}

// Pop pops the level at the top of the stack.
// It reverts all Put operations since the last Push.
func (sm *StackedMap) Pop() {
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops levels until the stack depth reaches depth.
func (sm *StackedMap) PopTo(depth int) {
	sm.levels = sm.levels[:depth]
}

// Get gets the value for the given key. Levels are searched from top to
// bottom, falling back to the data source.
func (sm *StackedMap) Get(key any) (any, bool, error) {
	for i := len(sm.levels) - 1; i >= 0; i-- {
		if v, ok := sm.levels[i].kvs[key]; ok {
			return v, true, nil
		}
	}
	return sm.src(key)
}

// Put puts the key value into the top level.
// It panics if no level was ever pushed.
func (sm *StackedMap) Put(key, value any) {
	top := sm.levels[len(sm.levels)-1]
	top.kvs[key] = value
	top.journal = append(top.journal, &JournalEntry{Key: key, Value: value})
}

// Journal traverses journal entries of all levels in write order.
// The traversal stops when the callback returns false.
func (sm *StackedMap) Journal(cb func(key, value any) bool) {
	for _, lvl := range sm.levels {
		for _, e := range lvl.journal {
			if !cb(e.Key, e.Value) {
				return
			}
		}
	}
}
