/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package hosts

import "strings"

// MemoryFile is an in-memory File. Set follows the same upsert semantics as
// TxehFile: the name is removed from any other address first.
type MemoryFile struct {
	entries []Entry
	saved   []Entry
	Saves   int
}

// NewMemory returns a MemoryFile holding entries.
func NewMemory(entries ...Entry) *MemoryFile {
	m := &MemoryFile{entries: append([]Entry(nil), entries...)}
	m.saved = append([]Entry(nil), m.entries...)
	return m
}

// Entries implements File.
func (m *MemoryFile) Entries() ([]Entry, error) {
	return append([]Entry(nil), m.entries...), nil
}

// Set implements File.
func (m *MemoryFile) Set(address, name string) error {
	address = strings.TrimSpace(address)
	name = strings.TrimSpace(name)

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	m.entries = append(kept, Entry{Name: name, Address: address})
	return nil
}

// Save implements File.
func (m *MemoryFile) Save() error {
	m.Saves++
	m.saved = append([]Entry(nil), m.entries...)
	return nil
}

// Saved returns the entries as of the last Save.
func (m *MemoryFile) Saved() []Entry {
	return append([]Entry(nil), m.saved...)
}

// Lookup returns the current address of name.
func (m *MemoryFile) Lookup(name string) (string, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e.Address, true
		}
	}
	return "", false
}
