/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package hosts reads and edits the host-resolution file.
//
// Edits are upserts of a single name to address mapping and are buffered
// in memory until Save rewrites the whole file. Writing the system hosts
// file requires elevated privileges.
package hosts

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/txn2/txeh"

	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

// Entry is one name to address mapping of the hosts file.
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// File is the host-resolution file as used by the reconciler and the
// status reporter.
type File interface {
	// Entries returns every mapping in file order. A line carrying several
	// names yields one Entry per name.
	Entries() ([]Entry, error)
	// Set upserts name so it resolves to address only.
	Set(address, name string) error
	// Save writes pending changes.
	Save() error
}

// TxehFile is a File backed by txeh.
type TxehFile struct {
	path  string
	hosts *txeh.Hosts
}

// Open loads the hosts file at path. An empty path selects the OS default.
func Open(path string) (*TxehFile, error) {
	h, err := txeh.NewHosts(&txeh.HostsConfig{
		ReadFilePath:  path,
		WriteFilePath: path,
	})
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeNotFound, fmt.Sprintf("failed to read hosts file %q", path), err)
	}
	return &TxehFile{path: path, hosts: h}, nil
}

// Entries implements File.
func (f *TxehFile) Entries() ([]Entry, error) {
	lines := f.hosts.GetHostFileLines()
	if lines == nil {
		return nil, nil
	}

	var out []Entry
	for _, line := range *lines {
		if line.LineType != txeh.ADDRESS {
			continue
		}
		for _, name := range line.Hostnames {
			out = append(out, Entry{Name: name, Address: line.Address})
		}
	}
	return out, nil
}

// Set implements File.
func (f *TxehFile) Set(address, name string) error {
	address = strings.TrimSpace(address)
	name = strings.TrimSpace(name)
	if address == "" || name == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid host entry %q -> %q", name, address))
	}

	slog.Debug("setting host entry", "name", name, "address", address)
	f.hosts.AddHost(address, name)
	return nil
}

// Save implements File.
func (f *TxehFile) Save() error {
	if err := f.hosts.Save(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, fmt.Sprintf("failed to write hosts file %q", f.path), err)
	}
	return nil
}

// Render returns the file content that Save would write.
func (f *TxehFile) Render() string {
	return f.hosts.RenderHostsFile()
}
