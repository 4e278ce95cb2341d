// Copyright (C) 2024 XELIS
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package registry maps the code index of a short address to the script it
// stands for on a given network.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"ckbaddr/address"
	"ckbaddr/log"
)

var (
	ErrRegistryLookupMiss = errors.New("code index not registered")
	ErrNotShortAddress    = errors.New("only short addresses can be expanded")
	ErrDuplicateEntry     = errors.New("duplicate registry entry")
	ErrInvalidDepType     = errors.New("invalid dep type")
)

type DepType uint8

const (
	DepTypeCode DepType = iota
	DepTypeDepGroup
)

func (d DepType) String() string {
	switch d {
	case DepTypeCode:
		return "code"
	case DepTypeDepGroup:
		return "dep_group"
	default:
		return fmt.Sprintf("dep_type(%d)", uint8(d))
	}
}

func (d DepType) MarshalText() ([]byte, error) {
	switch d {
	case DepTypeCode, DepTypeDepGroup:
		return []byte(d.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepType, uint8(d))
	}
}

func (d *DepType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "code":
		*d = DepTypeCode
	case "dep_group":
		*d = DepTypeDepGroup
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDepType, b)
	}
	return nil
}

// OutPoint locates the cell holding the script code.
type OutPoint struct {
	TxHash address.Hash `json:"tx_hash"`
	Index  uint32       `json:"index"`
}

type Entry struct {
	Network   address.Network   `json:"network"`
	CodeIndex address.CodeIndex `json:"code_index"`
	Name      string            `json:"name"`
	CodeHash  address.Hash      `json:"code_hash"`
	HashType  address.HashType  `json:"hash_type"`
	OutPoint  OutPoint          `json:"out_point"`
	DepType   DepType           `json:"dep_type"`
}

type key struct {
	network address.Network
	index   address.CodeIndex
}

// Registry is an immutable table of registered scripts. It is safe for
// concurrent use.
type Registry struct {
	entries map[key]Entry
}

func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make(map[key]Entry, len(entries)),
	}
	for _, e := range entries {
		if e.Network.Prefix() == "" {
			return nil, fmt.Errorf("%w: %d", address.ErrUnknownNetwork, uint8(e.Network))
		}
		if _, err := e.HashType.MarshalText(); err != nil {
			return nil, err
		}
		if _, err := e.DepType.MarshalText(); err != nil {
			return nil, err
		}
		k := key{e.Network, e.CodeIndex}
		if _, ok := r.entries[k]; ok {
			return nil, fmt.Errorf("%w: %s index 0x%02x", ErrDuplicateEntry, e.Network, uint8(e.CodeIndex))
		}
		r.entries[k] = e
	}
	return r, nil
}

// Default returns the registry of the scripts deployed on mainnet and testnet.
func Default() *Registry {
	r, err := New(builtin...)
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads a JSON array of entries.
func Load(path string) (*Registry, error) {
	fd, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(fd, &entries); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}

	r, err := New(entries...)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	log.Debugf("loaded %d registry entries from %s", len(entries), path)
	return r, nil
}

func (r *Registry) Lookup(network address.Network, index address.CodeIndex) (Entry, error) {
	e, ok := r.entries[key{network, index}]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s index 0x%02x", ErrRegistryLookupMiss, network, uint8(index))
	}
	return e, nil
}

// Entries returns a copy of the table ordered by network then code index.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if a.Network != b.Network {
			return int(a.Network) - int(b.Network)
		}
		return int(a.CodeIndex) - int(b.CodeIndex)
	})
	return out
}

// Expand decodes a short address, inferring the network from its prefix, and
// returns the registered script with the address args.
func (r *Registry) Expand(addr string) (address.Script, error) {
	network, err := address.NetworkFromAddress(addr)
	if err != nil {
		return address.Script{}, err
	}
	a, err := address.Decode(addr, network)
	if err != nil {
		return address.Script{}, err
	}
	return r.ExpandAddress(a)
}

func (r *Registry) ExpandAddress(a *address.Address) (address.Script, error) {
	if !a.IsShort() {
		return address.Script{}, ErrNotShortAddress
	}
	e, err := r.Lookup(a.Network, a.CodeIndex)
	if err != nil {
		return address.Script{}, err
	}
	return address.Script{
		CodeHash: e.CodeHash,
		HashType: e.HashType,
		Args:     slices.Clone(a.Args),
	}, nil
}
