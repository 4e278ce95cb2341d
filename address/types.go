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

package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

type Network uint8

const (
	Mainnet Network = iota
	Testnet
)

const (
	PrefixMainnet = "ckb"
	PrefixTestnet = "ckt"
)

// Networks lists every known network.
var Networks = []Network{Mainnet, Testnet}

// Prefix returns the human-readable prefix of the network, or an empty string
// for an unknown network.
func (n Network) Prefix() string {
	switch n {
	case Mainnet:
		return PrefixMainnet
	case Testnet:
		return PrefixTestnet
	default:
		return ""
	}
}

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", uint8(n))
	}
}

// ParseNetwork accepts a network name ("mainnet", "testnet") or its prefix.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(s) {
	case "mainnet", PrefixMainnet:
		return Mainnet, nil
	case "testnet", PrefixTestnet:
		return Testnet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
}

// NetworkFromPrefix maps a human-readable prefix to its network.
func NetworkFromPrefix(hrp string) (Network, error) {
	switch hrp {
	case PrefixMainnet:
		return Mainnet, nil
	case PrefixTestnet:
		return Testnet, nil
	default:
		return 0, fmt.Errorf("%w: prefix %q", ErrUnknownNetwork, hrp)
	}
}

func (n Network) MarshalText() ([]byte, error) {
	if n.Prefix() == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNetwork, uint8(n))
	}
	return []byte(n.String()), nil
}

func (n *Network) UnmarshalText(b []byte) error {
	v, err := ParseNetwork(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// FormatType is the first payload byte.
type FormatType uint8

const (
	FormatShort    FormatType = 0x01
	FormatFullData FormatType = 0x02
	FormatFullType FormatType = 0x04
)

func (f FormatType) String() string {
	switch f {
	case FormatShort:
		return "short"
	case FormatFullData:
		return "full_data"
	case FormatFullType:
		return "full_type"
	default:
		return fmt.Sprintf("format(0x%02x)", uint8(f))
	}
}

func (f FormatType) IsFull() bool {
	return f == FormatFullData || f == FormatFullType
}

// CodeIndex selects a registered script in a short address.
type CodeIndex uint8

const (
	CodeIndexSecp256k1Single CodeIndex = 0x00
	CodeIndexSecp256k1Multi  CodeIndex = 0x01
	CodeIndexAnyoneCanPay    CodeIndex = 0x02
)

func (c CodeIndex) String() string {
	switch c {
	case CodeIndexSecp256k1Single:
		return "secp256k1/blake160"
	case CodeIndexSecp256k1Multi:
		return "secp256k1/multisig"
	case CodeIndexAnyoneCanPay:
		return "anyone_can_pay"
	default:
		return fmt.Sprintf("code_index(0x%02x)", uint8(c))
	}
}

type HashType uint8

const (
	HashTypeData HashType = 0
	HashTypeType HashType = 1
)

func (h HashType) String() string {
	switch h {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	default:
		return fmt.Sprintf("hash_type(%d)", uint8(h))
	}
}

func ParseHashType(s string) (HashType, error) {
	switch strings.ToLower(s) {
	case "data":
		return HashTypeData, nil
	case "type":
		return HashTypeType, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidHashType, s)
	}
}

func (h HashType) MarshalText() ([]byte, error) {
	switch h {
	case HashTypeData, HashTypeType:
		return []byte(h.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidHashType, uint8(h))
	}
}

func (h *HashType) UnmarshalText(b []byte) error {
	v, err := ParseHashType(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// formatType returns the full-address tag carrying h.
func (h HashType) formatType() (FormatType, error) {
	switch h {
	case HashTypeData:
		return FormatFullData, nil
	case HashTypeType:
		return FormatFullType, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidHashType, uint8(h))
	}
}

func hashTypeOf(f FormatType) (HashType, error) {
	switch f {
	case FormatFullData:
		return HashTypeData, nil
	case FormatFullType:
		return HashTypeType, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownFormatTag, uint8(f))
	}
}

// ArgsEncoding selects how the args of a full address are framed.
type ArgsEncoding uint8

const (
	// ArgsRaw carries args as a single blob running to the end of the payload.
	ArgsRaw ArgsEncoding = iota
	// ArgsSegmented carries a list of segments, each prefixed with a one byte
	// length. A length byte of 0x00 stands for 256.
	ArgsSegmented
)

func (a ArgsEncoding) String() string {
	switch a {
	case ArgsRaw:
		return "raw"
	case ArgsSegmented:
		return "segmented"
	default:
		return fmt.Sprintf("args_encoding(%d)", uint8(a))
	}
}

func ParseArgsEncoding(s string) (ArgsEncoding, error) {
	switch strings.ToLower(s) {
	case "", "raw":
		return ArgsRaw, nil
	case "segmented":
		return ArgsSegmented, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownArgsEncoding, s)
	}
}

// Hash is a 32 byte script code hash.
type Hash [32]byte

// ParseHash decodes 64 hex characters, with or without a 0x prefix.
func ParseHash(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*len(h) {
		return h, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidCodeHash, 2*len(h), len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidCodeHash, err)
	}
	return h, nil
}

func MustParseHash(s string) Hash {
	h, err := ParseHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	v, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Script is the lock script an address denotes.
type Script struct {
	CodeHash Hash
	HashType HashType
	Args     []byte
}

type scriptJSON struct {
	CodeHash Hash     `json:"code_hash"`
	HashType HashType `json:"hash_type"`
	Args     string   `json:"args"`
}

func (s Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(scriptJSON{
		CodeHash: s.CodeHash,
		HashType: s.HashType,
		Args:     "0x" + hex.EncodeToString(s.Args),
	})
}

func (s *Script) UnmarshalJSON(data []byte) error {
	var j scriptJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	args, err := hex.DecodeString(strings.TrimPrefix(j.Args, "0x"))
	if err != nil {
		return err
	}
	s.CodeHash = j.CodeHash
	s.HashType = j.HashType
	s.Args = args
	return nil
}
