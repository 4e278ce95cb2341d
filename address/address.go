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

// Package address encodes and decodes CKB addresses: a bech32 string whose
// payload starts with a format byte, followed either by a registered code
// index (short address) or by an explicit 32 byte code hash (full address),
// then the script args.
package address

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ckbaddr/bech32"
)

// checksumConst is XORed into the polymod of every address checksum.
const checksumConst = bech32.Version0Const

// MaxSegmentLength is the largest args segment in segmented encoding.
const MaxSegmentLength = 256

// Address is a decoded address. CodeIndex is set for short addresses,
// HashType and CodeHash for full ones. Args always holds every payload byte
// after the code index or code hash; Segments is filled only when the address
// was decoded with ArgsSegmented.
type Address struct {
	Network   Network
	Format    FormatType
	CodeIndex CodeIndex
	HashType  HashType
	CodeHash  Hash
	Args      []byte
	Segments  [][]byte
}

func (a *Address) IsShort() bool {
	return a.Format == FormatShort
}

// Script returns the explicit lock script of a full address. Short addresses
// need a registry to be expanded.
func (a *Address) Script() (Script, error) {
	if !a.Format.IsFull() {
		return Script{}, ErrShortAddress
	}
	return Script{
		CodeHash: a.CodeHash,
		HashType: a.HashType,
		Args:     bytes.Clone(a.Args),
	}, nil
}

type addressJSON struct {
	Network   Network    `json:"network"`
	Format    string     `json:"format"`
	CodeIndex *CodeIndex `json:"code_index,omitempty"`
	HashType  *HashType  `json:"hash_type,omitempty"`
	CodeHash  *Hash      `json:"code_hash,omitempty"`
	Args      string     `json:"args"`
	Segments  []string   `json:"segments,omitempty"`
}

func (a Address) MarshalJSON() ([]byte, error) {
	j := addressJSON{
		Network: a.Network,
		Format:  a.Format.String(),
		Args:    "0x" + hex.EncodeToString(a.Args),
	}
	if a.Format == FormatShort {
		j.CodeIndex = &a.CodeIndex
	} else {
		j.HashType = &a.HashType
		j.CodeHash = &a.CodeHash
	}
	for _, s := range a.Segments {
		j.Segments = append(j.Segments, "0x"+hex.EncodeToString(s))
	}
	return json.Marshal(j)
}

// Codec encodes and decodes addresses of one network. The zero value is a
// mainnet codec using raw args.
type Codec struct {
	Network Network
	Args    ArgsEncoding
}

func NewCodec(network Network, args ArgsEncoding) (Codec, error) {
	if network.Prefix() == "" {
		return Codec{}, fmt.Errorf("%w: %d", ErrUnknownNetwork, uint8(network))
	}
	switch args {
	case ArgsRaw, ArgsSegmented:
	default:
		return Codec{}, fmt.Errorf("%w: %d", ErrUnknownArgsEncoding, uint8(args))
	}
	return Codec{Network: network, Args: args}, nil
}

// EncodeShort builds a short address referencing the script registered under
// index.
func (c Codec) EncodeShort(index CodeIndex, args []byte) (string, error) {
	if len(args) == 0 {
		return "", ErrEmptyArgs
	}
	payload := make([]byte, 0, 2+len(args))
	payload = append(payload, byte(FormatShort), byte(index))
	payload = append(payload, args...)
	return c.encode(payload)
}

// EncodeFull builds a full address. With ArgsRaw at most one args blob may be
// given; with ArgsSegmented every element of args is one segment and must be
// 1 to MaxSegmentLength bytes long.
func (c Codec) EncodeFull(hashType HashType, codeHash Hash, args ...[]byte) (string, error) {
	format, err := hashType.formatType()
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, 1+len(codeHash)+argsLen(args))
	payload = append(payload, byte(format))
	payload = append(payload, codeHash[:]...)

	switch c.Args {
	case ArgsRaw:
		if len(args) > 1 {
			return "", fmt.Errorf("%w: raw encoding carries a single args blob, got %d", ErrArgumentSegmentInvalid, len(args))
		}
		if len(args) == 1 {
			payload = append(payload, args[0]...)
		}
	case ArgsSegmented:
		payload, err = appendSegments(payload, args)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownArgsEncoding, uint8(c.Args))
	}

	return c.encode(payload)
}

func argsLen(args [][]byte) int {
	n := 0
	for _, a := range args {
		n += len(a) + 1
	}
	return n
}

func (c Codec) encode(payload []byte) (string, error) {
	hrp := c.Network.Prefix()
	if hrp == "" {
		return "", fmt.Errorf("%w: %d", ErrUnknownNetwork, uint8(c.Network))
	}

	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	checksum := createChecksum(hrp, data)

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + len(checksum))
	sb.WriteString(hrp)
	sb.WriteByte(bech32.Separator)
	for _, v := range data {
		sb.WriteByte(bech32.Charset[v])
	}
	for _, v := range checksum {
		sb.WriteByte(bech32.Charset[v])
	}
	return sb.String(), nil
}

func createChecksum(hrp string, data []byte) [bech32.ChecksumLength]byte {
	values := bech32.HrpExpand(hrp)
	values = append(values, data...)
	values = append(values, make([]byte, bech32.ChecksumLength)...)
	polymod := bech32.Polymod(values) ^ uint32(checksumConst)

	var checksum [bech32.ChecksumLength]byte
	for i := range checksum {
		checksum[i] = byte(polymod >> uint(5*(5-i)) & 31)
	}
	return checksum
}

// Decode parses addr, which must carry the prefix of the codec's network.
func (c Codec) Decode(addr string) (*Address, error) {
	hrp, data, version, err := bech32.Decode(addr)
	if err != nil {
		if errors.Is(err, bech32.ErrInvalidChecksum) {
			return nil, ErrChecksumInvalid
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedAddress, err)
	}
	if version != bech32.ConstsToVersion[checksumConst] {
		return nil, fmt.Errorf("%w: %s checksum", ErrChecksumInvalid, version)
	}
	if hrp != c.Network.Prefix() {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrPrefixMismatch, c.Network.Prefix(), hrp)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBitPaddingNonzero, err)
	}
	if len(payload) == 0 {
		return nil, ErrPayloadTooShort
	}

	a := &Address{
		Network: c.Network,
		Format:  FormatType(payload[0]),
	}

	switch a.Format {
	case FormatShort:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: short payload of %d bytes", ErrPayloadTooShort, len(payload))
		}
		a.CodeIndex = CodeIndex(payload[1])
		a.Args = payload[2:]
	case FormatFullData, FormatFullType:
		if len(payload) < 1+len(a.CodeHash) {
			return nil, fmt.Errorf("%w: full payload of %d bytes", ErrPayloadTooShort, len(payload))
		}
		a.HashType, err = hashTypeOf(a.Format)
		if err != nil {
			return nil, err
		}
		copy(a.CodeHash[:], payload[1:])
		a.Args = payload[1+len(a.CodeHash):]

		switch c.Args {
		case ArgsRaw:
		case ArgsSegmented:
			a.Segments, err = splitSegments(a.Args)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownArgsEncoding, uint8(c.Args))
		}
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownFormatTag, payload[0])
	}

	return a, nil
}

func appendSegments(dst []byte, segments [][]byte) ([]byte, error) {
	for i, s := range segments {
		if len(s) < 1 || len(s) > MaxSegmentLength {
			return nil, fmt.Errorf("%w: segment %d has length %d", ErrArgumentSegmentInvalid, i, len(s))
		}
		// 256 wraps to 0x00
		dst = append(dst, byte(len(s)))
		dst = append(dst, s...)
	}
	return dst, nil
}

func splitSegments(b []byte) ([][]byte, error) {
	segments := make([][]byte, 0, 1)
	for len(b) > 0 {
		n := int(b[0])
		if n == 0 {
			n = MaxSegmentLength
		}
		if len(b) < 1+n {
			return nil, fmt.Errorf("%w: segment %d truncated", ErrArgumentSegmentInvalid, len(segments))
		}
		segments = append(segments, b[1:1+n])
		b = b[1+n:]
	}
	return segments, nil
}

// NetworkFromAddress infers the network from the prefix of addr.
func NetworkFromAddress(addr string) (Network, error) {
	pos := strings.LastIndexByte(addr, bech32.Separator)
	if pos < 1 {
		return 0, fmt.Errorf("%w: missing separator", ErrMalformedAddress)
	}
	return NetworkFromPrefix(strings.ToLower(addr[:pos]))
}

func EncodeShort(network Network, index CodeIndex, args []byte) (string, error) {
	return Codec{Network: network}.EncodeShort(index, args)
}

func EncodeFull(network Network, hashType HashType, codeHash Hash, args []byte) (string, error) {
	return Codec{Network: network}.EncodeFull(hashType, codeHash, args)
}

func EncodeFullSegments(network Network, hashType HashType, codeHash Hash, segments [][]byte) (string, error) {
	return Codec{Network: network, Args: ArgsSegmented}.EncodeFull(hashType, codeHash, segments...)
}

func Decode(addr string, network Network) (*Address, error) {
	return Codec{Network: network}.Decode(addr)
}
