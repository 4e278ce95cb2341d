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

// Package bech32 implements the generic bech32 primitives: human-readable
// prefix expansion, the BCH checksum polynomial, 8 <-> 5 bit regrouping and
// the split of an encoded string into prefix and quintets.
package bech32

import (
	"strings"
)

const Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const Separator = '1'

// ChecksumLength is the number of quintets appended as checksum.
const ChecksumLength = 6

var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// charsetRev maps an ASCII symbol to its quintet value, -1 when the symbol is
// not part of Charset.
var charsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i := 0; i < len(Charset); i++ {
		rev[Charset[i]] = int8(i)
	}
	return rev
}()

type Bech32Error struct {
	Message string
}

func (e *Bech32Error) Error() string {
	return e.Message
}

func NewBech32Error(msg string) error {
	return &Bech32Error{Message: msg}
}

// ErrInvalidChecksum is returned by Decode when the checksum matches none of
// the known constants.
var ErrInvalidChecksum = NewBech32Error("Invalid checksum")

// Polymod computes the BCH checksum accumulator over a sequence of quintets.
func Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, value := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(value)
		for i, item := range generator {
			if (top>>uint(i))&1 == 1 {
				chk ^= item
			}
		}
	}
	return chk
}

// HrpExpand returns the high bits of every prefix character, a zero, then the
// low bits of every prefix character.
func HrpExpand(hrp string) []byte {
	result := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		result = append(result, hrp[i]>>5)
	}
	result = append(result, 0)
	for i := 0; i < len(hrp); i++ {
		result = append(result, hrp[i]&31)
	}
	return result
}

// CreateChecksum returns the six checksum quintets of data under the given
// constant, most significant first.
func CreateChecksum(hrp string, data []byte, c ChecksumConst) [ChecksumLength]byte {
	values := HrpExpand(hrp)
	values = append(values, data...)
	var result [ChecksumLength]byte
	values = append(values, result[:]...)
	polymodValue := Polymod(values) ^ uint32(c)
	for i := 0; i < ChecksumLength; i++ {
		result[i] = byte((polymodValue >> uint(5*(5-i))) & 31)
	}
	return result
}

// VerifyChecksum returns the version whose constant data (checksum included)
// verifies against, or VersionUnknown.
func VerifyChecksum(hrp string, data []byte) Version {
	values := HrpExpand(hrp)
	values = append(values, data...)
	version, ok := ConstsToVersion[ChecksumConst(Polymod(values))]
	if !ok {
		return VersionUnknown
	}
	return version
}

func checkHrp(hrp string) error {
	if len(hrp) == 0 {
		return NewBech32Error("Human readable part is empty")
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return NewBech32Error("Invalid character value in human readable part")
		}
	}
	return nil
}

// Encode serializes quintets under hrp, appending a checksum built with the
// constant of version.
func Encode(hrp string, data []byte, version Version) (string, error) {
	if err := checkHrp(hrp); err != nil {
		return "", err
	}
	if strings.ToUpper(hrp) != hrp && strings.ToLower(hrp) != hrp {
		return "", NewBech32Error("Mix case is not allowed in human readable part")
	}
	c, ok := VersionToConsts[version]
	if !ok {
		return "", NewBech32Error("Unknown checksum version")
	}
	hrp = strings.ToLower(hrp)
	checksum := CreateChecksum(hrp, data, c)

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + ChecksumLength)
	sb.WriteString(hrp)
	sb.WriteByte(Separator)
	for _, value := range data {
		if value >= 32 {
			return "", NewBech32Error("Invalid value")
		}
		sb.WriteByte(Charset[value])
	}
	for _, value := range checksum {
		sb.WriteByte(Charset[value])
	}
	return sb.String(), nil
}

// Decode splits bech into its lowercase prefix and data quintets, checksum
// stripped. The returned version tells which checksum constant matched.
// No overall length limit is applied.
func Decode(bech string) (string, []byte, Version, error) {
	if strings.ToUpper(bech) != bech && strings.ToLower(bech) != bech {
		return "", nil, VersionUnknown, NewBech32Error("Mix case is not allowed")
	}
	bech = strings.ToLower(bech)

	pos := strings.LastIndexByte(bech, Separator)
	if pos < 1 || pos+ChecksumLength+1 > len(bech) {
		return "", nil, VersionUnknown, NewBech32Error("Invalid separator position")
	}
	hrp := bech[:pos]
	if err := checkHrp(hrp); err != nil {
		return "", nil, VersionUnknown, err
	}

	data := make([]byte, 0, len(bech)-pos-1)
	for i := pos + 1; i < len(bech); i++ {
		c := bech[i]
		if c >= 128 || charsetRev[c] == -1 {
			return "", nil, VersionUnknown, NewBech32Error("Invalid character in data part")
		}
		data = append(data, byte(charsetRev[c]))
	}

	version := VerifyChecksum(hrp, data)
	if version == VersionUnknown {
		return "", nil, VersionUnknown, ErrInvalidChecksum
	}

	return hrp, data[:len(data)-ChecksumLength], version, nil
}

// ConvertBits regroups a sequence of fromBits-wide values into toBits-wide
// values. With pad unset, leftover bits must be fewer than fromBits and zero.
func ConvertBits(data []byte, fromBits, toBits uint8, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, NewBech32Error("Invalid bit group width")
	}

	var acc uint32
	var bits uint8
	maxv := uint32(1)<<toBits - 1
	ret := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, value := range data {
		if uint32(value)>>fromBits != 0 {
			return nil, NewBech32Error("Invalid data range")
		}
		acc = acc<<fromBits | uint32(value)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			ret = append(ret, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits {
		return nil, NewBech32Error("Excess padding")
	} else if acc<<(toBits-bits)&maxv != 0 {
		return nil, NewBech32Error("Non-zero padding")
	}

	return ret, nil
}
