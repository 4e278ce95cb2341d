// Copyright (C) 2024 duggavo
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

package bech32

// ChecksumConst is the value the checksum polymod is XORed with. It separates
// checksum namespaces: a string valid under one constant fails under another.
type ChecksumConst uint32

const (
	// Version0Const is the classic bech32 constant.
	Version0Const ChecksumConst = 1

	// VersionMConst is the bech32m constant (BIP-350).
	VersionMConst ChecksumConst = 0x2bc830a3
)

type Version uint8

const (
	Version0 Version = iota
	VersionM
	VersionUnknown
)

func (v Version) String() string {
	switch v {
	case Version0:
		return "bech32"
	case VersionM:
		return "bech32m"
	default:
		return "unknown"
	}
}

var VersionToConsts = map[Version]ChecksumConst{
	Version0: Version0Const,
	VersionM: VersionMConst,
}

var ConstsToVersion = map[ChecksumConst]Version{
	Version0Const: Version0,
	VersionMConst: VersionM,
}
