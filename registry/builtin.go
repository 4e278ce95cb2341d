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

package registry

import "ckbaddr/address"

var (
	secp256k1CodeHash = address.MustParseHash("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8")
	multisigCodeHash  = address.MustParseHash("0x5c5069eb0857efc65e1bca0c07df34c31663b3622fd3876c876320fc9634e2a8")

	mainnetGenesisDepGroup = address.MustParseHash("0x71a7ba8fc96349fea0ed3a5c47992e3b4084b031a42264a018e0072e8172e46c")
	testnetGenesisDepGroup = address.MustParseHash("0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37")
)

// builtin lists the scripts deployed on the public networks.
var builtin = []Entry{
	{
		Network:   address.Mainnet,
		CodeIndex: address.CodeIndexSecp256k1Single,
		Name:      "secp256k1_blake160",
		CodeHash:  secp256k1CodeHash,
		HashType:  address.HashTypeType,
		OutPoint:  OutPoint{TxHash: mainnetGenesisDepGroup, Index: 0},
		DepType:   DepTypeDepGroup,
	},
	{
		Network:   address.Mainnet,
		CodeIndex: address.CodeIndexSecp256k1Multi,
		Name:      "secp256k1_multisig",
		CodeHash:  multisigCodeHash,
		HashType:  address.HashTypeType,
		OutPoint:  OutPoint{TxHash: mainnetGenesisDepGroup, Index: 1},
		DepType:   DepTypeDepGroup,
	},
	{
		Network:   address.Mainnet,
		CodeIndex: address.CodeIndexAnyoneCanPay,
		Name:      "anyone_can_pay",
		CodeHash:  address.MustParseHash("0xd369597ff47f29fbc0d47d2e3775370d1250b85140c670e4718af712983a2354"),
		HashType:  address.HashTypeType,
		OutPoint: OutPoint{
			TxHash: address.MustParseHash("0x4153a2014952d7cac45f285ce9a7c5c0c0e1b21f2d378b82ac1433cb11c25c4d"),
			Index:  0,
		},
		DepType: DepTypeDepGroup,
	},
	{
		Network:   address.Testnet,
		CodeIndex: address.CodeIndexSecp256k1Single,
		Name:      "secp256k1_blake160",
		CodeHash:  secp256k1CodeHash,
		HashType:  address.HashTypeType,
		OutPoint:  OutPoint{TxHash: testnetGenesisDepGroup, Index: 0},
		DepType:   DepTypeDepGroup,
	},
	{
		Network:   address.Testnet,
		CodeIndex: address.CodeIndexSecp256k1Multi,
		Name:      "secp256k1_multisig",
		CodeHash:  multisigCodeHash,
		HashType:  address.HashTypeType,
		OutPoint:  OutPoint{TxHash: testnetGenesisDepGroup, Index: 1},
		DepType:   DepTypeDepGroup,
	},
	{
		Network:   address.Testnet,
		CodeIndex: address.CodeIndexAnyoneCanPay,
		Name:      "anyone_can_pay",
		CodeHash:  address.MustParseHash("0x3419a1c09eb2567f6552ee7a8ecffd64155cffe0f1796e6e61ec088d740c1356"),
		HashType:  address.HashTypeType,
		OutPoint: OutPoint{
			TxHash: address.MustParseHash("0xec26b0f85ed839ece5f11c4c4e837ec359f5adc4420410f6453b1f6b60fb96a6"),
			Index:  0,
		},
		DepType: DepTypeDepGroup,
	},
}
