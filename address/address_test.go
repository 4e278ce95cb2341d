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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"ckbaddr/bech32"

	btcbech32 "github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testArgsHex  = "b39bbc0b3673c7d36450bc14cfcdad2d559c6c64"
	testCodeHash = "0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"

	shortMainnet    = "ckb1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jqfwyw5v"
	shortTestnet    = "ckt1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jq5t63cs"
	shortMultisig   = "ckb1qyqm8xaupvm8837nv3gtc9x0ekkj64vud3jqaz46mc"
	fullTypeMainnet = "ckb1qjda0cr08m85hc8jlnfp3zer7xulejywt49kt2rr0vthywaa50xw3vumhs9nvu786dj9p0q5elx66t24n3kxgj53qks"
	fullDataMainnet = "ckb1q2da0cr08m85hc8jlnfp3zer7xulejywt49kt2rr0vthywaa50xw3vumhs9nvu786dj9p0q5elx66t24n3kxgdwd2q8"
	fullTypeTestnet = "ckt1qjda0cr08m85hc8jlnfp3zer7xulejywt49kt2rr0vthywaa50xw3vumhs9nvu786dj9p0q5elx66t24n3kxglhgd30"
)

func testArgs(t *testing.T) []byte {
	b, err := hex.DecodeString(testArgsHex)
	require.NoError(t, err)
	return b
}

// encodePayload frames an arbitrary payload with the address checksum.
func encodePayload(t *testing.T, hrp string, payload []byte) string {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.Encode(hrp, data, bech32.Version0)
	require.NoError(t, err)
	return s
}

func TestEncodeShortGolden(t *testing.T) {
	args := testArgs(t)

	tests := []struct {
		network Network
		index   CodeIndex
		want    string
	}{
		{Mainnet, CodeIndexSecp256k1Single, shortMainnet},
		{Testnet, CodeIndexSecp256k1Single, shortTestnet},
		{Mainnet, CodeIndexSecp256k1Multi, shortMultisig},
	}
	for _, tt := range tests {
		got, err := EncodeShort(tt.network, tt.index, args)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)

		// deterministic across calls
		again, err := EncodeShort(tt.network, tt.index, args)
		require.NoError(t, err)
		require.Equal(t, got, again)
	}
}

func TestDecodeShortGolden(t *testing.T) {
	a, err := Decode(shortMainnet, Mainnet)
	require.NoError(t, err)
	require.True(t, a.IsShort())
	require.Equal(t, FormatShort, a.Format)
	require.Equal(t, CodeIndexSecp256k1Single, a.CodeIndex)
	require.Equal(t, testArgsHex, hex.EncodeToString(a.Args))
	require.Equal(t, Mainnet, a.Network)

	_, err = a.Script()
	require.ErrorIs(t, err, ErrShortAddress)
}

func TestEncodeFullGolden(t *testing.T) {
	args := testArgs(t)
	codeHash := MustParseHash(testCodeHash)

	tests := []struct {
		network  Network
		hashType HashType
		want     string
	}{
		{Mainnet, HashTypeType, fullTypeMainnet},
		{Mainnet, HashTypeData, fullDataMainnet},
		{Testnet, HashTypeType, fullTypeTestnet},
	}
	for _, tt := range tests {
		got, err := EncodeFull(tt.network, tt.hashType, codeHash, args)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)

		a, err := Decode(got, tt.network)
		require.NoError(t, err)
		require.False(t, a.IsShort())
		require.Equal(t, tt.hashType, a.HashType)
		require.Equal(t, codeHash, a.CodeHash)
		require.Equal(t, args, a.Args)
		require.Nil(t, a.Segments)

		script, err := a.Script()
		require.NoError(t, err)
		require.Equal(t, Script{CodeHash: codeHash, HashType: tt.hashType, Args: args}, script)
	}
}

func TestEncodeMatchesPlainBech32(t *testing.T) {
	// the address checksum constant is the classic bech32 one
	payload := append([]byte{byte(FormatShort), 0x00}, testArgs(t)...)
	want, err := btcbech32.EncodeFromBase256(PrefixMainnet, payload)
	require.NoError(t, err)
	require.Equal(t, shortMainnet, want)
}

func TestRoundTripShort(t *testing.T) {
	for _, network := range Networks {
		for _, index := range []CodeIndex{0x00, 0x01, 0x02, 0x7f, 0xff} {
			for _, n := range []int{1, 2, 20, 21, 28, 64, 300} {
				args := make([]byte, n)
				for i := range args {
					args[i] = byte(i*7 + int(index))
				}
				s, err := EncodeShort(network, index, args)
				require.NoError(t, err)

				a, err := Decode(s, network)
				require.NoError(t, err)
				assert.Equal(t, FormatShort, a.Format)
				assert.Equal(t, index, a.CodeIndex)
				assert.Equal(t, args, a.Args)
			}
		}
	}
}

func TestRoundTripFull(t *testing.T) {
	for _, network := range Networks {
		for _, hashType := range []HashType{HashTypeData, HashTypeType} {
			for _, n := range []int{1, 20, 32, 255, 1000} {
				var codeHash Hash
				for i := range codeHash {
					codeHash[i] = byte(255 - i - n)
				}
				args := bytes.Repeat([]byte{0xa5, 0x5a, 0x01}, n)[:n]

				s, err := EncodeFull(network, hashType, codeHash, args)
				require.NoError(t, err)

				a, err := Decode(s, network)
				require.NoError(t, err)
				assert.Equal(t, hashType, a.HashType)
				assert.Equal(t, codeHash, a.CodeHash)
				assert.Equal(t, args, a.Args)
			}
		}
	}
}

func TestEncodeFullEmptyArgs(t *testing.T) {
	codeHash := MustParseHash(testCodeHash)
	s, err := EncodeFull(Mainnet, HashTypeType, codeHash, nil)
	require.NoError(t, err)

	a, err := Decode(s, Mainnet)
	require.NoError(t, err)
	require.Empty(t, a.Args)
	require.Equal(t, codeHash, a.CodeHash)
}

func TestEncodeShortEmptyArgs(t *testing.T) {
	_, err := EncodeShort(Mainnet, CodeIndexSecp256k1Single, nil)
	require.ErrorIs(t, err, ErrEmptyArgs)
}

func TestEncodeInvalidInputs(t *testing.T) {
	_, err := EncodeShort(Network(9), 0, []byte{1})
	require.ErrorIs(t, err, ErrUnknownNetwork)

	_, err = EncodeFull(Mainnet, HashType(7), Hash{}, []byte{1})
	require.ErrorIs(t, err, ErrInvalidHashType)

	_, err = Codec{Network: Mainnet}.EncodeFull(HashTypeType, Hash{}, []byte{1}, []byte{2})
	require.ErrorIs(t, err, ErrArgumentSegmentInvalid)

	_, err = NewCodec(Network(3), ArgsRaw)
	require.ErrorIs(t, err, ErrUnknownNetwork)

	_, err = NewCodec(Mainnet, ArgsEncoding(5))
	require.ErrorIs(t, err, ErrUnknownArgsEncoding)
}

func TestChecksumSensitivity(t *testing.T) {
	for _, tt := range []struct {
		addr    string
		network Network
	}{
		{shortMainnet, Mainnet},
		{shortTestnet, Testnet},
		{fullTypeMainnet, Mainnet},
	} {
		_, err := Decode(tt.addr, tt.network)
		require.NoError(t, err)

		for i := 0; i < len(tt.addr); i++ {
			for j := 0; j < len(bech32.Charset); j++ {
				c := bech32.Charset[j]
				if c == tt.addr[i] {
					continue
				}
				mutated := tt.addr[:i] + string(c) + tt.addr[i+1:]
				_, err := Decode(mutated, tt.network)
				require.Error(t, err, "mutation %q", mutated)
			}
		}
	}
}

func TestChecksumErrorKind(t *testing.T) {
	mutated := shortMainnet[:len(shortMainnet)-1] + "w"
	_, err := Decode(mutated, Mainnet)
	require.ErrorIs(t, err, ErrChecksumInvalid)
}

func TestBech32mChecksumRejected(t *testing.T) {
	// same payload, checksummed with the bech32m constant
	_, err := Decode("ckb1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jquj5z3w", Mainnet)
	require.ErrorIs(t, err, ErrChecksumInvalid)
}

func TestPrefixEnforcement(t *testing.T) {
	_, err := Decode(shortMainnet, Testnet)
	require.ErrorIs(t, err, ErrPrefixMismatch)

	_, err = Decode(shortTestnet, Mainnet)
	require.ErrorIs(t, err, ErrPrefixMismatch)

	_, err = Decode(fullTypeTestnet, Mainnet)
	require.ErrorIs(t, err, ErrPrefixMismatch)

	s := encodePayload(t, "bc", append([]byte{0x01, 0x00}, testArgs(t)...))
	_, err = Decode(s, Mainnet)
	require.ErrorIs(t, err, ErrPrefixMismatch)
}

func TestUppercaseAddress(t *testing.T) {
	a, err := Decode("CKB1QYQT8XAUPVM8837NV3GTC9X0EKKJ64VUD3JQFWYW5V", Mainnet)
	require.NoError(t, err)
	require.Equal(t, testArgsHex, hex.EncodeToString(a.Args))
}

func TestMalformedAddress(t *testing.T) {
	for _, s := range []string{
		"",
		"ckb",
		"ckb1",
		"ckb1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jqfwyw5V",
		"ckb1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jqfwyw5b",
	} {
		_, err := Decode(s, Mainnet)
		require.ErrorIs(t, err, ErrMalformedAddress, "input %q", s)
	}
}

func TestBitPaddingNonzero(t *testing.T) {
	// quintets 0b00000 0b00001: one zero byte then a set residual bit
	s, err := bech32.Encode(PrefixMainnet, []byte{0, 1}, bech32.Version0)
	require.NoError(t, err)
	_, err = Decode(s, Mainnet)
	require.ErrorIs(t, err, ErrBitPaddingNonzero)

	// eleven quintets are 55 bits: 6 bytes and 7 residual bits
	s, err = bech32.Encode(PrefixMainnet, make([]byte, 11), bech32.Version0)
	require.NoError(t, err)
	_, err = Decode(s, Mainnet)
	require.ErrorIs(t, err, ErrBitPaddingNonzero)
}

func TestFormatTagExhaustive(t *testing.T) {
	body := bytes.Repeat([]byte{0x11}, 40)
	for tag := 0; tag < 256; tag++ {
		s := encodePayload(t, PrefixMainnet, append([]byte{byte(tag)}, body...))
		a, err := Decode(s, Mainnet)

		switch FormatType(tag) {
		case FormatShort, FormatFullData, FormatFullType:
			require.NoError(t, err, "tag 0x%02x", tag)
			require.Equal(t, FormatType(tag), a.Format)
		default:
			require.ErrorIs(t, err, ErrUnknownFormatTag, "tag 0x%02x", tag)
			require.Nil(t, a)
		}
	}
}

func TestPayloadTooShort(t *testing.T) {
	for _, payload := range [][]byte{
		{},
		{byte(FormatShort)},
		{byte(FormatFullType)},
		append([]byte{byte(FormatFullData)}, make([]byte, 31)...),
	} {
		s := encodePayload(t, PrefixMainnet, payload)
		_, err := Decode(s, Mainnet)
		require.ErrorIs(t, err, ErrPayloadTooShort, "payload %x", payload)
	}
}

func TestShortAddressWithoutArgsDecodes(t *testing.T) {
	// decoding is lenient where encoding is not
	s := encodePayload(t, PrefixMainnet, []byte{byte(FormatShort), 0x00})
	a, err := Decode(s, Mainnet)
	require.NoError(t, err)
	require.Empty(t, a.Args)
}

func TestSegmentBoundaries(t *testing.T) {
	codeHash := MustParseHash(testCodeHash)

	for _, n := range []int{0, 257, 1000} {
		_, err := EncodeFullSegments(Mainnet, HashTypeType, codeHash, [][]byte{make([]byte, n)})
		require.ErrorIs(t, err, ErrArgumentSegmentInvalid, "length %d", n)
	}

	codec := Codec{Network: Mainnet, Args: ArgsSegmented}
	for _, n := range []int{1, 2, 255, 256} {
		seg := bytes.Repeat([]byte{byte(n)}, n)
		s, err := EncodeFullSegments(Mainnet, HashTypeType, codeHash, [][]byte{seg})
		require.NoError(t, err, "length %d", n)

		a, err := codec.Decode(s)
		require.NoError(t, err)
		require.Equal(t, [][]byte{seg}, a.Segments)
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	codeHash := MustParseHash(testCodeHash)
	segments := [][]byte{
		testArgs(t),
		{0x01},
		bytes.Repeat([]byte{0xee}, 256),
		bytes.Repeat([]byte{0x42}, 100),
	}
	codec := Codec{Network: Testnet, Args: ArgsSegmented}

	s, err := codec.EncodeFull(HashTypeData, codeHash, segments...)
	require.NoError(t, err)

	a, err := codec.Decode(s)
	require.NoError(t, err)
	require.Equal(t, HashTypeData, a.HashType)
	require.Equal(t, codeHash, a.CodeHash)
	require.Equal(t, segments, a.Segments)

	// a raw decoder sees the framed bytes
	raw, err := Decode(s, Testnet)
	require.NoError(t, err)
	require.Nil(t, raw.Segments)
	require.Equal(t, byte(20), raw.Args[0])
	require.Equal(t, byte(0x00), raw.Args[20+1+1+1])
}

func TestSegmentTruncated(t *testing.T) {
	codeHash := MustParseHash(testCodeHash)
	// segment claims 5 bytes, carries 3
	s, err := EncodeFull(Mainnet, HashTypeType, codeHash, []byte{5, 1, 2, 3})
	require.NoError(t, err)

	_, err = Codec{Network: Mainnet, Args: ArgsSegmented}.Decode(s)
	require.ErrorIs(t, err, ErrArgumentSegmentInvalid)
}

func TestNetworkFromAddress(t *testing.T) {
	n, err := NetworkFromAddress(shortMainnet)
	require.NoError(t, err)
	require.Equal(t, Mainnet, n)

	n, err = NetworkFromAddress("CKT1QYQT8XAUPVM8837NV3GTC9X0EKKJ64VUD3JQ5T63CS")
	require.NoError(t, err)
	require.Equal(t, Testnet, n)

	_, err = NetworkFromAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	require.ErrorIs(t, err, ErrUnknownNetwork)

	_, err = NetworkFromAddress("nope")
	require.ErrorIs(t, err, ErrMalformedAddress)
}

func TestParseHelpers(t *testing.T) {
	for _, s := range []string{"mainnet", "ckb", "MAINNET"} {
		n, err := ParseNetwork(s)
		require.NoError(t, err)
		require.Equal(t, Mainnet, n)
	}
	_, err := ParseNetwork("devnet")
	require.ErrorIs(t, err, ErrUnknownNetwork)

	h, err := ParseHashType("Type")
	require.NoError(t, err)
	require.Equal(t, HashTypeType, h)
	_, err = ParseHashType("data1")
	require.ErrorIs(t, err, ErrInvalidHashType)

	e, err := ParseArgsEncoding("")
	require.NoError(t, err)
	require.Equal(t, ArgsRaw, e)
	_, err = ParseArgsEncoding("base64")
	require.ErrorIs(t, err, ErrUnknownArgsEncoding)

	hash, err := ParseHash(testCodeHash[2:])
	require.NoError(t, err)
	require.Equal(t, testCodeHash, hash.String())
	_, err = ParseHash("0x1234")
	require.ErrorIs(t, err, ErrInvalidCodeHash)
	_, err = ParseHash("0x" + strings.Repeat("0", 62) + "zz")
	require.ErrorIs(t, err, ErrInvalidCodeHash)
}

func TestAddressJSON(t *testing.T) {
	a, err := Decode(fullTypeMainnet, Mainnet)
	require.NoError(t, err)

	b, err := json.Marshal(a)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"network": "mainnet",
		"format": "full_type",
		"hash_type": "type",
		"code_hash": "`+testCodeHash+`",
		"args": "0x`+testArgsHex+`"
	}`, string(b))

	s, err := Decode(shortMainnet, Mainnet)
	require.NoError(t, err)
	b, err = json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"network": "mainnet",
		"format": "short",
		"code_index": 0,
		"args": "0x`+testArgsHex+`"
	}`, string(b))
}

func TestScriptJSON(t *testing.T) {
	script := Script{
		CodeHash: MustParseHash(testCodeHash),
		HashType: HashTypeType,
		Args:     testArgs(t),
	}
	b, err := json.Marshal(script)
	require.NoError(t, err)

	var back Script
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, script, back)
}

func TestConcurrentCodecUse(t *testing.T) {
	args := testArgs(t)
	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				s, err := EncodeShort(Mainnet, 0, args)
				if err != nil {
					done <- err
					return
				}
				if s != shortMainnet {
					done <- fmt.Errorf("got %s", s)
					return
				}
				if _, err := Decode(s, Mainnet); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 16; i++ {
		require.NoError(t, <-done)
	}
}
