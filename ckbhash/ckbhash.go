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

// Package ckbhash derives lock args: the personalized blake2b-256 hash used
// on CKB and the 20 byte blake160 digests built from it.
package ckbhash

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dchest/blake2b"
)

const Personalization = "ckb-default-hash"

const Blake160Size = 20

var (
	ErrInvalidThreshold  = errors.New("invalid multisig threshold")
	ErrInvalidRequireN   = errors.New("require_first_n exceeds threshold")
	ErrTooManyKeys       = errors.New("too many multisig keys")
	ErrInvalidPubkeyHash = errors.New("pubkey hash must be 20 bytes")
)

var hashConfig = &blake2b.Config{
	Size:   32,
	Person: []byte(Personalization),
}

func Sum256(d []byte) [32]byte {
	h, err := blake2b.New(hashConfig)
	if err != nil {
		// the config is constant and valid
		panic(err)
	}
	h.Write(d)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func Blake160(d []byte) [Blake160Size]byte {
	sum := Sum256(d)
	return [Blake160Size]byte(sum[:Blake160Size])
}

// MultisigScript serializes the multisig config
// [0x00, requireFirstN, threshold, len(pubkeyHashes)] ++ pubkeyHashes.
func MultisigScript(requireFirstN, threshold uint8, pubkeyHashes [][]byte) ([]byte, error) {
	if len(pubkeyHashes) > 255 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyKeys, len(pubkeyHashes))
	}
	if threshold == 0 || int(threshold) > len(pubkeyHashes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidThreshold, threshold, len(pubkeyHashes))
	}
	if requireFirstN > threshold {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRequireN, requireFirstN, threshold)
	}

	script := make([]byte, 0, 4+Blake160Size*len(pubkeyHashes))
	script = append(script, 0, requireFirstN, threshold, byte(len(pubkeyHashes)))
	for i, h := range pubkeyHashes {
		if len(h) != Blake160Size {
			return nil, fmt.Errorf("%w: key %d has %d bytes", ErrInvalidPubkeyHash, i, len(h))
		}
		script = append(script, h...)
	}
	return script, nil
}

// MultisigArgs returns blake160 of the multisig script.
func MultisigArgs(requireFirstN, threshold uint8, pubkeyHashes [][]byte) ([]byte, error) {
	script, err := MultisigScript(requireFirstN, threshold, pubkeyHashes)
	if err != nil {
		return nil, err
	}
	h := Blake160(script)
	return h[:], nil
}

// MultisigArgsWithSince appends the little-endian since lock to the args.
func MultisigArgsWithSince(requireFirstN, threshold uint8, pubkeyHashes [][]byte, since uint64) ([]byte, error) {
	args, err := MultisigArgs(requireFirstN, threshold, pubkeyHashes)
	if err != nil {
		return nil, err
	}
	return binary.LittleEndian.AppendUint64(args, since), nil
}
