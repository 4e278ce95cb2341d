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

package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"ckbaddr/address"
	"ckbaddr/ckbhash"
	"ckbaddr/registry"
	"ckbaddr/util"
)

type encoded struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

func cmdShort(out io.Writer, args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("short", flag.ContinueOnError)
	common.register(fs, false)
	index := fs.Uint("index", uint(address.CodeIndexSecp256k1Single), "code index of the registered script")

	env, err := parse(fs, &common, args, out)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: short expects one args value", errUsage)
	}
	if *index > 0xff {
		return fmt.Errorf("code index %d out of range", *index)
	}

	lockArgs, err := util.ParseHex(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("args: %w", err)
	}

	addr, err := env.codec.EncodeShort(address.CodeIndex(*index), lockArgs)
	if err != nil {
		return err
	}
	env.print(encoded{Address: addr, Network: env.codec.Network.String()})
	return nil
}

func cmdFull(out io.Writer, args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("full", flag.ContinueOnError)
	common.register(fs, true)
	hashType := fs.String("hash-type", "type", "hash type: data or type")

	env, err := parse(fs, &common, args, out)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: full expects a code hash", errUsage)
	}

	ht, err := address.ParseHashType(*hashType)
	if err != nil {
		return err
	}
	codeHash, err := address.ParseHash(fs.Arg(0))
	if err != nil {
		return err
	}

	var segments [][]byte
	for _, a := range fs.Args()[1:] {
		b, err := util.ParseHex(a)
		if err != nil {
			return fmt.Errorf("args: %w", err)
		}
		segments = append(segments, b)
	}

	addr, err := env.codec.EncodeFull(ht, codeHash, segments...)
	if err != nil {
		return err
	}
	env.print(encoded{Address: addr, Network: env.codec.Network.String()})
	return nil
}

func cmdDecode(out io.Writer, args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	common.register(fs, true)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: decode expects one address", errUsage)
	}
	addr := fs.Arg(0)

	// without -net the prefix decides, and must still be a known one
	if common.network == "" {
		network, err := address.NetworkFromAddress(addr)
		if err != nil {
			return err
		}
		common.network = network.String()
	}

	env, err := common.environment(out)
	if err != nil {
		return err
	}

	decoded, err := env.codec.Decode(addr)
	if err != nil {
		return err
	}
	env.print(decoded)
	return nil
}

func cmdExpand(out io.Writer, args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("expand", flag.ContinueOnError)
	common.register(fs, false)

	env, err := parse(fs, &common, args, out)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: expand expects one address", errUsage)
	}

	script, err := env.reg.Expand(fs.Arg(0))
	if err != nil {
		return err
	}
	env.print(script)
	return nil
}

type multisigResult struct {
	Address string `json:"address"`
	Args    string `json:"args"`
	Script  string `json:"multisig_script"`
}

func cmdMultisig(out io.Writer, args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("multisig", flag.ContinueOnError)
	common.register(fs, false)
	requireFirstN := fs.Uint("r", 0, "number of keys that must sign first")
	threshold := fs.Uint("m", 1, "signature threshold")
	since := fs.String("since", "", "since lock (uint64); yields a full address")

	env, err := parse(fs, &common, args, out)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: multisig expects pubkey hashes", errUsage)
	}
	if *requireFirstN > 0xff || *threshold > 0xff {
		return fmt.Errorf("-r and -m must fit in one byte")
	}

	var hashes [][]byte
	for _, a := range fs.Args() {
		b, err := util.ParseHex(a)
		if err != nil {
			return fmt.Errorf("pubkey hash: %w", err)
		}
		hashes = append(hashes, b)
	}

	script, err := ckbhash.MultisigScript(uint8(*requireFirstN), uint8(*threshold), hashes)
	if err != nil {
		return err
	}

	res := multisigResult{Script: util.ToHex(script)}
	if *since == "" {
		lockArgs, err := ckbhash.MultisigArgs(uint8(*requireFirstN), uint8(*threshold), hashes)
		if err != nil {
			return err
		}
		res.Args = util.ToHex(lockArgs)
		res.Address, err = env.codec.EncodeShort(address.CodeIndexSecp256k1Multi, lockArgs)
		if err != nil {
			return err
		}
	} else {
		s, err := strconv.ParseUint(*since, 0, 64)
		if err != nil {
			return fmt.Errorf("since: %w", err)
		}
		lockArgs, err := ckbhash.MultisigArgsWithSince(uint8(*requireFirstN), uint8(*threshold), hashes, s)
		if err != nil {
			return err
		}
		res.Args = util.ToHex(lockArgs)

		entry, err := env.reg.Lookup(env.codec.Network, address.CodeIndexSecp256k1Multi)
		if err != nil {
			return err
		}
		res.Address, err = address.EncodeFull(env.codec.Network, entry.HashType, entry.CodeHash, lockArgs)
		if err != nil {
			return err
		}
	}

	env.print(res)
	return nil
}

func cmdRegistry(out io.Writer, args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	common.register(fs, false)

	env, err := parse(fs, &common, args, out)
	if err != nil {
		return err
	}

	entries := []registry.Entry{}
	for _, e := range env.reg.Entries() {
		if common.network != "" && e.Network != env.codec.Network {
			continue
		}
		entries = append(entries, e)
	}
	env.print(entries)
	return nil
}
