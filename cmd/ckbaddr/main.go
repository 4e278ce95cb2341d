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

// ckbaddr encodes, decodes and expands CKB addresses.
//
// Usage:
//
//	ckbaddr short [-net n] [-index i] <args>               Encode a short address
//	ckbaddr full [-net n] [-hash-type t] [-segmented] <code-hash> [args...]
//	                                                       Encode a full address
//	ckbaddr decode [-net n] [-segmented] <address>         Decode an address
//	ckbaddr expand <address>                               Expand a short address to its script
//	ckbaddr multisig [-net n] [-r n] [-m n] [-since s] <pubkey-hash>...
//	                                                       Build a multisig lock address
//	ckbaddr registry [-net n]                              Print the script registry
//	ckbaddr version                                        Print version info
//
// Every command accepts -config <file>; settings there and in CKBADDR_*
// environment variables provide the defaults of -net and -segmented.
// Hex arguments may carry a 0x prefix.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ckbaddr/address"
	"ckbaddr/cfg"
	"ckbaddr/config"
	"ckbaddr/log"
	"ckbaddr/registry"
	"ckbaddr/util"
)

var errUsage = errors.New("usage")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Err(err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: ckbaddr <command> [flags] [arguments]

Commands:
  short     encode a short address
  full      encode a full address
  decode    decode an address
  expand    expand a short address to its lock script
  multisig  build a multisig lock address
  registry  print the script registry
  version   print version info`)
}

type commandFunc func(out io.Writer, args []string) error

var commands = map[string]commandFunc{
	"short":    cmdShort,
	"full":     cmdFull,
	"decode":   cmdDecode,
	"expand":   cmdExpand,
	"multisig": cmdMultisig,
	"registry": cmdRegistry,
}

// environment carries what every command shares once flags are parsed.
type environment struct {
	out   io.Writer
	cfg   cfg.Config
	codec address.Codec
	reg   *registry.Registry
}

type commonFlags struct {
	configPath string
	network    string
	segmented  bool
}

func (c *commonFlags) register(fs *flag.FlagSet, withSegmented bool) {
	fs.StringVar(&c.configPath, "config", config.CONFIG_FILE, "configuration file")
	fs.StringVar(&c.network, "net", "", "network: mainnet or testnet (default from config)")
	if withSegmented {
		fs.BoolVar(&c.segmented, "segmented", false, "length-prefixed args segments")
	}
}

func (c *commonFlags) environment(out io.Writer) (*environment, error) {
	conf, err := cfg.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	log.LogLevel = conf.LogLevel

	if c.network != "" {
		conf.Network = c.network
	}
	if c.segmented {
		conf.ArgsEncoding = address.ArgsSegmented.String()
	}
	codec, err := conf.Codec()
	if err != nil {
		return nil, err
	}

	reg := registry.Default()
	if conf.RegistryFile != "" {
		reg, err = registry.Load(conf.RegistryFile)
		if err != nil {
			return nil, err
		}
	}

	log.Debugf("network %s, args encoding %s", codec.Network, codec.Args)

	return &environment{
		out:   out,
		cfg:   conf,
		codec: codec,
		reg:   reg,
	}, nil
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(out, "ckbaddr %s\n", config.VERSION)
		return nil
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return cmd(out, args[1:])
}

// parse parses the command flags and loads the shared environment.
func parse(fs *flag.FlagSet, common *commonFlags, args []string, out io.Writer) (*environment, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return common.environment(out)
}

func (env *environment) print(v any) {
	fmt.Fprintln(env.out, util.DumpJson(v))
}
