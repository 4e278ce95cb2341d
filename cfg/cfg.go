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

package cfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ckbaddr/address"
	"ckbaddr/config"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel uint8 `envconfig:"LOG_LEVEL"`

	// "mainnet" or "testnet"
	Network string `envconfig:"NETWORK"`
	// "raw" or "segmented"
	ArgsEncoding string `envconfig:"ARGS_ENCODING"`

	// optional JSON registry replacing the built-in one
	RegistryFile string `envconfig:"REGISTRY_FILE"`

	Api Api
}

type Api struct {
	Host           string   `envconfig:"HOST"`
	Port           uint16   `envconfig:"PORT"`
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

func Default() Config {
	return Config{
		Network:      "mainnet",
		ArgsEncoding: "raw",
		Api: Api{
			Host:           config.API_HOST,
			Port:           config.API_PORT,
			TrustedProxies: []string{"127.0.0.1"},
		},
	}
}

// Load reads the JSON file at path on top of the defaults, then applies the
// CKBADDR_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()

	fd, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(fd, &c); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	if err := envconfig.Process(config.ENV_PREFIX, &c); err != nil {
		return Config{}, fmt.Errorf("failed to process env var: %w", err)
	}

	if _, err := c.Codec(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// WriteDefault stores the default configuration at path.
func WriteDefault(path string) error {
	blankCfg, err := json.MarshalIndent(Default(), "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, blankCfg, 0o644)
}

// Codec returns the address codec selected by the configuration.
func (c Config) Codec() (address.Codec, error) {
	network, err := address.ParseNetwork(c.Network)
	if err != nil {
		return address.Codec{}, err
	}
	args, err := address.ParseArgsEncoding(c.ArgsEncoding)
	if err != nil {
		return address.Codec{}, err
	}
	return address.NewCodec(network, args)
}
