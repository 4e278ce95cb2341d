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

package config

const VERSION = "0.3.0"

// default configuration file, relative to the working directory
const CONFIG_FILE = "config.json"

// prefix of the environment variables overriding the configuration
const ENV_PREFIX = "CKBADDR"

const API_HOST = "0.0.0.0"
const API_PORT = 8114

const MAX_REQUEST_SIZE = 64 * 1024 // 64 KiB

// in seconds
const TIMEOUT = 5

// args longer than this are refused by the API
const MAX_ARGS_SIZE = 4096
