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

import "errors"

var (
	ErrChecksumInvalid        = errors.New("invalid checksum")
	ErrPrefixMismatch         = errors.New("address prefix does not match network")
	ErrBitPaddingNonzero      = errors.New("non-zero padding bits")
	ErrUnknownFormatTag       = errors.New("unknown format type")
	ErrArgumentSegmentInvalid = errors.New("invalid argument segment")
	ErrPayloadTooShort        = errors.New("payload too short")
	ErrMalformedAddress       = errors.New("malformed address")
	ErrEmptyArgs              = errors.New("args must not be empty")
	ErrUnknownNetwork         = errors.New("unknown network")
	ErrInvalidHashType        = errors.New("invalid hash type")
	ErrInvalidCodeHash        = errors.New("invalid code hash")
	ErrUnknownArgsEncoding    = errors.New("unknown args encoding")
	ErrShortAddress           = errors.New("short address has no explicit script")
)
