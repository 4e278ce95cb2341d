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
	"errors"
	"net/http"

	"ckbaddr/address"
	"ckbaddr/config"
	"ckbaddr/log"
	"ckbaddr/ratelimit"
	"ckbaddr/registry"
	"ckbaddr/util"

	"github.com/gin-gonic/gin"
)

const (
	ERR_INTERNAL = iota
	ERR_CHECKSUM
	ERR_PREFIX
	ERR_PADDING
	ERR_FORMAT_TAG
	ERR_SEGMENT
	ERR_LOOKUP_MISS
	ERR_NOT_SHORT
	ERR_BAD_REQUEST
	ERR_RATE_LIMITED
)

type server struct {
	codec   address.Codec
	reg     *registry.Registry
	limiter *ratelimit.Limiter
}

type shortRequest struct {
	Network   string `json:"network"`
	CodeIndex *uint8 `json:"code_index"`
	Args      string `json:"args" binding:"required"`
}

type fullRequest struct {
	Network  string   `json:"network"`
	HashType string   `json:"hash_type" binding:"required"`
	CodeHash string   `json:"code_hash" binding:"required"`
	Args     string   `json:"args"`
	Segments []string `json:"segments"`
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, address.ErrChecksumInvalid):
		return ERR_CHECKSUM
	case errors.Is(err, address.ErrPrefixMismatch), errors.Is(err, address.ErrUnknownNetwork):
		return ERR_PREFIX
	case errors.Is(err, address.ErrBitPaddingNonzero):
		return ERR_PADDING
	case errors.Is(err, address.ErrUnknownFormatTag):
		return ERR_FORMAT_TAG
	case errors.Is(err, address.ErrArgumentSegmentInvalid):
		return ERR_SEGMENT
	case errors.Is(err, registry.ErrRegistryLookupMiss):
		return ERR_LOOKUP_MISS
	case errors.Is(err, registry.ErrNotShortAddress):
		return ERR_NOT_SHORT
	default:
		return ERR_BAD_REQUEST
	}
}

func sendError(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": msg,
		},
	})
}

// rejectAddress answers a request carrying an unusable address and charges
// the client for it.
func (s *server) rejectAddress(c *gin.Context, err error) {
	s.limiter.CanDoAction(c.ClientIP(), ratelimit.ACTION_INVALID_ADDRESS)
	log.Debugf("%s: rejected address: %s", c.ClientIP(), err)
	sendError(c, http.StatusBadRequest, errorCode(err), err.Error())
}

func (s *server) rateLimit(score uint32) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.CanDoAction(c.ClientIP(), score) {
			sendError(c, http.StatusTooManyRequests, ERR_RATE_LIMITED, "rate limited")
			return
		}
		c.Next()
	}
}

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MAX_REQUEST_SIZE)
	c.Next()
}

// codecFor returns the server codec, switched to the requested network when
// one is given.
func (s *server) codecFor(network string) (address.Codec, error) {
	if network == "" {
		return s.codec, nil
	}
	n, err := address.ParseNetwork(network)
	if err != nil {
		return address.Codec{}, err
	}
	codec := s.codec
	codec.Network = n
	return codec, nil
}

func newRouter(s *server, trustedProxies []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		log.Warn("invalid trusted proxies:", err)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.GET("/info", func(c *gin.Context) {
		c.Header("Cache-Control", "max-age=3600")
		c.JSON(http.StatusOK, gin.H{
			"version":       config.VERSION,
			"network":       s.codec.Network.String(),
			"args_encoding": s.codec.Args.String(),
		})
	})

	r.GET("/registry", func(c *gin.Context) {
		c.Header("Cache-Control", "max-age=3600")
		c.JSON(http.StatusOK, s.reg.Entries())
	})

	r.GET("/decode/:addr", s.rateLimit(ratelimit.ACTION_DECODE), func(c *gin.Context) {
		addr := c.Param("addr")

		network := c.Query("network")
		if network == "" {
			n, err := address.NetworkFromAddress(addr)
			if err != nil {
				s.rejectAddress(c, err)
				return
			}
			network = n.String()
		}
		codec, err := s.codecFor(network)
		if err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}

		decoded, err := codec.Decode(addr)
		if err != nil {
			s.rejectAddress(c, err)
			return
		}
		c.JSON(http.StatusOK, decoded)
	})

	r.GET("/expand/:addr", s.rateLimit(ratelimit.ACTION_DECODE), func(c *gin.Context) {
		script, err := s.reg.Expand(c.Param("addr"))
		if err != nil {
			s.rejectAddress(c, err)
			return
		}
		c.JSON(http.StatusOK, script)
	})

	enc := r.Group("/encode", limitBody, s.rateLimit(ratelimit.ACTION_ENCODE))

	enc.POST("/short", func(c *gin.Context) {
		var req shortRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}
		codec, err := s.codecFor(req.Network)
		if err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}
		args, err := util.ParseHex(req.Args)
		if err != nil || len(args) > config.MAX_ARGS_SIZE {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, "invalid args")
			return
		}
		index := address.CodeIndexSecp256k1Single
		if req.CodeIndex != nil {
			index = address.CodeIndex(*req.CodeIndex)
		}

		addr, err := codec.EncodeShort(index, args)
		if err != nil {
			sendError(c, http.StatusBadRequest, errorCode(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": addr})
	})

	enc.POST("/full", func(c *gin.Context) {
		var req fullRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}
		codec, err := s.codecFor(req.Network)
		if err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}
		hashType, err := address.ParseHashType(req.HashType)
		if err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}
		codeHash, err := address.ParseHash(req.CodeHash)
		if err != nil {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, err.Error())
			return
		}

		// segments select the segmented encoding for this request
		var args [][]byte
		if req.Segments != nil {
			codec.Args = address.ArgsSegmented
			for _, seg := range req.Segments {
				b, err := util.ParseHex(seg)
				if err != nil {
					sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, "invalid segment")
					return
				}
				args = append(args, b)
			}
		} else {
			codec.Args = address.ArgsRaw
			b, err := util.ParseHex(req.Args)
			if err != nil {
				sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, "invalid args")
				return
			}
			args = [][]byte{b}
		}
		size := 0
		for _, a := range args {
			size += len(a)
		}
		if size > config.MAX_ARGS_SIZE {
			sendError(c, http.StatusBadRequest, ERR_BAD_REQUEST, "invalid args")
			return
		}

		addr, err := codec.EncodeFull(hashType, codeHash, args...)
		if err != nil {
			sendError(c, http.StatusBadRequest, errorCode(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": addr})
	})

	return r
}
