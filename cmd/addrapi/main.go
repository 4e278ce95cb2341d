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

// addrapi serves the address codec over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ckbaddr/cfg"
	"ckbaddr/config"
	"ckbaddr/log"
	"ckbaddr/ratelimit"
	"ckbaddr/registry"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", config.CONFIG_FILE, "configuration file")
	flag.Parse()

	if _, err := os.Stat(*configPath); errors.Is(err, os.ErrNotExist) {
		if err := cfg.WriteDefault(*configPath); err != nil {
			log.Fatal(err)
		}
		log.Warnf("could not open config %s: blank configuration created", *configPath)
	}

	conf, err := cfg.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	log.LogLevel = conf.LogLevel

	codec, err := conf.Codec()
	if err != nil {
		log.Fatal(err)
	}

	reg := registry.Default()
	if conf.RegistryFile != "" {
		reg, err = registry.Load(conf.RegistryFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := ratelimit.New()
	go limiter.Run(ctx, ratelimit.RESET_INTERVAL)

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(&server{
		codec:   codec,
		reg:     reg,
		limiter: limiter,
	}, conf.Api.TrustedProxies)

	srv := &http.Server{
		Addr:         net.JoinHostPort(conf.Api.Host, strconv.FormatUint(uint64(conf.Api.Port), 10)),
		Handler:      r,
		ReadTimeout:  config.TIMEOUT * time.Second,
		WriteTimeout: config.TIMEOUT * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TIMEOUT*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Err(err)
		}
	}()

	log.Infof("API listening on %s (%s, %s args)", srv.Addr, codec.Network, codec.Args)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Info("API stopped")
}
