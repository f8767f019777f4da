// Copyright 2025 The GlowGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/glowgrid/DimmerWorker/model"
)

// Server exposes the read-only operator surface over HTTP:
// worker status, health and prometheus metrics.
type Server interface {
	// Run the HTTP server until the given context is canceled.
	Run(ctx context.Context) error
}

// API contains what the server asks of the worker service.
type API interface {
	// Status returns a read-only snapshot of the worker.
	Status() model.WorkerStatus
}

type Config struct {
	Host string
	Port int
}

// NewServer creates a new server.
func NewServer(conf Config, api API, log zerolog.Logger) (Server, error) {
	return &server{
		Config:     conf,
		log:        log.With().Str("component", "server").Logger(),
		requestLog: log.With().Str("component", "server.requests").Logger(),
		api:        api,
	}, nil
}

type server struct {
	Config
	log        zerolog.Logger
	requestLog zerolog.Logger
	api        API
}

// Run the HTTP server until the given context is canceled.
func (s *server) Run(ctx context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", s.handleHealth)
	e.GET("/api/v1/status", s.handleStatus)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	s.log.Info().Str("address", addr).Msg("HTTP server listening")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.log.Warn().Err(err).Msg("failed to serve HTTP")
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for context cancellation
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
