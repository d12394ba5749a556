// server/server.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package server provides read-only HTTP access to a linked CIFP
// database.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mmp/cifp/aviation"
	"github.com/mmp/cifp/log"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultPort = 6424

// Number of successive ports tried if the requested one is in use.
const portAttempts = 10

type Config struct {
	// CacheSize is the maximum number of responses to cache; zero
	// disables the cache.
	CacheSize int
	CacheTTL  time.Duration
	// Registerer is used for the server's metrics; the default
	// Prometheus registry is used if it is nil.
	Registerer prometheus.Registerer
	// Ready, if non-nil, is called with the server's URL once it is
	// listening.
	Ready func(url string)
}

type Server struct {
	db        *aviation.Database
	lg        *log.Logger
	cache     *expirable.LRU[string, []byte]
	metrics   *Metrics
	router    chi.Router
	startTime time.Time
	port      int
	ready     func(url string)
}

func New(db *aviation.Database, config Config, lg *log.Logger) (*Server, error) {
	metrics, err := NewMetrics(config.Registerer)
	if err != nil {
		return nil, err
	}
	metrics.SetEntityCounts(db.Stats())

	s := &Server{
		db:        db,
		lg:        lg,
		metrics:   metrics,
		startTime: time.Now(),
		ready:     config.Ready,
	}
	if config.CacheSize > 0 {
		ttl := config.CacheTTL
		if ttl == 0 {
			ttl = 10 * time.Minute
		}
		s.cache = expirable.NewLRU[string, []byte](config.CacheSize, nil, ttl)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// listen opens a listener at addr; if the port is in use, the following
// ports are tried in turn.
func listen(addr string) (net.Listener, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	if port == 0 {
		return net.Listen("tcp", addr)
	}

	for i := range portAttempts {
		l, lerr := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port+i)))
		if lerr == nil {
			return l, nil
		}
		err = lerr
	}
	return nil, err
}

// ListenAndServe serves HTTP requests at addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := listen(addr)
	if err != nil {
		return err
	}
	s.port = l.Addr().(*net.TCPAddr).Port
	s.lg.Info("launching HTTP server", "addr", l.Addr().String())
	if s.ready != nil {
		s.ready("http://" + l.Addr().String())
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
