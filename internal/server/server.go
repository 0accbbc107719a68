// Package server accepts open requests over TCP and hands them to the
// editor, one connection at a time.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/code-open/internal/alias"
	"github.com/matst80/code-open/internal/obs"
	"github.com/matst80/code-open/internal/proto"
	"github.com/matst80/code-open/internal/ratelimit"
)

// Opener launches the editor for a resolved request. It must not block
// on the editor process itself.
type Opener interface {
	Open(ctx context.Context, info proto.OpenInfo) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, info proto.OpenInfo) error

func (f OpenerFunc) Open(ctx context.Context, info proto.OpenInfo) error { return f(ctx, info) }

// BindError reports a listener that could not be bound.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string { return "bind " + e.Addr + ": " + e.Err.Error() }
func (e *BindError) Unwrap() error { return e.Err }

// AcceptError reports a listener failure unrelated to a single peer.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string { return "accept: " + e.Err.Error() }
func (e *AcceptError) Unwrap() error { return e.Err }

// Config configures a Server.
type Config struct {
	Table  alias.Table
	Opener Opener
	// ReadTimeout bounds the time a peer has to deliver its frame. Zero
	// means no deadline.
	ReadTimeout time.Duration
	// Limiter may be nil.
	Limiter *ratelimit.Limiter
}

// Server runs the accept loop. Connections are decoded and dispatched
// strictly in order; the next Accept happens only after the previous
// request's Open returned.
type Server struct {
	cfg Config

	ready   atomic.Bool
	closing atomic.Bool

	mu    sync.Mutex
	stats Stats
}

func New(cfg Config) *Server {
	if cfg.Table == nil {
		cfg.Table = alias.Table{}
	}
	return &Server{cfg: cfg}
}

// Listen binds addr. Failures are *BindError.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return ln, nil
}

// Serve accepts on ln until ctx is cancelled (returns nil) or the
// listener fails (returns *AcceptError). ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() {
		s.closing.Store(true)
		_ = ln.Close()
	})
	defer stop()

	s.ready.Store(true)
	defer s.ready.Store(false)
	obs.Info("server.ready", obs.Fields{"addr": ln.Addr().String()})

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				obs.Error("accept.timeout", obs.Fields{"err": err})
				continue
			}
			return &AcceptError{Err: err}
		}
		s.handleConn(ctx, c)
	}
}

// handleConn decodes one request from c and dispatches it. Every failure
// is logged and counted; none of them stop the loop.
func (s *Server) handleConn(ctx context.Context, c net.Conn) {
	defer c.Close()
	start := time.Now()
	connID := uuid.NewString()
	remote := c.RemoteAddr().String()
	obs.ConnectionsTotal.Inc()
	obs.Debug("conn.accepted", obs.Fields{"conn": connID, "remote": remote})

	if s.cfg.ReadTimeout > 0 {
		_ = c.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	// Cancellation unblocks a pending read even when no read timeout is set.
	stop := context.AfterFunc(ctx, func() { _ = c.SetDeadline(time.Now()) })
	defer stop()

	req, err := proto.Decode[proto.Request](c)
	if err != nil {
		if ctx.Err() != nil {
			obs.Debug("conn.shutdown", obs.Fields{"conn": connID, "remote": remote})
			return
		}
		obs.Error("conn.decode", obs.Fields{"conn": connID, "remote": remote, "err": err})
		obs.ErrorsTotal.WithLabelValues("decode").Inc()
		s.count(func(st *Stats) { st.DecodeErrors++ })
		return
	}
	obs.RequestsTotal.WithLabelValues(req.Kind.String()).Inc()

	if err := s.dispatch(ctx, connID, req); err != nil {
		obs.Error("open.dispatch", obs.Fields{"conn": connID, "err": err})
		return
	}
	obs.DispatchSeconds.Observe(time.Since(start).Seconds())
}

func (s *Server) dispatch(ctx context.Context, connID string, req proto.Request) error {
	switch req.Kind {
	case proto.KindOpen:
		return s.open(ctx, connID, *req.Open)
	default:
		return fmt.Errorf("unhandled request kind %s", req.Kind)
	}
}

func (s *Server) open(ctx context.Context, connID string, info proto.OpenInfo) error {
	resolved := s.cfg.Table.Resolve(info)
	if resolved.OriginHost != info.OriginHost {
		obs.AliasResolutionsTotal.WithLabelValues("hit").Inc()
	} else {
		obs.AliasResolutionsTotal.WithLabelValues("miss").Inc()
	}
	fields := obs.Fields{"conn": connID, "origin": info.OriginHost, "host": resolved.OriginHost, "path": resolved.RemoteDirPath}

	if !s.cfg.Limiter.Allow(resolved.OriginHost) {
		obs.Warn("open.rate_limited", fields)
		obs.ErrorsTotal.WithLabelValues("rate_limited").Inc()
		s.count(func(st *Stats) { st.RateLimited++ })
		return nil
	}

	obs.Info("open", fields)
	if err := s.cfg.Opener.Open(ctx, resolved); err != nil {
		obs.ErrorsTotal.WithLabelValues("spawn").Inc()
		s.count(func(st *Stats) { st.SpawnErrors++ })
		return err
	}
	s.count(func(st *Stats) {
		st.Opens++
		st.LastOpen = &resolved
		st.LastOpenAt = time.Now().UTC()
	})
	return nil
}

// IsReady reports whether the accept loop is running.
func (s *Server) IsReady() bool { return s.ready.Load() && !s.closing.Load() }

// IsClosing reports whether shutdown has begun.
func (s *Server) IsClosing() bool { return s.closing.Load() }
