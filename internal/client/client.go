// Package client builds open requests on the remote machine and delivers
// them to the workstation server.
package client

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/matst80/code-open/internal/proto"
)

// ConnectError reports a server that could not be reached.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return "failed to establish a connection to the server -> " + e.Addr + ": " + e.Err.Error()
}
func (e *ConnectError) Unwrap() error { return e.Err }

// NewOpenRequest describes dir on this host.
func NewOpenRequest(dir string) (proto.Request, error) {
	host, err := os.Hostname()
	if err != nil {
		return proto.Request{}, fmt.Errorf("hostname: %w", err)
	}
	return proto.NewOpen(proto.OpenInfo{OriginHost: host, RemoteDirPath: dir}), nil
}

// Send dials addr, writes req as a single frame and closes the
// connection. There is no reply.
func Send(ctx context.Context, addr string, req proto.Request) error {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &ConnectError{Addr: addr, Err: err}
	}
	defer c.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.SetWriteDeadline(deadline)
	}
	if err := proto.Write(c, req); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}
	return nil
}
