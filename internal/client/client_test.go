package client

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matst80/code-open/internal/proto"
	"github.com/mitchellh/go-homedir"
)

func TestSendWritesOneFrame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	got := make(chan proto.Request, 1)
	errs := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			errs <- err
			return
		}
		defer c.Close()
		req, err := proto.Decode[proto.Request](c)
		if err != nil {
			errs <- err
			return
		}
		got <- req
	}()

	want := proto.NewOpen(proto.OpenInfo{OriginHost: "boxA", RemoteDirPath: "/home/u/proj"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Send(ctx, ln.Addr().String(), want); err != nil {
		t.Fatal(err)
	}
	select {
	case req := <-got:
		if req.Kind != proto.KindOpen || *req.Open != *want.Open {
			t.Errorf("got %+v, want %+v", req, want)
		}
	case err := <-errs:
		t.Fatal(err)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received a request")
	}
}

func TestSendConnectError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	err = Send(context.Background(), addr, proto.NewOpen(proto.OpenInfo{OriginHost: "h", RemoteDirPath: "/"}))
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if ce.Addr != addr {
		t.Errorf("addr %q, want %q", ce.Addr, addr)
	}
}

func TestNewOpenRequestUsesHostname(t *testing.T) {
	host, err := os.Hostname()
	if err != nil {
		t.Skip(err)
	}
	req, err := NewOpenRequest("/srv/app")
	if err != nil {
		t.Fatal(err)
	}
	if req.Kind != proto.KindOpen || req.Open.OriginHost != host || req.Open.RemoteDirPath != "/srv/app" {
		t.Errorf("got %+v", req.Open)
	}
}

func TestInSSHSession(t *testing.T) {
	env := map[string]string{}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	if InSSHSession(lookup) {
		t.Error("expected no ssh session without " + SSHEnvVar)
	}
	env[SSHEnvVar] = "10.0.0.2 51234 10.0.0.5 22"
	if !InSSHSession(lookup) {
		t.Error("expected ssh session with " + SSHEnvVar)
	}
}

func TestTargetDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if got, err := TargetDir(""); err != nil || got != wd {
		t.Errorf("empty arg: got %q, %v; want %q", got, err, wd)
	}
	if got, err := TargetDir("sub/../dir"); err != nil || got != filepath.Join(wd, "dir") {
		t.Errorf("relative arg: got %q, %v; want %q", got, err, filepath.Join(wd, "dir"))
	}
	if got, err := TargetDir("/abs/path/"); err != nil || got != "/abs/path" {
		t.Errorf("absolute arg: got %q, %v", got, err)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.Reset()
	defer homedir.Reset()
	if got, err := TargetDir("~/proj"); err != nil || got != filepath.Join(home, "proj") {
		t.Errorf("tilde arg: got %q, %v; want %q", got, err, filepath.Join(home, "proj"))
	}
}
