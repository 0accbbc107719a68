package main

import (
	"context"
	"errors"
	"os"

	"github.com/matst80/code-open/internal/client"
	"github.com/matst80/code-open/internal/obs"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		obs.Error("config", obs.Fields{"err": err})
		os.Exit(2)
	}
	if cfg.Debug {
		obs.EnableDebug(true)
	}
	if !client.InSSHSession(os.LookupEnv) {
		obs.Warn("client.not_ssh", obs.Fields{"err": client.ErrNotInSSH})
		return
	}
	if err := run(cfg); err != nil {
		obs.Error("client.send", obs.Fields{"err": err, "server": cfg.Addr()})
		os.Exit(1)
	}
}

func run(cfg Config) error {
	dir, err := client.TargetDir(cfg.Path)
	if err != nil {
		return err
	}
	req, err := client.NewOpenRequest(dir)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := client.Send(ctx, cfg.Addr(), req); err != nil {
		return err
	}
	obs.Info("client.sent", obs.Fields{"server": cfg.Addr(), "kind": req.Kind.String(), "origin": req.Open.OriginHost, "path": req.Open.RemoteDirPath})
	return nil
}
