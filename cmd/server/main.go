package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/matst80/code-open/internal/alias"
	"github.com/matst80/code-open/internal/editor"
	"github.com/matst80/code-open/internal/obs"
	"github.com/matst80/code-open/internal/ratelimit"
	"github.com/matst80/code-open/internal/server"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		obs.Error("server.fatal", obs.Fields{"err": err})
		os.Exit(1)
	}
	obs.Info("server.shutdown.complete", obs.Fields{})
}

// run loads the alias table, binds the listener and serves until ctx is
// cancelled. Any returned error is fatal.
func run(ctx context.Context, cfg Config) error {
	store, err := alias.NewStore(ctx, cfg.StoreConfig())
	if err != nil {
		return err
	}
	table, err := store.Load(ctx)
	if err != nil {
		return err
	}
	logTable(store.Location(), table)

	ln, err := server.Listen(cfg.Addr())
	if err != nil {
		return err
	}
	obs.Info("server.start", obs.Fields{"addr": ln.Addr().String(), "editor": cfg.Editor, "metrics": cfg.MetricsAddr})

	srv := server.New(server.Config{
		Table:       table,
		Opener:      editor.NewLauncher(cfg.Editor),
		ReadTimeout: cfg.ReadTimeout,
		Limiter:     ratelimit.New(cfg.GlobalRate, cfg.HostRate, cfg.Burst),
	})
	if cfg.MetricsAddr != "" {
		go startMetricsServer(ctx, cfg.MetricsAddr, srv)
	}
	return srv.Serve(ctx, ln)
}

func logTable(location string, table alias.Table) {
	obs.AliasEntries.Set(float64(len(table)))
	obs.Info("alias.table", obs.Fields{"location": location, "entries": len(table)})
	for _, from := range table.Keys() {
		to := table[from]
		obs.Info("alias.entry", obs.Fields{"from": from, "to": to})
		if !editor.HasSSHConfig(to) {
			obs.Warn("alias.entry.no_ssh_config", obs.Fields{"to": to})
		}
	}
}
