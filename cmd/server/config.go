package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/matst80/code-open/internal/alias"
	"github.com/matst80/code-open/internal/editor"
	"github.com/spf13/pflag"
)

const (
	defaultIP   = "0.0.0.0"
	defaultPort = 3000
)

// Config holds all runtime configuration derived from flags.
type Config struct {
	IP          string
	Port        uint16
	TablePath   string
	Editor      string
	ReadTimeout time.Duration
	MetricsAddr string
	Debug       bool
	// Open rate limits; 0 disables.
	GlobalRate int
	HostRate   int
	Burst      int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(int(c.Port)))
}

// StoreConfig selects the alias table backend.
func (c Config) StoreConfig() alias.StoreConfig {
	return alias.StoreConfig{
		TablePath:     c.TablePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisKey:      c.RedisKey,
	}
}

// parseConfig builds the configuration from command line arguments
// (without the program name). The table path defaults to the per-user
// config directory.
func parseConfig(args []string) (Config, error) {
	var cfg Config
	fs := pflag.NewFlagSet("code-open-server", pflag.ContinueOnError)
	fs.StringVarP(&cfg.IP, "ip", "i", defaultIP, "address to listen on")
	fs.Uint16VarP(&cfg.Port, "port", "p", defaultPort, "port to listen on")
	fs.StringVar(&cfg.TablePath, "table", "", "alias table file (default <user config dir>/code-open-server/table.json)")
	fs.StringVar(&cfg.Editor, "editor", editor.DefaultBinary(), "editor binary supporting --remote ssh-remote+<host>")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 10*time.Second, "time a client has to send its request (0 = no limit)")
	fs.StringVar(&cfg.MetricsAddr, "metrics", "", "metrics, health and status listen address (empty = disabled)")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logs")
	fs.IntVar(&cfg.GlobalRate, "global-rate", 0, "editor launches per second across all hosts (0 = unlimited)")
	fs.IntVar(&cfg.HostRate, "rate", 0, "editor launches per second per host (0 = unlimited)")
	fs.IntVar(&cfg.Burst, "burst", 3, "launches allowed in a burst when rate limiting")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "read the alias table from this Redis server instead of the table file")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database number")
	fs.StringVar(&cfg.RedisKey, "redis-key", alias.DefaultRedisKey, "Redis hash holding origin host -> alias")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.TablePath == "" && cfg.RedisAddr == "" {
		p, err := alias.DefaultTablePath()
		if err != nil {
			return cfg, err
		}
		cfg.TablePath = p
	}
	return cfg, nil
}
