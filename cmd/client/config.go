package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

const (
	defaultIP   = "0.0.0.0"
	defaultPort = 3000
)

// Config holds client runtime configuration.
type Config struct {
	IP      string
	Port    uint16
	Timeout time.Duration
	Debug   bool
	// Path is the optional positional target directory.
	Path string
}

// Addr is the server address to dial.
func (c Config) Addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(int(c.Port)))
}

func parseConfig(args []string) (Config, error) {
	var cfg Config
	fs := pflag.NewFlagSet("code-open", pflag.ContinueOnError)
	fs.StringVarP(&cfg.IP, "ip", "i", defaultIP, "server address")
	fs.Uint16VarP(&cfg.Port, "port", "p", defaultPort, "server port")
	fs.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "connect and write timeout")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logs")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: code-open [flags] [path]\n\nopen VSCode over SSH\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Path = fs.Arg(0)
	default:
		return cfg, fmt.Errorf("expected at most one path, got %v", fs.Args())
	}
	return cfg, nil
}
