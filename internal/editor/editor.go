// Package editor launches the local editor on a remote folder through its
// ssh remote-development support.
package editor

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/matst80/code-open/internal/obs"
	"github.com/matst80/code-open/internal/proto"
)

// DefaultBinary is the VS Code launcher for the current platform.
func DefaultBinary() string {
	if runtime.GOOS == "windows" {
		return "code.cmd"
	}
	return "code"
}

// SpawnError reports an editor that could not be started.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string { return "spawn " + e.Binary + ": " + e.Err.Error() }
func (e *SpawnError) Unwrap() error { return e.Err }

// RemoteAuthority is the --remote argument addressing host over ssh.
func RemoteAuthority(host string) string {
	return "ssh-remote+" + host
}

// Args builds the editor arguments for info.
func Args(info proto.OpenInfo) []string {
	return []string{"--remote", RemoteAuthority(info.OriginHost), info.RemoteDirPath}
}

// Launcher starts Binary for each open request and does not wait for it.
type Launcher struct {
	Binary string
}

func NewLauncher(binary string) *Launcher {
	if binary == "" {
		binary = DefaultBinary()
	}
	return &Launcher{Binary: binary}
}

// Open starts the editor. The child is reaped in the background; its exit
// status is only logged.
func (l *Launcher) Open(ctx context.Context, info proto.OpenInfo) error {
	if !HasSSHConfig(info.OriginHost) {
		obs.Debug("editor.ssh_config.missing", obs.Fields{"host": info.OriginHost})
	}
	cmd := exec.Command(l.Binary, Args(info)...)
	if err := cmd.Start(); err != nil {
		return &SpawnError{Binary: l.Binary, Err: err}
	}
	obs.Info("editor.started", obs.Fields{"pid": cmd.Process.Pid, "host": info.OriginHost, "path": info.RemoteDirPath})
	go func() {
		if err := cmd.Wait(); err != nil {
			obs.Error("editor.exit", obs.Fields{"pid": cmd.Process.Pid, "err": err})
		}
	}()
	return nil
}
