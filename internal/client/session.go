package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// SSHEnvVar is set by sshd for every session it starts.
const SSHEnvVar = "SSH_CONNECTION"

// ErrNotInSSH is returned when the process is not part of an ssh session.
var ErrNotInSSH = errors.New("this command should be executed in SSH")

// InSSHSession reports whether lookup finds the ssh session variable.
// lookup is usually os.LookupEnv.
func InSSHSession(lookup func(string) (string, bool)) bool {
	_, ok := lookup(SSHEnvVar)
	return ok
}

// TargetDir returns the absolute directory to open. An empty arg means the
// working directory; a leading ~ is expanded to the home directory.
func TargetDir(arg string) (string, error) {
	if arg == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("current directory: %w", err)
		}
		return wd, nil
	}
	expanded, err := homedir.Expand(arg)
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", arg, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("absolute path of %q: %w", expanded, err)
	}
	return abs, nil
}
