package editor

import (
	config "github.com/kevinburke/ssh_config"
)

// HasSSHConfig reports whether the user's ssh config has a HostName for host.
// The editor resolves ssh-remote+<host> through the same config, so a name
// with no entry only works if it is directly resolvable.
func HasSSHConfig(host string) bool {
	return config.Get(host, "HostName") != ""
}
