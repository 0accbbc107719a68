// Package alias maps the hostname a remote machine reports about itself to
// the name the local ssh client knows it by.
package alias

import (
	"fmt"
	"sort"

	"github.com/matst80/code-open/internal/proto"
)

// Table maps origin host -> locally configured host. It is loaded once at
// startup and must not be modified afterwards.
type Table map[string]string

// Resolve returns info with OriginHost replaced by its alias, or info
// unchanged when the table has no entry for it.
func (t Table) Resolve(info proto.OpenInfo) proto.OpenInfo {
	if local, ok := t[info.OriginHost]; ok {
		return proto.OpenInfo{OriginHost: local, RemoteDirPath: info.RemoteDirPath}
	}
	return info
}

// Keys returns the origin hosts in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects entries that would resolve a host to an empty name.
// A JSON null value decodes to "" and is caught here too.
func (t Table) Validate() error {
	for _, k := range t.Keys() {
		if t[k] == "" {
			return fmt.Errorf("alias for %q is empty", k)
		}
	}
	return nil
}
