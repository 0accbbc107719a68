package proto

import (
	"fmt"
	"unicode/utf8"
)

// Kind tags a Request variant on the wire. Values are stable; new kinds
// get new numbers and existing numbers are never reused.
type Kind uint8

const (
	KindOpen Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// OpenInfo asks the receiving workstation to open an editor on RemoteDirPath
// of OriginHost. OriginHost is the client's own hostname, before any alias
// resolution on the server.
type OpenInfo struct {
	OriginHost    string `cbor:"origin_host" json:"origin_host"`
	RemoteDirPath string `cbor:"remote_dir_path" json:"remote_dir_path"`
}

// Request is the closed set of messages a client can send. Exactly one
// payload field matching Kind is set.
type Request struct {
	Kind Kind      `cbor:"1,keyasint" json:"kind"`
	Open *OpenInfo `cbor:"2,keyasint,omitempty" json:"open,omitempty"`
}

// NewOpen wraps info in an open request.
func NewOpen(info OpenInfo) Request {
	return Request{Kind: KindOpen, Open: &info}
}

// Validate rejects unknown kinds and kinds whose payload is missing.
func (r Request) Validate() error {
	switch r.Kind {
	case KindOpen:
		if r.Open == nil {
			return fmt.Errorf("open request without payload")
		}
		// CBOR text strings must be valid UTF-8.
		if !utf8.ValidString(r.Open.OriginHost) {
			return fmt.Errorf("origin host %q is not valid UTF-8", r.Open.OriginHost)
		}
		if !utf8.ValidString(r.Open.RemoteDirPath) {
			return fmt.Errorf("path %q is not valid UTF-8", r.Open.RemoteDirPath)
		}
		return nil
	default:
		return fmt.Errorf("unknown request kind %d", uint8(r.Kind))
	}
}
