// Package stats counts decoded packets per state and packet name.
package stats

import (
	"errors"
	"strings"

	"github.com/gogogo1024/mcgate/protocol"
)

var ErrInvalidKey = errors.New("stats: state and packet name are required")

// Store is a packet counter keyed by "<state>/<name>", e.g. "Play/KeepAlive".
// Implementations may be in-memory (local dev) or backed by Redis, in which
// case several gateways can share one set of counters.
type Store interface {
	Record(state protocol.State, name string) error
	Snapshot() (map[string]int64, error)
	Reset() error
}

// Key returns the counter key for a packet.
func Key(state protocol.State, name string) (string, error) {
	if !state.Valid() || name == "" {
		return "", ErrInvalidKey
	}
	return state.String() + "/" + name, nil
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (protocol.State, string, error) {
	stateName, name, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return 0, "", ErrInvalidKey
	}
	state, err := protocol.ParseState(stateName)
	if err != nil {
		return 0, "", err
	}
	return state, name, nil
}
