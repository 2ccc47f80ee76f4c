package config

import (
	"os"
	"strings"
)

const (
	EnvSocket = "SAPWOOD_SOCKET"
	EnvDebug  = "SAPWOOD_DEBUG"
)

// SocketPath returns where the server listens: $SAPWOOD_SOCKET, then the
// configured socket, then /tmp/sapwood-$DISPLAY.
func (c Config) SocketPath() string {
	return c.socketPath(os.Getenv)
}

func (c Config) socketPath(getenv func(string) string) string {
	if path := getenv(EnvSocket); path != "" {
		return path
	}
	if c.Socket != "" {
		return c.Socket
	}
	return "/tmp/sapwood-" + getenv("DISPLAY")
}

type DebugFlags uint

const (
	// DebugScaling logs every resampled paint and tints it.
	DebugScaling DebugFlags = 1 << iota
	// DebugXTraps logs X errors caught while binding server pixmaps.
	DebugXTraps

	DebugAll = DebugScaling | DebugXTraps
)

var debugKeys = map[string]DebugFlags{
	"scaling": DebugScaling,
	"xtraps":  DebugXTraps,
	"all":     DebugAll,
}

// ParseDebug reads a list of keys separated by commas, colons or spaces.
// Case is ignored and so are unknown keys.
func ParseDebug(s string) DebugFlags {
	var flags DebugFlags
	for _, key := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ':' || r == ';' || r == ' ' || r == '\t'
	}) {
		flags |= debugKeys[strings.ToLower(key)]
	}
	return flags
}

// DebugFlags merges the configured keys with $SAPWOOD_DEBUG.
func (c Config) DebugFlags() DebugFlags {
	return c.debugFlags(os.Getenv)
}

func (c Config) debugFlags(getenv func(string) string) DebugFlags {
	flags := ParseDebug(getenv(EnvDebug))
	for _, key := range c.Debug {
		flags |= ParseDebug(key)
	}
	return flags
}

func (f DebugFlags) Has(flag DebugFlags) bool {
	return f&flag == flag
}
