package telemetry

import (
	"sync"
)

// DefaultDir is where events.jsonl is written when Config.Dir is empty.
const DefaultDir = ".mathtutor"

// Config controls JSONL emission. It is applied once at startup through
// Configure; the zero value disables emission.
type Config struct {
	Enabled bool
	Dir     string
}

var (
	mu  sync.Mutex
	cfg Config
)

// Configure replaces the active configuration.
func Configure(c Config) {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// Enabled reports whether events are currently written.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return cfg.Enabled
}
