// Package lifecycle holds timing defaults for start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds pings on start and graceful shutdown on stop.
const DefaultTimeout = 10 * time.Second
