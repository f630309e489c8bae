// Package lifecycle holds application-wide lifecycle constants.
package lifecycle

import "time"

// DefaultTimeout bounds every shutdown hook.
const DefaultTimeout = 10 * time.Second
