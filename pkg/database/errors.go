package database

import "errors"

// ErrNotReady marks a registry database that cannot be reached. Ping wraps
// the driver error with it so /readyz and startup logs share one cause.
var ErrNotReady = errors.New("database not ready")
