// Package middleware provides StateStore wrappers for persistence concerns:
// redacting sensitive text before it is written, and encrypting stored
// sessions at rest.
package middleware

import "github.com/stewardhq/steward/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore
