// Package gatewayerr gives the three-way error taxonomy of spec.md §7 and
// SPEC_FULL.md §4.13 concrete sentinel types, checkable with errors.Is.
package gatewayerr

import "errors"

var (
	// ErrProtocolDecode marks a bad frame or truncated packet body. A
	// handler hitting this returns empty bytes; the request still
	// responds 200 with whatever was assembled so far.
	ErrProtocolDecode = errors.New("gateway: protocol decode error")

	// ErrServiceUnavailable marks a non-2xx or unparseable response from
	// a backend service.
	ErrServiceUnavailable = errors.New("gateway: service unavailable")

	// ErrValidation marks a client-supplied value that failed validation
	// (oversized message, unknown filter, malformed login body).
	ErrValidation = errors.New("gateway: validation error")
)
