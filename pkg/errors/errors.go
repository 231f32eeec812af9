// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides the typed error taxonomy of the compatibility
// bridge: translation defaults are never errors, duplicate-resource errors
// are swallowed at the proxy layer, unavailable capabilities return
// sentinels, and delegate failures are logged and re-thrown unchanged.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Code classifies bridge errors for logging and recovery.
type Code string

const (
	// CodeInternal indicates an internal bridge error.
	CodeInternal Code = "INTERNAL"

	// CodeDuplicate indicates the resource already exists. Proxies treat
	// this class as success.
	CodeDuplicate Code = "DUPLICATE"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnavailable indicates a capability could not be resolved.
	CodeUnavailable Code = "UNAVAILABLE"

	// CodeDelegate indicates the wrapped current-engine operation failed.
	CodeDelegate Code = "DELEGATE_FAILURE"

	// CodeInvalidInput indicates the caller passed something unusable.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeInit indicates an unrecoverable initialization failure.
	CodeInit Code = "INIT_FAILURE"
)

// BridgeError is a typed error with context for structured logging. It
// implements error and unwraps to its cause.
type BridgeError struct {
	Code    Code
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for chain traversal.
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *BridgeError) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"code":    string(e.Code),
		"message": e.Message,
	}
	if e.Err != nil {
		out["error"] = e.Err.Error()
	}
	for k, v := range e.Context {
		out[k] = v
	}
	return json.Marshal(out)
}

// New creates a BridgeError with the given code, message and cause.
func New(code Code, msg string, cause error) *BridgeError {
	return &BridgeError{Code: code, Message: msg, Err: cause}
}

// WithContext adds a key-value pair to the error context. Returns the error
// for chaining.
func (e *BridgeError) WithContext(key string, value any) *BridgeError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the bridge code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeInternal
}

// duplicateMarkers matches the duplicate-key error text of the engines this
// bridge is known to sit on (generic stores, SQLite, Postgres).
var duplicateMarkers = []string{
	"already exists",
	"duplicate key",
	"unique constraint",
}

// IsDuplicate reports whether err is a duplicate-resource class error,
// either typed or engine-defined.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var be *BridgeError
	if errors.As(err, &be) && be.Code == CodeDuplicate {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, marker := range duplicateMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a not-found class error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var be *BridgeError
	if errors.As(err, &be) && be.Code == CodeNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// IsUnavailable reports whether err marks an unresolvable capability.
func IsUnavailable(err error) bool {
	var be *BridgeError
	return errors.As(err, &be) && be.Code == CodeUnavailable
}
