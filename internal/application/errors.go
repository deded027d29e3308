package application

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrNotFound is returned when the requested service does not exist.
var ErrNotFound = errors.New("application: not found")

// ConfigurationError reports a service whose configuration cannot be turned
// into sessions. Field names the offending configuration entry.
type ConfigurationError struct {
	ServiceID string
	Field     string
	Err       error
}

// Error implements the error interface.
func (c *ConfigurationError) Error() string {
	if c == nil {
		return ""
	}
	if c.Field == "" {
		return fmt.Sprintf("service %s: invalid configuration: %v", c.ServiceID, c.Err)
	}
	return fmt.Sprintf("service %s: invalid configuration of %s: %v", c.ServiceID, c.Field, c.Err)
}

// Unwrap exposes the construction failure.
func (c *ConfigurationError) Unwrap() error {
	if c == nil {
		return nil
	}
	return c.Err
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := slices.Sorted(maps.Keys(v.FieldErrors))
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
