package config

import (
	"fmt"
	"strings"
)

// Validator is the interface for validating configuration.
type Validator interface {
	Validate() error
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

var (
	validArchs     = map[string]bool{"": true, "ia32": true, "x64": true, "arm": true, "arm64": true}
	validLogLevels = map[string]bool{"": true, "trace": true, "debug": true, "info": true, "warn": true, "error": true}
)

// Validate validates Config.
func (c *Config) Validate() error {
	var errors []ValidationError

	errors = append(errors, c.Options.validate()...)

	if c.AutoRebuild && c.Rebuild.HeadersURL == "" {
		errors = append(errors, ValidationError{
			Field:   "rebuild.headers_url",
			Message: "headers URL is required when auto-rebuild is enabled",
		})
	}

	if !validLogLevels[c.Log.Level] {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level %q", c.Log.Level),
		})
	}

	if len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}
	return nil
}

// Validate validates Options on their own.
func (o *Options) Validate() error {
	if errors := o.validate(); len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}
	return nil
}

func (o *Options) validate() []ValidationError {
	var errors []ValidationError

	ports := []struct {
		field string
		port  int
	}{{"debug_port", o.DebugPort}, {"web_port", o.WebPort}}
	for _, p := range ports {
		if p.port < 0 || p.port > 65535 {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Message: fmt.Sprintf("port %d is out of range", p.port),
			})
		}
	}

	if o.StackTraceLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "stack_trace_limit",
			Message: "stack trace limit cannot be negative",
		})
	}

	for i, pattern := range o.Hidden {
		if pattern == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("hidden[%d]", i),
				Message: "pattern cannot be empty",
			})
		}
	}

	if !validArchs[o.Arch] {
		errors = append(errors, ValidationError{
			Field:   "arch",
			Message: fmt.Sprintf("unsupported architecture %q (want ia32, x64, arm or arm64)", o.Arch),
		})
	}

	return errors
}
