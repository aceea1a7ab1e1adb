package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches any ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")
	// ErrDataGap matches any DataGapError via errors.Is.
	ErrDataGap = errors.New("data gap")
)

// ConfigurationError reports invalid or inconsistent input. It is always fatal
// to a run and is never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DataGapError reports a request that exceeds the coverage of the supplied
// historical or life table data. Values are never extrapolated.
type DataGapError struct {
	Subject   string
	Requested string
	Available string
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("data gap: %s: requested %s, available %s", e.Subject, e.Requested, e.Available)
}

func (e *DataGapError) Is(target error) bool { return target == ErrDataGap }
