package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConnection represents a session that could not be established
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeNotConnected represents an operation on a collector without a session
	ErrorTypeNotConnected ErrorType = "not_connected"
	// ErrorTypeAmbiguous represents a search identifier matching more than one record
	ErrorTypeAmbiguous ErrorType = "ambiguous"
	// ErrorTypeExtraction represents a transient failure reading the source
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeTimeout represents an operation that ran out of time
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CollectorError represents a collector-specific error
type CollectorError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CollectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *CollectorError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *CollectorError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeExtraction, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// New creates a new CollectorError
func New(errType ErrorType, source, message string, err error) *CollectorError {
	return &CollectorError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConnection creates a new connection error
func NewConnection(source, message string, err error) *CollectorError {
	return New(ErrorTypeConnection, source, message, err)
}

// NewNotConnected creates a new not-connected error
func NewNotConnected(source string) *CollectorError {
	return New(ErrorTypeNotConnected, source, "collector is not connected", nil)
}

// NewAmbiguous creates a new ambiguous-identifier error
func NewAmbiguous(source, id string, matches int) *CollectorError {
	message := fmt.Sprintf("identifier %q matched %d records", id, matches)
	return New(ErrorTypeAmbiguous, source, message, nil)
}

// NewExtraction creates a new extraction error
func NewExtraction(source, message string, err error) *CollectorError {
	return New(ErrorTypeExtraction, source, message, err)
}

// NewTimeout creates a new timeout error
func NewTimeout(source, message string, err error) *CollectorError {
	return New(ErrorTypeTimeout, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *CollectorError {
	return New(ErrorTypeCache, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *CollectorError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *CollectorError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CollectorError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err wraps a CollectorError of the given type
func IsType(err error, errType ErrorType) bool {
	var ce *CollectorError
	if stderrors.As(err, &ce) {
		return ce.Type == errType
	}
	return false
}

// IsRetryable reports whether err wraps a retryable CollectorError
func IsRetryable(err error) bool {
	var ce *CollectorError
	if stderrors.As(err, &ce) {
		return ce.IsRetryable()
	}
	return false
}

// IsNotConnected reports whether err was caused by a missing session
func IsNotConnected(err error) bool {
	return IsType(err, ErrorTypeNotConnected)
}
