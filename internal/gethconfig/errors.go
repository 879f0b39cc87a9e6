package gethconfig

import (
	"errors"
	"fmt"
)

// Stages name the document (or nested part of it) a ValidationError refers to.
const (
	StageLaunchOptions = "geth_kwargs"
	StageForkConfig    = "genesis_data config field"
	StageGenesis       = "genesis_data"
)

var (
	// ErrSchemaViolation is returned when a closed mapping contains a key it does not declare.
	ErrSchemaViolation = errors.New("unknown key")
	// ErrTypeMismatch is returned when a known key holds a value of the wrong type, enumeration or format.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrStructural is returned when the input is not a usable key/value mapping at all.
	ErrStructural = errors.New("malformed input")
)

// ValidationError describes the first violation found while validating a document.
type ValidationError struct {
	Stage string
	Kind  error
	Key   string
	Err   error
}

func (e *ValidationError) Error() string {
	detail := e.Kind.Error()
	if e.Key != "" {
		detail = fmt.Sprintf("%s %q", detail, e.Key)
	}
	if e.Err != nil {
		detail = fmt.Sprintf("%s: %v", detail, e.Err)
	}
	if errors.Is(e.Kind, ErrStructural) {
		return fmt.Sprintf("error while validating %s: %s", e.Stage, detail)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Stage, detail)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func schemaViolation(stage, key string) *ValidationError {
	return &ValidationError{Stage: stage, Kind: ErrSchemaViolation, Key: key}
}

func typeMismatch(stage, key string, err error) *ValidationError {
	return &ValidationError{Stage: stage, Kind: ErrTypeMismatch, Key: key, Err: err}
}

func structural(stage, key string, err error) *ValidationError {
	return &ValidationError{Stage: stage, Kind: ErrStructural, Key: key, Err: err}
}
