package pipeline

import (
	"errors"
	"strings"
)

var (
	ErrValidation    = errors.New("pipeline: invalid request")
	ErrAnalysis      = errors.New("pipeline: analysis failed")
	ErrCycleDetected = errors.New("pipeline: cycle detected, graph is not acyclic")
)

// FieldError describes one malformed or missing field of a request body.
// Field uses the wire names, e.g. "edges[0].source".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request body cannot be turned into a Pipeline.
// It is produced before any graph construction happens.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AnalysisError wraps any failure raised while building or analysing the graph.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string {
	if e.Cause == nil {
		return "Error analyzing pipeline"
	}
	return "Error analyzing pipeline: " + e.Cause.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysis }
