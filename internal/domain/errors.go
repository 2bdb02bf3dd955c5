package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrNoDocuments   = errors.New("no documents found")
	ErrModelLoad     = errors.New("vectorization model could not be loaded")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Pipeline stage names used in StageError.
const (
	StageLoad      = "load"
	StageVectorize = "vectorize"
	StageKeywords  = "keywords"
	StageCluster   = "cluster"
	StageLink      = "link"
	StageAssemble  = "assemble"
	StageWrite     = "write"
)

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err for the given stage. A nil err stays nil.
func NewStageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// FailedStage returns the stage recorded in err, or "" if err carries none.
func FailedStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
