package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Step names the ingest phase an error occurred in. The linear order is
// validating -> uploading_file -> parsing -> analyzing -> encoding ->
// persisting; a failure in any step is terminal for the attempt.
type Step string

const (
	StepValidating Step = "validating"
	StepUploading  Step = "uploading_file"
	StepParsing    Step = "parsing"
	// StepAnalyzing never carries an error: Analyze is total over any
	// point sequence. Listed so the enumeration matches the pipeline.
	StepAnalyzing  Step = "analyzing"
	StepEncoding   Step = "encoding"
	StepPersisting Step = "persisting"
)

var (
	// ErrValidation means required upload metadata is missing. The
	// Error's Fields list names what was absent; nothing was uploaded.
	ErrValidation = errors.New("missing required fields")
	// ErrDuplicateTrack means a track with the same name and date
	// already exists.
	ErrDuplicateTrack = errors.New("track already exists")
)

// Error is the single failure type Ingest returns. Step tells callers
// which phase failed so they can pick a status code and decide whether a
// retry makes sense.
type Error struct {
	Step   Step
	Fields []string // set for validation failures only
	Err    error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("ingest %s: %v: %s", e.Step, e.Err, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("ingest %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the step failed because its deadline expired.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func stepErr(step Step, err error) *Error {
	return &Error{Step: step, Err: err}
}
