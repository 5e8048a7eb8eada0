// Package menu loads, aggregates and rewrites restaurant menu documents.
package menu

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindSchema     Kind = "schema"     // schema file missing or not a valid XSD
	KindValidation Kind = "validation" // document does not conform to the schema
	KindParse      Kind = "parse"      // malformed XML, DOCTYPE, unsupported encoding
	KindData       Kind = "data"       // attribute missing or not parsable
	KindIO         Kind = "io"         // read or write failure
)

// Pipeline stage names, used in errors, logs and run history.
const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageMutate    = "mutate"
	StageSerialize = "serialize"
)

// Error is the typed failure returned by every stage. Path is the file the
// stage was working on, or the element path for data errors.
type Error struct {
	Kind  Kind
	Stage string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error in %s stage (%s): %v", e.Kind, e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error in %s stage: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, stage, path string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Path: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

// StageOf returns the stage of the first *Error in err's chain, or "".
func StageOf(err error) string {
	var me *Error
	if errors.As(err, &me) {
		return me.Stage
	}
	return ""
}
