package extract

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile   = errors.New("log file not found")
	ErrMalformedLine = errors.New("malformed log line")
	ErrEmptyGroup    = errors.New("empty record group")
)

// MissingFileError reports a log file that a run/flavor combination expects but
// that does not exist.
type MissingFileError struct {
	Path   string
	Flavor string
	Run    int
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("log file for flavor %s run %d not found: %s", e.Flavor, e.Run, e.Path)
}

func (e *MissingFileError) Unwrap() error { return ErrMissingFile }

// MalformedLineError reports a selected line with fewer numeric tokens than
// the active layout needs.
type MalformedLineError struct {
	File   string
	Line   int
	Text   string
	Layout string
	Have   int
	Need   int
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: layout %s needs %d numeric tokens, line has %d: %q",
		e.File, e.Line, e.Layout, e.Need, e.Have, e.Text)
}

func (e *MalformedLineError) Unwrap() error { return ErrMalformedLine }

// EmptyGroupError reports a group for which no line matched the selection.
type EmptyGroupError struct {
	Group string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("no records for %s", e.Group)
}

func (e *EmptyGroupError) Unwrap() error { return ErrEmptyGroup }
