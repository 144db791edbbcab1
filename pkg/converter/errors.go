package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPath is returned for any path that does not follow the
	// <package>/<groove>/<tempo>/<variation> convention.
	ErrMalformedPath = errors.New("malformed package path")

	// ErrNoVariationNumber means the variation segment has no digits.
	ErrNoVariationNumber = fmt.Errorf("%w: no variation number", ErrMalformedPath)

	// ErrInvalidMIDI is returned by verification when a source is not a Standard MIDI File.
	ErrInvalidMIDI = errors.New("invalid MIDI file")
)

// Stage names the path level a decode failure happened at
type Stage string

const (
	StageLayout    Stage = "layout"
	StagePackage   Stage = "package"
	StageGroove    Stage = "groove"
	StageTempo     Stage = "tempo"
	StageVariation Stage = "variation"
)

// DecodeError reports which stage of path decoding failed and on what segment
type DecodeError struct {
	Stage   Stage
	Segment string
	Path    string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s segment %q: %v", e.Path, e.Stage, e.Segment, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
