package loader

import (
	"errors"
	"fmt"
)

// Sentinel kinds matched through errors.Is by the typed errors below.
var (
	ErrMalformedContainer = errors.New("malformed binary container")
	ErrUnsupportedVersion = errors.New("unsupported glTF version")
	ErrParse              = errors.New("glTF parse error")
	ErrReference          = errors.New("invalid glTF reference")
	ErrResourceLoad       = errors.New("failed to load resource")
	errLoaderReused       = errors.New("loader instance already used")
)

// MalformedContainerError reports a binary container with a bad header or chunk layout.
type MalformedContainerError struct {
	Reason string
}

func (e *MalformedContainerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedContainer, e.Reason)
}

func (e *MalformedContainerError) Is(target error) bool {
	return target == ErrMalformedContainer
}

// UnsupportedVersionError reports a missing, unparsable or unsupported asset version.
type UnsupportedVersionError struct {
	Version string
	Reason  string
}

func (e *UnsupportedVersionError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("%s: %s", ErrUnsupportedVersion, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrUnsupportedVersion, e.Version, e.Reason)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// ParseError reports malformed JSON or values that cannot be interpreted
// (unknown component types, ranges overrunning a buffer view, ...).
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrParse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReferenceError reports an index that points outside its target array.
// Path locates the referencing property, e.g. "/nodes/2/mesh".
type ReferenceError struct {
	Path  string
	Index int
	Len   int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s: index %d out of range [0, %d)", ErrReference, e.Path, e.Index, e.Len)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// ResourceLoadError reports a failed external fetch or an undecodable resource.
type ResourceLoadError struct {
	URI string
	Err error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrResourceLoad, e.URI, e.Err)
}

func (e *ResourceLoadError) Is(target error) bool {
	return target == ErrResourceLoad
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// --- Helper Functions ---

// checkIndex returns a ReferenceError when index is outside [0, length).
func checkIndex(path string, index, length int) error {
	if index < 0 || index >= length {
		return &ReferenceError{Path: path, Index: index, Len: length}
	}
	return nil
}

func parseErrorf(format string, args ...any) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}
