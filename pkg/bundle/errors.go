package bundle

import (
	"errors"
	"fmt"

	"github.com/lissto-dev/catalogger/pkg/version"
)

var (
	// ErrNoPackageVersion marks rendered images lacking an olm.package property
	ErrNoPackageVersion = errors.New("no olm.package property found")
	// ErrNoBundleRecord marks rendered images lacking an olm.bundle record
	ErrNoBundleRecord = errors.New("no olm.bundle record found")
)

// ProbeError is a failed attempt to render one image
type ProbeError struct {
	Image string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Image, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// VersionMismatchError is returned when an image renders fine but declares a
// package version other than the one it was probed for
type VersionMismatchError struct {
	Image    string
	Expected string
	Actual   string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("image %s contains version %s, expected %s", e.Image, e.Actual, e.Expected)
}

// NoVersionFoundError is returned when a whole spec produced no bundle
type NoVersionFoundError struct {
	Pattern string
	From    version.Cursor
}

func (e *NoVersionFoundError) Error() string {
	return fmt.Sprintf("no single image could be found: pattern=%s, from=%s", e.Pattern, e.From)
}
