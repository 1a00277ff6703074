package image

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// Placeholder is replaced with a formatted version in image templates
const Placeholder = "@@VERSION@@"

// ErrInvalidTemplate is returned for image templates that cannot produce a
// valid image reference
var ErrInvalidTemplate = errors.New("invalid image template")

// Substitute replaces the placeholder in pattern with version
func Substitute(pattern, version string) string {
	return strings.ReplaceAll(pattern, Placeholder, version)
}

// ValidateTemplate checks that pattern holds exactly one placeholder and that
// substituting sample yields a parseable image reference, e.g.
//   - "quay.io/org/bundle:v@@VERSION@@" -> ok
//   - "quay.io/org/bundle:latest"       -> no placeholder
//   - "quay.io/Org/bundle:@@VERSION@@"  -> uppercase repository
func ValidateTemplate(pattern, sample string) error {
	switch n := strings.Count(pattern, Placeholder); n {
	case 1:
	case 0:
		return fmt.Errorf("%w: %q has no %s placeholder", ErrInvalidTemplate, pattern, Placeholder)
	default:
		return fmt.Errorf("%w: %q has %d %s placeholders, expected one", ErrInvalidTemplate, pattern, n, Placeholder)
	}

	ref := Substitute(pattern, sample)
	if _, err := name.ParseReference(ref); err != nil {
		return fmt.Errorf("%w: %q does not yield an image reference: %v", ErrInvalidTemplate, pattern, err)
	}
	return nil
}

// Repository returns the repository part of an image reference, without
// registry defaults applied, for log fields. Unparseable references are
// returned unchanged.
func Repository(ref string) string {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return ref
	}
	return parsed.Context().RepositoryStr()
}
