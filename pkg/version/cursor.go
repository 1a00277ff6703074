package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformedVersion is returned when a string is not <prefix><major>.<minor>.<patch>
var ErrMalformedVersion = errors.New("malformed version")

// Prefix is a (possibly empty) run of letters, dashes or underscores, e.g. "v".
// Numeric components follow semver rules: no leading zeros.
var cursorPattern = regexp.MustCompile(`^([A-Za-z_-]*)(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)$`)

// Cursor is a version value that can be walked patch by patch.
// Ordering only looks at Major, Minor and Patch; Prefix is kept for formatting.
type Cursor struct {
	Prefix string
	Major  uint64
	Minor  uint64
	Patch  uint64
}

// Parse parses text of the form <prefix><major>.<minor>.<patch>
func Parse(text string) (Cursor, error) {
	m := cursorPattern.FindStringSubmatch(text)
	if m == nil {
		return Cursor{}, fmt.Errorf("%w: %q", ErrMalformedVersion, text)
	}

	var parts [3]uint64
	for i := range parts {
		n, err := strconv.ParseUint(m[i+2], 10, 64)
		if err != nil {
			return Cursor{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, text, err)
		}
		parts[i] = n
	}

	return Cursor{
		Prefix: m[1],
		Major:  parts[0],
		Minor:  parts[1],
		Patch:  parts[2],
	}, nil
}

// MustParse is like Parse but panics on error. Meant for tests and constants.
func MustParse(text string) Cursor {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

// Next returns the cursor for the following patch level
func (c Cursor) Next() Cursor {
	c.Patch++
	return c
}

// Compare returns -1, 0 or +1 depending on how c orders against other.
// The prefix does not take part.
func (c Cursor) Compare(other Cursor) int {
	switch {
	case c.Major != other.Major:
		return cmpUint(c.Major, other.Major)
	case c.Minor != other.Minor:
		return cmpUint(c.Minor, other.Minor)
	default:
		return cmpUint(c.Patch, other.Patch)
	}
}

// Less reports whether c sorts before other
func (c Cursor) Less(other Cursor) bool {
	return c.Compare(other) < 0
}

// LessOrEqual reports whether c sorts before or together with other
func (c Cursor) LessOrEqual(other Cursor) bool {
	return c.Compare(other) <= 0
}

// SameVersion reports whether both cursors name the same (major, minor, patch),
// whatever their prefixes.
func (c Cursor) SameVersion(other Cursor) bool {
	return c.Compare(other) == 0
}

// Equal requires the same prefix on top of the same version triple
func (c Cursor) Equal(other Cursor) bool {
	return c.Prefix == other.Prefix && c.SameVersion(other)
}

// String renders the cursor back to <prefix><major>.<minor>.<patch>
func (c Cursor) String() string {
	return fmt.Sprintf("%s%d.%d.%d", c.Prefix, c.Major, c.Minor, c.Patch)
}

// Semver renders the cursor without its prefix
func (c Cursor) Semver() string {
	return fmt.Sprintf("%d.%d.%d", c.Major, c.Minor, c.Patch)
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
