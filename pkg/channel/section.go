package channel

import (
	"errors"
	"strings"
)

// Marker starts the version directive inside a channel document
const Marker = "_versions:"

// ErrMissingDirective is returned by Partition for documents without Marker
var ErrMissingDirective = errors.New("channel has no " + Marker + " section")

// Section is a channel document cut around its version directive.
// Prologue + Marker + Directive + Epilogue is the original text.
type Section struct {
	Prologue  string
	Directive string
	Epilogue  string
}

// Partition splits a channel document in three. The first line starting with
// Marker opens the directive; the first later line starting with a letter
// (a new top-level key) opens the epilogue. Without a marker the whole text is
// returned as Prologue along with ErrMissingDirective.
func Partition(text string) (Section, error) {
	start := -1

	for offset := 0; offset < len(text); {
		lineEnd := len(text)
		if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
			lineEnd = offset + i + 1
		}
		line := text[offset:lineEnd]

		switch {
		case start < 0:
			if strings.HasPrefix(line, Marker) {
				start = offset
			}
		case startsTopLevelKey(line):
			return Section{
				Prologue:  text[:start],
				Directive: text[start+len(Marker) : offset],
				Epilogue:  text[offset:],
			}, nil
		}

		offset = lineEnd
	}

	if start < 0 {
		return Section{Prologue: text}, ErrMissingDirective
	}

	return Section{
		Prologue:  text[:start],
		Directive: text[start+len(Marker):],
	}, nil
}

func startsTopLevelKey(line string) bool {
	if line == "" {
		return false
	}
	c := line[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
