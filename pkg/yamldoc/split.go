package yamldoc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one YAML document out of a multi-document stream
type Document struct {
	// Line is the 1-based line number of the document's first line
	Line int
	// Text is the verbatim document, separators excluded
	Text string
}

// Split cuts a YAML stream into documents. Every line starting with "---"
// is a separator. Documents holding nothing but whitespace are dropped.
func Split(r io.Reader) ([]Document, error) {
	var (
		docs    []Document
		current strings.Builder
		start   = 1
		lineNo  = 0
	)

	flush := func(next int) {
		if strings.TrimSpace(current.String()) != "" {
			docs = append(docs, Document{Line: start, Text: current.String()})
		}
		current.Reset()
		start = next
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lineNo++
			if strings.HasPrefix(line, "---") {
				flush(lineNo + 1)
			} else {
				current.WriteString(line)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML stream: %w", err)
		}
	}
	flush(lineNo + 1)

	return docs, nil
}

// SplitBytes is Split over an in-memory buffer
func SplitBytes(data []byte) ([]Document, error) {
	return Split(bytes.NewReader(data))
}

// Schema returns the value of the document's top-level "schema" key,
// or "" if there is none.
func (d Document) Schema() (string, error) {
	var header struct {
		Schema string `yaml:"schema"`
	}
	if err := yaml.Unmarshal([]byte(d.Text), &header); err != nil {
		return "", fmt.Errorf("failed to parse YAML document starting at line %d: %w", d.Line, err)
	}
	return header.Schema, nil
}
