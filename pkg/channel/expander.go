package channel

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/lissto-dev/catalogger/pkg/bundle"
	"github.com/lissto-dev/catalogger/pkg/logging"
)

// Entry is one link of a channel's upgrade chain
type Entry struct {
	Name     string `json:"name"`
	Replaces string `json:"replaces,omitempty"`
}

// Expansion is the outcome of expanding one channel document
type Expansion struct {
	// Document is the channel document with its directive replaced by entries
	Document string
	// Expanded is false for documents that had no directive
	Expanded bool
	Entries  []Entry
	// Bundles holds the discovered bundles in entry order; their records
	// belong in the catalog next to the channel
	Bundles []*bundle.Metadata
}

// Expander turns channel documents carrying a version directive into
// documents with a materialized entries list
type Expander struct {
	engine *bundle.Engine
}

// NewExpander creates an expander probing through engine
func NewExpander(engine *bundle.Engine) *Expander {
	return &Expander{engine: engine}
}

// ExpandChannel expands the directive of one channel document. Ranges are
// enumerated in the order they are written and chained into a single list.
func (x *Expander) ExpandChannel(ctx context.Context, text string, log *zap.Logger) (*Expansion, error) {
	if log == nil {
		log = logging.Logger
	}

	section, err := Partition(text)
	if errors.Is(err, ErrMissingDirective) {
		log.Warn("Found channel without an expansion section")
		return &Expansion{Document: text}, nil
	}

	specs, err := ParseDirective(section.Directive)
	if err != nil {
		return nil, err
	}

	var bundles []*bundle.Metadata
	for _, spec := range specs {
		for m, err := range x.engine.Enumerate(ctx, spec, log) {
			if err != nil {
				return nil, err
			}
			bundles = append(bundles, m)
		}
	}

	entries := Chain(bundles)
	doc, err := Assemble(section, entries)
	if err != nil {
		return nil, err
	}

	log.Info("Expanded channel", zap.Int("entries", len(entries)))

	return &Expansion{
		Document: doc,
		Expanded: true,
		Entries:  entries,
		Bundles:  bundles,
	}, nil
}

// Chain links bundles in order: each entry replaces the one before it
func Chain(bundles []*bundle.Metadata) []Entry {
	entries := make([]Entry, 0, len(bundles))
	for i, b := range bundles {
		entry := Entry{Name: b.Name}
		if i > 0 {
			entry.Replaces = bundles[i-1].Name
		}
		entries = append(entries, entry)
	}
	return entries
}

// Assemble rebuilds a channel document around entries, keeping the prologue
// and epilogue byte for byte
func Assemble(section Section, entries []Entry) (string, error) {
	serialized, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to serialize entries: %w", err)
	}
	return section.Prologue + "entries:\n" + string(serialized) + "\n" + section.Epilogue, nil
}
