package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lissto-dev/catalogger/pkg/bundle"
	"github.com/lissto-dev/catalogger/pkg/channel"
	"github.com/lissto-dev/catalogger/pkg/declcfg"
	"github.com/lissto-dev/catalogger/pkg/logging"
	"github.com/lissto-dev/catalogger/pkg/yamldoc"
)

// IndexFile is the name of the generated catalog file
const IndexFile = "index.yaml"

const documentSeparator = "\n---\n"

// Summary counts what a render produced
type Summary struct {
	Path     string
	Packages int
	Channels int
	Entries  int
	Bundles  int
}

// Catalogger turns catalog sources into a declarative config catalog
type Catalogger struct {
	engine   *bundle.Engine
	expander *channel.Expander
	log      *zap.Logger
}

// New creates a Catalogger probing bundles through renderer. All inputs
// rendered by one Catalogger share a single probe cache.
func New(renderer bundle.Renderer, log *zap.Logger) *Catalogger {
	if log == nil {
		log = logging.Logger
	}
	engine := bundle.NewEngine(renderer)
	return &Catalogger{
		engine:   engine,
		expander: channel.NewExpander(engine),
		log:      log,
	}
}

// Render expands every input file into <configsDir>/index.yaml. Per input,
// olm.package documents come first, then expanded olm.channel documents, then
// any other document untouched. The records of every bundle found are
// appended once at the end.
func (c *Catalogger) Render(ctx context.Context, configsDir string, inputs []string) (*Summary, error) {
	if err := os.MkdirAll(configsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create configs directory: %w", err)
	}

	path := filepath.Join(configsDir, IndexFile)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	summary := &Summary{Path: path}

	for _, input := range inputs {
		if err := c.renderFile(ctx, w, input, summary); err != nil {
			return nil, err
		}
	}

	for _, b := range c.engine.Loaded() {
		for _, rec := range b.Records {
			if err := writeDocument(w, rec.Raw); err != nil {
				return nil, err
			}
		}
		summary.Bundles++
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	c.log.Info("Catalog rendered",
		zap.String("path", path),
		zap.Int("packages", summary.Packages),
		zap.Int("channels", summary.Channels),
		zap.Int("entries", summary.Entries),
		zap.Int("bundles", summary.Bundles))

	return summary, nil
}

func (c *Catalogger) renderFile(ctx context.Context, w io.Writer, input string, summary *Summary) error {
	log := logging.ForFile(c.log, input)

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer f.Close()

	docs, err := yamldoc.Split(f)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	var packages, channels, others []yamldoc.Document
	for _, doc := range docs {
		schema, err := doc.Schema()
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		switch schema {
		case declcfg.SchemaPackage:
			packages = append(packages, doc)
		case declcfg.SchemaChannel:
			channels = append(channels, doc)
		default:
			others = append(others, doc)
		}
	}

	if len(packages) == 0 {
		log.Warn("No olm.package document found")
	}
	for _, doc := range packages {
		if err := writeDocument(w, doc.Text); err != nil {
			return err
		}
		summary.Packages++
	}

	for _, doc := range channels {
		exp, err := c.expander.ExpandChannel(ctx, doc.Text, logging.ForDocument(log, doc.Line))
		if err != nil {
			return fmt.Errorf("%s: YAML document starting at line %d: %w", input, doc.Line, err)
		}
		if err := writeDocument(w, exp.Document); err != nil {
			return err
		}
		summary.Channels++
		summary.Entries += len(exp.Entries)
	}

	for _, doc := range others {
		if err := writeDocument(w, doc.Text); err != nil {
			return err
		}
	}

	return nil
}

func writeDocument(w io.Writer, doc string) error {
	if _, err := io.WriteString(w, doc+documentSeparator); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
