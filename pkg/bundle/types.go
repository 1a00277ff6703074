package bundle

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/lissto-dev/catalogger/pkg/declcfg"
	"github.com/lissto-dev/catalogger/pkg/version"
)

// DefaultFailureBudget is used when a spec does not set one
const DefaultFailureBudget = 1

// Renderer turns an image reference into the declarative config records it
// contains. An error means the image could not be rendered.
type Renderer interface {
	Render(ctx context.Context, imageRef string) ([]declcfg.Record, error)
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(ctx context.Context, imageRef string) ([]declcfg.Record, error)

// Render calls f
func (f RendererFunc) Render(ctx context.Context, imageRef string) ([]declcfg.Record, error) {
	return f(ctx, imageRef)
}

// Spec describes one range of versions to enumerate
type Spec struct {
	// Pattern is an image reference template holding image.Placeholder once
	Pattern string
	From    version.Cursor
	// To is an inclusive upper bound; nil means probe until the failure
	// budget runs out
	To *version.Cursor
	// Failures is the number of extra probe failures tolerated
	Failures int
	// Skip holds formatted versions that are never probed
	Skip sets.Set[string]
}

// Metadata is a successfully probed bundle
type Metadata struct {
	// Name is the olm.bundle record's name
	Name string
	// Version is the declared package version
	Version string
	Image   string
	Records []declcfg.Record
}

// Outcome is the result of probing one image reference. Exactly one of
// Metadata and Err is set.
type Outcome struct {
	Metadata *Metadata
	Err      error
}

// OK reports whether the probe succeeded
func (o *Outcome) OK() bool {
	return o.Err == nil
}
