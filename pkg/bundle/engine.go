package bundle

import (
	"context"
	"iter"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/lissto-dev/catalogger/pkg/cache"
	"github.com/lissto-dev/catalogger/pkg/declcfg"
	"github.com/lissto-dev/catalogger/pkg/image"
	"github.com/lissto-dev/catalogger/pkg/logging"
	"github.com/lissto-dev/catalogger/pkg/version"
)

// Engine walks version ranges and probes every candidate image through a
// Renderer. Probe outcomes are memoized per image reference for the lifetime
// of the engine, so one engine should be used per run.
type Engine struct {
	renderer Renderer
	outcomes cache.Cache[*Outcome]
}

// NewEngine creates an engine with an empty outcome cache
func NewEngine(renderer Renderer) *Engine {
	return &Engine{
		renderer: renderer,
		outcomes: cache.NewMemoryCache[*Outcome](),
	}
}

// Enumerate yields every bundle found in spec, in increasing version order.
// Each call walks the range again from spec.From; already probed images are
// served from the cache. If no bundle at all is found, the sequence ends with
// a *NoVersionFoundError.
func (e *Engine) Enumerate(ctx context.Context, spec Spec, log *zap.Logger) iter.Seq2[*Metadata, error] {
	if log == nil {
		log = logging.Logger
	}

	return func(yield func(*Metadata, error) bool) {
		remaining := spec.Failures
		successes := 0

		for cursor := spec.From; remaining >= 0 && (spec.To == nil || cursor.LessOrEqual(*spec.To)); cursor = cursor.Next() {
			formatted := cursor.String()
			if spec.Skip.Has(formatted) {
				log.Debug("Skipping version", zap.String("version", formatted))
				continue
			}

			ref := image.Substitute(spec.Pattern, formatted)
			outcome := e.outcomes.GetOrCompute(ref, func() *Outcome {
				return e.probe(ctx, ref, cursor, log)
			})

			if !outcome.OK() {
				remaining--
				if remaining < 0 {
					log.Info("Could not load version "+formatted+", bailing out", zap.Error(outcome.Err))
				} else {
					log.Info("Could not load version "+formatted, zap.Error(outcome.Err))
				}
				continue
			}

			successes++
			if !yield(outcome.Metadata, nil) {
				return
			}
		}

		if successes == 0 {
			err := &NoVersionFoundError{Pattern: spec.Pattern, From: spec.From}
			log.Error(err.Error())
			yield(nil, err)
		}
	}
}

// Loaded returns every successfully probed bundle in first-probe order
func (e *Engine) Loaded() []*Metadata {
	var loaded []*Metadata
	for _, outcome := range e.outcomes.Values() {
		if outcome.OK() {
			loaded = append(loaded, outcome.Metadata)
		}
	}
	return loaded
}

func (e *Engine) probe(ctx context.Context, ref string, expected version.Cursor, log *zap.Logger) *Outcome {
	log.Debug("Rendering image",
		zap.String("image", ref),
		zap.String("repository", image.Repository(ref)))

	records, err := e.renderer.Render(ctx, ref)
	if err != nil {
		return &Outcome{Err: &ProbeError{Image: ref, Err: err}}
	}

	declared, found := "", false
	for _, rec := range records {
		v, ok, err := rec.PackageVersion()
		if err != nil {
			return &Outcome{Err: &ProbeError{Image: ref, Err: err}}
		}
		if ok {
			declared, found = v, true
			break
		}
	}
	if !found {
		log.Warn("No olm.package property found", zap.String("image", ref))
		return &Outcome{Err: &ProbeError{Image: ref, Err: ErrNoPackageVersion}}
	}

	if !declares(declared, expected) {
		log.Warn("Skipping malformed image",
			zap.String("image", ref),
			zap.String("contains", declared),
			zap.String("expected", expected.Semver()))
		return &Outcome{Err: &VersionMismatchError{Image: ref, Expected: expected.Semver(), Actual: declared}}
	}

	bundleName := ""
	for _, rec := range records {
		if rec.Schema == declcfg.SchemaBundle {
			bundleName = rec.Name
			break
		}
	}
	if bundleName == "" {
		log.Warn("No olm.bundle record found", zap.String("image", ref))
		return &Outcome{Err: &ProbeError{Image: ref, Err: ErrNoBundleRecord}}
	}

	log.Debug("Loaded bundle",
		zap.String("image", ref),
		zap.String("bundle", bundleName),
		zap.String("version", declared))

	return &Outcome{Metadata: &Metadata{
		Name:    bundleName,
		Version: declared,
		Image:   ref,
		Records: records,
	}}
}

// declares reports whether a declared bundle version names the cursor's
// release. Build metadata is ignored; prereleases never match.
func declares(declared string, expected version.Cursor) bool {
	v, err := semver.StrictNewVersion(declared)
	if err != nil {
		return false
	}
	return v.Prerelease() == "" &&
		v.Major() == expected.Major &&
		v.Minor() == expected.Minor &&
		v.Patch() == expected.Patch
}
