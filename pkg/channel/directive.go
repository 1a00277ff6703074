package channel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/lissto-dev/catalogger/pkg/bundle"
	"github.com/lissto-dev/catalogger/pkg/image"
	"github.com/lissto-dev/catalogger/pkg/version"
)

// ErrInvalidDirective is returned for directives that are not a list of ranges
var ErrInvalidDirective = errors.New("invalid " + Marker + " directive")

var validate = validator.New()

// Range is one item of a version directive as written in the catalog source:
//
//	_versions:
//	  - pattern: quay.io/org/operator-bundle:v@@VERSION@@
//	    from: 1.2.0
//	    to: 1.2.9
//	    failures: 2
//	    skip: [1.2.4]
type Range struct {
	Pattern  string   `yaml:"pattern" validate:"required"`
	From     string   `yaml:"from" validate:"required"`
	To       string   `yaml:"to,omitempty"`
	Failures *int     `yaml:"failures,omitempty" validate:"omitempty,min=0"`
	Skip     []string `yaml:"skip,omitempty" validate:"omitempty,dive,required"`
}

// Spec converts the range into an enumeration spec
func (r Range) Spec() (bundle.Spec, error) {
	if err := validate.Struct(r); err != nil {
		return bundle.Spec{}, fmt.Errorf("%w: %v", ErrInvalidDirective, err)
	}

	from, err := version.Parse(r.From)
	if err != nil {
		return bundle.Spec{}, fmt.Errorf("invalid from: %w", err)
	}

	spec := bundle.Spec{
		Pattern:  r.Pattern,
		From:     from,
		Failures: bundle.DefaultFailureBudget,
		Skip:     sets.New(r.Skip...),
	}

	if r.To != "" {
		to, err := version.Parse(r.To)
		if err != nil {
			return bundle.Spec{}, fmt.Errorf("invalid to: %w", err)
		}
		spec.To = &to
	}

	if r.Failures != nil {
		spec.Failures = *r.Failures
	}

	if err := image.ValidateTemplate(r.Pattern, from.String()); err != nil {
		return bundle.Spec{}, err
	}

	return spec, nil
}

// ParseDirective decodes the text following Marker into enumeration specs,
// in the order they are written
func ParseDirective(text string) ([]bundle.Spec, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)

	var ranges []Range
	if err := dec.Decode(&ranges); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty list", ErrInvalidDirective)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDirective, err)
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidDirective)
	}

	specs := make([]bundle.Spec, 0, len(ranges))
	for i, r := range ranges {
		spec, err := r.Spec()
		if err != nil {
			return nil, fmt.Errorf("%s item %d: %w", Marker, i+1, err)
		}
		specs = append(specs, spec)
	}

	return specs, nil
}
