package declcfg

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/lissto-dev/catalogger/pkg/yamldoc"
)

const (
	SchemaPackage = "olm.package"
	SchemaChannel = "olm.channel"
	SchemaBundle  = "olm.bundle"

	// PropertyPackage is the bundle property declaring package name and version
	PropertyPackage = "olm.package"
)

// Property is a typed property attached to a record
type Property struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// PackageProperty is the value of an olm.package property
type PackageProperty struct {
	PackageName string `json:"packageName"`
	Version     string `json:"version"`
}

// Record is one schema-tagged declarative config document. Only the fields
// needed to link bundles into channels are decoded; Raw keeps the document
// verbatim so it can be written back out untouched.
type Record struct {
	Schema     string     `json:"schema"`
	Name       string     `json:"name,omitempty"`
	Package    string     `json:"package,omitempty"`
	Image      string     `json:"image,omitempty"`
	Properties []Property `json:"properties,omitempty"`

	Raw string `json:"-"`
}

// DecodeRecords splits a multi-document YAML stream and decodes every document
func DecodeRecords(data []byte) ([]Record, error) {
	docs, err := yamldoc.SplitBytes(data)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		var rec Record
		if err := yaml.Unmarshal([]byte(doc.Text), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record starting at line %d: %w", doc.Line, err)
		}
		rec.Raw = doc.Text
		records = append(records, rec)
	}

	return records, nil
}

// PackageVersion returns the version declared by the record's olm.package
// property. The boolean is false when the record carries no such property.
func (r Record) PackageVersion() (string, bool, error) {
	for _, prop := range r.Properties {
		if prop.Type != PropertyPackage {
			continue
		}
		var pkg PackageProperty
		if err := json.Unmarshal(prop.Value, &pkg); err != nil {
			return "", false, fmt.Errorf("failed to decode %s property of %q: %w", PropertyPackage, r.Name, err)
		}
		return pkg.Version, true, nil
	}
	return "", false, nil
}
