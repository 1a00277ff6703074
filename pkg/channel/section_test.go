package channel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/catalogger/pkg/channel"
)

var _ = Describe("Partition", func() {
	It("should split prologue, directive and epilogue", func() {
		text := `schema: olm.channel
package: example-operator
name: stable
_versions:
  - pattern: quay.io/org/bundle:v@@VERSION@@
    from: 1.0.0
# a comment stays in the directive
properties:
  - type: olm.deprecated
`
		section, err := channel.Partition(text)
		Expect(err).ToNot(HaveOccurred())
		Expect(section.Prologue).To(Equal("schema: olm.channel\npackage: example-operator\nname: stable\n"))
		Expect(section.Directive).To(Equal("\n  - pattern: quay.io/org/bundle:v@@VERSION@@\n    from: 1.0.0\n# a comment stays in the directive\n"))
		Expect(section.Epilogue).To(Equal("properties:\n  - type: olm.deprecated\n"))
		Expect(section.Prologue + channel.Marker + section.Directive + section.Epilogue).To(Equal(text))
	})

	It("should run the directive to the end of the document when nothing follows", func() {
		text := "name: stable\n_versions:\n- pattern: a:@@VERSION@@\n  from: 1.0.0"
		section, err := channel.Partition(text)
		Expect(err).ToNot(HaveOccurred())
		Expect(section.Directive).To(Equal("\n- pattern: a:@@VERSION@@\n  from: 1.0.0"))
		Expect(section.Epilogue).To(BeEmpty())
	})

	It("should use the first marker line", func() {
		text := "_versions:\n- from: 1.0.0\nname: x\n_versions:\n- from: 2.0.0\n"
		section, err := channel.Partition(text)
		Expect(err).ToNot(HaveOccurred())
		Expect(section.Prologue).To(BeEmpty())
		Expect(section.Directive).To(Equal("\n- from: 1.0.0\n"))
		Expect(section.Epilogue).To(Equal("name: x\n_versions:\n- from: 2.0.0\n"))
	})

	It("should ignore indented markers", func() {
		text := "name: stable\nnested:\n  _versions: []\n"
		section, err := channel.Partition(text)
		Expect(err).To(MatchError(channel.ErrMissingDirective))
		Expect(section.Prologue).To(Equal(text))
	})

	It("should report documents without directive", func() {
		_, err := channel.Partition("schema: olm.channel\nentries:\n- name: foo\n")
		Expect(err).To(MatchError(channel.ErrMissingDirective))
	})
})
