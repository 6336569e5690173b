package runtime_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/runtime"
)

type Record struct {
	me.ObjectMeta `json:",inline"`
	Value         string `json:"value"`
}

var _ = Describe("scheme", func() {
	var scheme me.Scheme[me.Object]

	BeforeEach(func() {
		scheme = me.NewYAMLScheme[me.Object]()
		MustBeSuccessful(me.Register[Record, *Record, me.Object](scheme, "record"))
	})

	It("registers types", func() {
		Expect(scheme.TypeNames()).To(Equal([]string{"record"}))
		Expect(me.Register[Record, *Record, me.Object](scheme, "record")).NotTo(Succeed())
		o := Must(scheme.CreateObject("record"))
		Expect(o.GetType()).To(Equal("record"))
	})

	It("decodes by type", func() {
		o := Must(scheme.Decode([]byte("type: record\nvalue: test\n")))
		Expect(o).To(Equal(&Record{ObjectMeta: me.ObjectMeta{Type: "record"}, Value: "test"}))

		data := Must(scheme.Encode(o))
		Expect(string(data)).To(Equal("type: record\nvalue: test\n"))
	})

	It("rejects unknown types", func() {
		_, err := scheme.Decode([]byte("type: other\n"))
		Expect(err).To(MatchError(`unknown object type "other"`))
		_, err = scheme.Decode([]byte("value: test\n"))
		Expect(err).To(HaveOccurred())
	})
})
