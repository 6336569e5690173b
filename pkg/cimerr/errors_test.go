package cimerr_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	me "github.com/mandelsoft/cimrepository/pkg/cimerr"
)

var _ = Describe("errors", func() {
	It("matches kinds", func() {
		err := me.ErrNotFound(me.OBJ_CLASS, "Person")
		Expect(errors.Is(err, me.NotFound)).To(BeTrue())
		Expect(errors.Is(err, me.AlreadyExists)).To(BeFalse())
		Expect(me.IsNotFound(err)).To(BeTrue())
		Expect(me.IsNotFound(err, me.OBJ_CLASS)).To(BeTrue())
		Expect(me.IsNotFound(err, me.OBJ_INSTANCE)).To(BeFalse())
		Expect(err).To(MatchError(`not found: class "Person"`))
	})

	It("keeps kind through wrapping", func() {
		err := fmt.Errorf("outer: %w", me.New(me.InvalidClass, "illegal override of %q", "Key"))
		Expect(errors.Is(err, me.InvalidClass)).To(BeTrue())
		Expect(me.KindOf(err)).To(Equal(me.InvalidClass))

		w := me.Wrap(err, "class %s", "B")
		Expect(me.KindOf(w)).To(Equal(me.InvalidClass))
		Expect(w).To(MatchError(`invalid class: class B: illegal override of "Key"`))
	})

	It("wraps foreign errors as failed", func() {
		cause := fmt.Errorf("disk full")
		err := me.Wrap(cause, "store class")
		Expect(me.KindOf(err)).To(Equal(me.Failed))
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err).To(MatchError("failed: store class: disk full"))
		Expect(me.KindOf(cause)).To(Equal(me.Failed))
	})

	It("matches tagged error targets", func() {
		err := me.ErrAlreadyExists(me.OBJ_NAMESPACE, "root")
		Expect(errors.Is(err, me.ErrAlreadyExists(me.OBJ_NAMESPACE, ""))).To(BeTrue())
		Expect(errors.Is(err, me.ErrAlreadyExists(me.OBJ_CLASS, ""))).To(BeFalse())
		Expect(me.ObjectOf(err)).To(Equal(me.OBJ_NAMESPACE))
	})
})
