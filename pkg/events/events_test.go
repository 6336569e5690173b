package events_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	me "github.com/mandelsoft/cimrepository/pkg/events"
)

type Id struct {
	Type      string
	Namespace string
	Name      string
}

func (i Id) GetType() string      { return i.Type }
func (i Id) GetNamespace() string { return i.Namespace }

type Handler struct {
	lock   sync.Mutex
	events []string
}

func (h *Handler) HandleEvent(id Id) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.events = append(h.events, id.Type+":"+id.Namespace+":"+id.Name)
}

func (h *Handler) Events() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string{}, h.events...)
}

var _ = Describe("handler registry", func() {
	var registry me.HandlerRegistry[Id]

	BeforeEach(func() {
		registry = me.NewHandlerRegistry[Id]()
	})

	AfterEach(func() {
		registry.Close()
	})

	It("delivers events in order", func() {
		h := &Handler{}
		registry.RegisterHandler(h, "")
		registry.TriggerEvent(Id{"class", "root", "A"})
		registry.TriggerEvent(Id{"instance", "root", "B"})
		registry.TriggerEvent(Id{"class", "other", "C"})
		Eventually(h.Events).Should(Equal([]string{"class:root:A", "instance:root:B", "class:other:C"}))
	})

	It("filters by type and namespace", func() {
		classes := &Handler{}
		root := &Handler{}
		registry.RegisterHandler(classes, "class")
		registry.RegisterHandler(root, "", "root")
		registry.RegisterHandler(root, "instance", "root")

		registry.TriggerEvent(Id{"class", "root", "A"})
		registry.TriggerEvent(Id{"instance", "other", "B"})
		registry.TriggerEvent(Id{"instance", "root", "C"})
		registry.TriggerEvent(Id{"class", "other", "D"})

		Eventually(classes.Events).Should(Equal([]string{"class:root:A", "class:other:D"}))
		Eventually(root.Events).Should(Equal([]string{"class:root:A", "instance:root:C"}))
	})

	It("unregisters handlers", func() {
		h := &Handler{}
		other := &Handler{}
		registry.RegisterHandler(h, "", "root")
		registry.RegisterHandler(other, "")
		registry.TriggerEvent(Id{"class", "root", "A"})
		Eventually(other.Events).Should(HaveLen(1))

		registry.UnregisterHandler(h, "", "root")
		registry.TriggerEvent(Id{"class", "root", "B"})
		Eventually(other.Events).Should(HaveLen(2))
		Expect(h.Events()).To(Equal([]string{"class:root:A"}))
	})

	It("discards events after close", func() {
		h := &Handler{}
		registry.RegisterHandler(h, "")
		registry.Close()
		registry.TriggerEvent(Id{"class", "root", "A"})
		Consistently(h.Events).Should(BeEmpty())
	})
})
