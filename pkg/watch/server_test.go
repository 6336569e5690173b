package watch_test

import (
	"context"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/ctxutil"
	"github.com/mandelsoft/cimrepository/pkg/server"
	"github.com/mandelsoft/cimrepository/pkg/service"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/watch"
)

type RegistrationRequest struct {
	Key string `json:"key"`
}

type Event struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

type Handler = me.EventHandler[Event]

type Registry struct {
	lock     sync.Mutex
	handlers map[string][]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: map[string][]Handler{},
	}
}

func (r *Registry) RegisterWatchHandler(req RegistrationRequest, h Handler) error {
	if req.Key == "" {
		return fmt.Errorf("key required")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.handlers[req.Key] = append(r.handlers[req.Key], h)
	return nil
}

func (r *Registry) UnregisterWatchHandler(req RegistrationRequest, h Handler) {
	r.lock.Lock()
	defer r.lock.Unlock()
	list := r.handlers[req.Key]
	if i := slices.Index(list, h); i >= 0 {
		r.handlers[req.Key] = slices.Delete(list, i, i+1)
	}
}

func (r *Registry) Handlers(key string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.handlers[key])
}

func (r *Registry) Trigger(evt Event) {
	r.lock.Lock()
	list := slices.Clone(r.handlers[evt.Key])
	r.lock.Unlock()

	for _, h := range list {
		h.HandleEvent(evt)
	}
}

type Consumer struct {
	lock     sync.Mutex
	messages []string
}

func (c *Consumer) HandleEvent(e Event) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.messages = append(c.messages, e.Message)
}

func (c *Consumer) Messages() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return slices.Clone(c.messages)
}

var _ = Describe("watch", func() {
	var ctx context.Context
	var srv *server.Server
	var done service.Syncher
	var registry *Registry
	var endpoint *me.RequestHandler[RegistrationRequest, Event]
	var address string

	BeforeEach(func() {
		ctx = ctxutil.CancelContext(context.Background())
		srv = server.NewServer(0, false, time.Second)
		registry = NewRegistry()
		endpoint = me.WatchHttpHandler[RegistrationRequest, Event](registry)
		srv.Handle("/watch", endpoint)
		ready, d, err := srv.Start(ctx)
		MustBeSuccessful(err)
		MustBeSuccessful(ready.Wait())
		done = d
		address = fmt.Sprintf("ws://localhost:%d/watch", srv.Address().(*net.TCPAddr).Port)
	})

	AfterEach(func() {
		endpoint.Close()
		ctxutil.Cancel(ctx)
		MustBeSuccessful(done.Wait())
	})

	It("streams events", func() {
		cctx := ctxutil.CancelContext(ctx)
		consumer := &Consumer{}
		client := me.NewClient[RegistrationRequest, Event](address)
		s := Must(client.Register(cctx, RegistrationRequest{Key: "test"}, consumer))

		Eventually(func() int { return registry.Handlers("test") }).Should(Equal(1))
		for i := 1; i <= 3; i++ {
			registry.Trigger(Event{Key: "test", Message: fmt.Sprintf("message %d", i)})
		}
		registry.Trigger(Event{Key: "other", Message: "other"})
		Eventually(consumer.Messages).Should(Equal([]string{"message 1", "message 2", "message 3"}))

		ctxutil.Cancel(cctx)
		MustBeSuccessful(s.Wait())
		Eventually(endpoint.Connections).Should(Equal(0))
		Eventually(func() int { return registry.Handlers("test") }).Should(Equal(0))
	})

	It("reports rejected registrations", func() {
		client := me.NewClient[RegistrationRequest, Event](address)
		s := Must(client.Register(ctx, RegistrationRequest{}, &Consumer{}))
		Expect(s.Wait()).To(MatchError(ContainSubstring("key required")))
	})
})
