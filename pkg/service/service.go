// Package service controls the life cycle of the long running parts
// of a process, like the http server of the repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mandelsoft/cimrepository/pkg/ctxutil"
)

// Service is started with a context. Cancelling the context stops
// the service. The ready syncher is optional, the done syncher
// reports the termination.
type Service interface {
	Start(ctx context.Context) (ready Syncher, done Syncher, err error)
}

type Services interface {
	// Add registers a service. Services added after Start
	// are started immediately.
	Add(s Service) error
	// Start starts the given or, without arguments, all
	// registered services and waits until they are ready.
	Start(st ...Service) error
	// Stop cancels the context of all services.
	Stop()
	// Wait waits for the termination of all started services.
	Wait() error
}

type services struct {
	lock     sync.Mutex
	ctx      context.Context
	services map[Service]Syncher
	order    []Service
	started  bool
	wg       sync.WaitGroup
	errs     []error
}

func New(ctx context.Context) Services {
	return &services{
		ctx:      ctxutil.CancelContext(ctx),
		services: map[Service]Syncher{},
	}
}

func (t *services) Add(s Service) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.services[s]; !ok {
		t.services[s] = nil
		t.order = append(t.order, s)
	}
	if t.started {
		return t.startServices(s)
	}
	return nil
}

func (t *services) Start(st ...Service) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(st) == 0 {
		if t.started {
			return nil
		}
		t.started = true
		return t.startServices(t.order...)
	}
	return t.startServices(st...)
}

func (t *services) startServices(list ...Service) error {
	var ready []Syncher
	for _, s := range list {
		if t.services[s] != nil {
			continue
		}
		r, err := t.start(s)
		if err != nil {
			return err
		}
		if r != nil {
			ready = append(ready, r)
		}
	}

	for _, r := range ready {
		if err := r.Wait(); err != nil {
			ctxutil.Cancel(t.ctx)
			return err
		}
	}
	return nil
}

func (t *services) start(s Service) (Syncher, error) {
	log.Debug("starting service {{service}}", "service", fmt.Sprintf("%T", s))
	ready, done, err := s.Start(t.ctx)
	if err == nil && done == nil {
		err = fmt.Errorf("service %T does not provide a done syncher", s)
	}
	if err != nil {
		ctxutil.Cancel(t.ctx)
		return nil, fmt.Errorf("service %T: %w", s, err)
	}
	if _, ok := t.services[s]; !ok {
		t.order = append(t.order, s)
	}
	t.services[s] = done
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := done.Wait(); err != nil {
			log.Error("service {{service}} failed", "service", fmt.Sprintf("%T", s), "error", err)
			t.lock.Lock()
			defer t.lock.Unlock()
			t.errs = append(t.errs, err)
		}
	}()
	return ready, nil
}

func (t *services) Stop() {
	ctxutil.Cancel(t.ctx)
}

func (t *services) Wait() error {
	t.wg.Wait()
	t.lock.Lock()
	defer t.lock.Unlock()
	return errors.Join(t.errs...)
}
