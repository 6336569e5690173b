package service

import (
	"context"
	"errors"
	"sync"

	"github.com/mandelsoft/cimrepository/pkg/utils"
)

// Syncher is used to wait for a state of a service and to
// report the errors that occurred while reaching it.
type Syncher interface {
	SetError(err error)
	Wait() error
}

// Sync provides a Syncher waiting for a wait group.
func Sync(wg *sync.WaitGroup) Syncher {
	return &syncher{
		wait: wg,
	}
}

type syncher struct {
	lock sync.Mutex
	wait *sync.WaitGroup
	err  []error
}

func (s *syncher) SetError(err error) {
	if err != nil {
		s.lock.Lock()
		defer s.lock.Unlock()
		s.err = append(s.err, err)
	}
}

func (s *syncher) Wait() error {
	s.wait.Wait()
	s.lock.Lock()
	defer s.lock.Unlock()
	return errors.Join(s.err...)
}

// Trigger is a Syncher released explicitly.
type Trigger interface {
	Syncher
	Trigger()
}

func SyncTrigger() Trigger {
	s, t := utils.NewSyncPoint()
	return &trigger{sync: s, trigger: t}
}

type trigger struct {
	lock    sync.Mutex
	once    sync.Once
	err     error
	sync    utils.Sync
	trigger utils.SyncTrigger
}

var _ Trigger = (*trigger)(nil)

func (t *trigger) Trigger() {
	t.once.Do(t.trigger.Done)
}

func (t *trigger) SetError(err error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.err = errors.Join(t.err, err)
}

func (t *trigger) Wait() error {
	t.sync.Wait(context.Background())
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.err
}
