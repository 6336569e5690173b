package service

import (
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/repository"
	"github.com/mandelsoft/cimrepository/pkg/watch"
)

// WatchRequest selects the events streamed by the watch endpoint.
// An empty type or namespace list selects all.
type WatchRequest struct {
	Type       string   `json:"type,omitempty"`
	Namespaces []string `json:"namespaces,omitempty"`
}

type watchRegistry struct {
	repository *repository.Repository
}

var _ watch.Registry[WatchRequest, repository.Event] = (*watchRegistry)(nil)

func (w *watchRegistry) RegisterWatchHandler(req WatchRequest, h watch.EventHandler[repository.Event]) error {
	switch req.Type {
	case "", repository.TYPE_NAMESPACE, repository.TYPE_QUALIFIER, repository.TYPE_CLASS, repository.TYPE_INSTANCE:
	default:
		return cimerr.New(cimerr.InvalidParameter, "invalid event type %q", req.Type)
	}
	for _, ns := range req.Namespaces {
		if _, err := w.repository.GetNameSpaceAttributes(ns); err != nil {
			return err
		}
	}
	w.repository.RegisterHandler(h, req.Type, req.Namespaces...)
	return nil
}

func (w *watchRegistry) UnregisterWatchHandler(req WatchRequest, h watch.EventHandler[repository.Event]) {
	w.repository.UnregisterHandler(h, req.Type, req.Namespaces...)
}
