package repository

import (
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
)

type NamespaceAttributes = namespace.Attributes

func (r *Repository) CreateNameSpace(name string, attrs NamespaceAttributes) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.namespaces.Create(name, attrs); err != nil {
		return err
	}
	ns, err := r.namespaces.Get(name)
	if err != nil {
		return err
	}
	if err := r.store(newNamespaceRecord(ns)); err != nil {
		r.namespaces.Delete(name)
		return err
	}
	r.states[namespace.Key(name)] = newState(ns.Name)
	log.Info("created namespace {{namespace}}", "namespace", ns.Name)
	r.trigger(TYPE_NAMESPACE, ns.Name, ns.Name, OP_CREATED)
	return nil
}

// DeleteNameSpace deletes a namespace without dependent namespaces,
// classes and instances. Its qualifier declarations are deleted with it.
func (r *Repository) DeleteNameSpace(name string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	ns, err := r.namespaces.Get(name)
	if err != nil {
		return err
	}
	if len(r.namespaces.Children(name)) > 0 {
		return cimerr.New(cimerr.NamespaceNotEmpty, "namespace %q has dependent namespaces", ns.Name)
	}
	s := r.states[namespace.Key(name)]
	if !s.isEmpty() {
		return cimerr.New(cimerr.NamespaceNotEmpty, "namespace %q contains classes or instances", ns.Name)
	}
	if err := r.removeNamespaceRecords(s, name); err != nil {
		return cimerr.Wrap(err, "namespace %q", ns.Name)
	}
	if err := r.namespaces.Delete(name); err != nil {
		return err
	}
	delete(r.states, namespace.Key(name))
	log.Info("deleted namespace {{namespace}}", "namespace", ns.Name)
	r.trigger(TYPE_NAMESPACE, ns.Name, ns.Name, OP_DELETED)
	return nil
}

// removeNamespaceRecords deletes the qualifier records and the
// namespace record. On failure the qualifier records are restored.
func (r *Repository) removeNamespaceRecords(s *nsState, name string) error {
	err := database.DeleteObjects(r.db, namespace.Key(name), TYPE_QUALIFIER)
	if err == nil {
		err = r.remove(namespaceId(name))
		if err == nil {
			return nil
		}
	}
	for _, d := range s.qualifiers {
		if serr := r.store(newQualifierRecord(s.name, d)); serr != nil {
			log.LogError(serr, "cannot restore qualifier {{qualifier}} of namespace {{namespace}}", "qualifier", d.Name, "namespace", s.name)
		}
	}
	return err
}

// ModifyNameSpace changes the shareable and updates-allowed attributes.
func (r *Repository) ModifyNameSpace(name string, shareable, updatesAllowed bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	old, err := r.namespaces.Get(name)
	if err != nil {
		return err
	}
	if err := r.namespaces.Modify(name, shareable, updatesAllowed); err != nil {
		return err
	}
	ns, err := r.namespaces.Get(name)
	if err != nil {
		return err
	}
	if err := r.store(newNamespaceRecord(ns)); err != nil {
		r.namespaces.Modify(name, old.Shareable, old.UpdatesAllowed)
		return err
	}
	r.trigger(TYPE_NAMESPACE, ns.Name, ns.Name, OP_MODIFIED)
	return nil
}

// EnumerateNameSpaces returns all namespace names in lexical order.
func (r *Repository) EnumerateNameSpaces() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.namespaces.Names()
}

func (r *Repository) GetNameSpaceAttributes(name string) (*namespace.Namespace, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.namespaces.Get(name)
}

// GetNameSpaceChildren returns the namespaces directly depending on
// the given one.
func (r *Repository) GetNameSpaceChildren(name string) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if !r.namespaces.Exists(name) {
		return nil, cimerr.ErrNotFound(cimerr.OBJ_NAMESPACE, name)
	}
	return r.namespaces.Children(name), nil
}
