// Package namespace manages the tree of namespaces. A namespace may
// share its schema with dependent namespaces created with it as parent.
//
// The manager is not synchronized. Callers serialize access with
// a tree lock.
package namespace

import (
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

type Attributes struct {
	Shareable      bool   `json:"shareable"`
	UpdatesAllowed bool   `json:"updatesAllowed"`
	Parent         string `json:"parent,omitempty"`
	RemoteInfo     string `json:"remoteInfo,omitempty"`
}

type Namespace struct {
	Name       string `json:"name"`
	Attributes
}

type entry struct {
	name     string
	attrs    Attributes
	parent   *entry
	children sets.Set[string]
}

type Manager struct {
	namespaces map[string]*entry
}

func New() *Manager {
	return &Manager{namespaces: map[string]*entry{}}
}

// Key returns the lookup key of a namespace name.
func Key(name string) string {
	return strings.ToLower(strings.Trim(name, "/"))
}

func (m *Manager) lookup(name string) (*entry, error) {
	e := m.namespaces[Key(name)]
	if e == nil {
		return nil, cimerr.ErrNotFound(cimerr.OBJ_NAMESPACE, name)
	}
	return e, nil
}

// Create adds a namespace. A given parent must exist and be shareable.
func (m *Manager) Create(name string, attrs Attributes) error {
	name = strings.Trim(name, "/")
	if !cim.IsLegalNamespaceName(name) {
		return cimerr.New(cimerr.InvalidParameter, "illegal namespace name %q", name)
	}
	if m.Exists(name) {
		return cimerr.ErrAlreadyExists(cimerr.OBJ_NAMESPACE, name)
	}
	var parent *entry
	if attrs.Parent != "" {
		var err error
		parent, err = m.lookup(attrs.Parent)
		if err != nil {
			return cimerr.Wrap(err, "parent")
		}
		if !parent.attrs.Shareable {
			return cimerr.New(cimerr.NotSupported, "parent namespace %q not shareable", parent.name)
		}
		attrs.Parent = parent.name
	}

	e := &entry{
		name:     name,
		attrs:    attrs,
		parent:   parent,
		children: sets.New[string](),
	}
	m.namespaces[Key(name)] = e
	if parent != nil {
		parent.children.Insert(Key(name))
	}
	log.Debug("created namespace {{namespace}}", "namespace", name, "parent", attrs.Parent)
	return nil
}

// Delete removes a namespace without dependent namespaces.
func (m *Manager) Delete(name string) error {
	e, err := m.lookup(name)
	if err != nil {
		return err
	}
	if e.children.Len() > 0 {
		return cimerr.New(cimerr.NamespaceNotEmpty, "namespace %q has dependent namespaces %s", e.name, strings.Join(m.Children(name), ", "))
	}
	if e.parent != nil {
		e.parent.children.Delete(Key(name))
	}
	delete(m.namespaces, Key(name))
	log.Debug("deleted namespace {{namespace}}", "namespace", e.name)
	return nil
}

// Modify changes the shareable and updates-allowed attributes.
// A namespace with dependent namespaces cannot be made unshareable.
func (m *Manager) Modify(name string, shareable, updatesAllowed bool) error {
	e, err := m.lookup(name)
	if err != nil {
		return err
	}
	if !shareable && e.attrs.Shareable && e.children.Len() > 0 {
		return cimerr.New(cimerr.NotSupported, "namespace %q has dependent namespaces", e.name)
	}
	e.attrs.Shareable = shareable
	e.attrs.UpdatesAllowed = updatesAllowed
	return nil
}

func (m *Manager) Exists(name string) bool {
	return m.namespaces[Key(name)] != nil
}

// Get returns the namespace with its canonical name.
func (m *Manager) Get(name string) (*Namespace, error) {
	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return &Namespace{Name: e.name, Attributes: e.attrs}, nil
}

// Names returns all namespace names in lexical order.
func (m *Manager) Names() []string {
	var r []string
	for _, e := range m.namespaces {
		r = append(r, e.name)
	}
	sort.Strings(r)
	return r
}

// Children returns the names of the namespaces directly depending
// on the given one.
func (m *Manager) Children(name string) []string {
	e := m.namespaces[Key(name)]
	if e == nil {
		return nil
	}
	var r []string
	for _, k := range sets.List(e.children) {
		r = append(r, m.namespaces[k].name)
	}
	return r
}

// SchemaChain returns the namespace followed by all ancestors whose
// elements are visible in it. Visibility ends at the first
// non-shareable ancestor.
func (m *Manager) SchemaChain(name string) ([]string, error) {
	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	r := []string{e.name}
	for p := e.parent; p != nil && p.attrs.Shareable; p = p.parent {
		r = append(r, p.name)
	}
	return r, nil
}

// CheckUpdatesAllowed fails with NotSupported for a namespace
// rejecting schema modifications.
func (m *Manager) CheckUpdatesAllowed(name string) error {
	e, err := m.lookup(name)
	if err != nil {
		return err
	}
	if !e.attrs.UpdatesAllowed {
		return cimerr.New(cimerr.NotSupported, "namespace %q does not allow schema updates", e.name)
	}
	return nil
}
