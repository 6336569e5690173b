package repository

import (
	"sort"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/locks"
)

// SetQualifierDecl creates or replaces a qualifier declaration.
func (r *Repository) SetQualifierDecl(ns string, decl *cim.QualifierDecl) error {
	if err := decl.Validate(); err != nil {
		return err
	}

	v, unlock, err := r.access(ns, locks.Write)
	if err != nil {
		return err
	}
	defer unlock()

	s := v.local()
	if err := r.namespaces.CheckUpdatesAllowed(s.name); err != nil {
		return err
	}
	decl = decl.Copy()
	op := OP_CREATED
	if s.qualifiers[key(decl.Name)] != nil {
		op = OP_MODIFIED
	}
	if err := r.store(newQualifierRecord(s.name, decl)); err != nil {
		return err
	}
	s.qualifiers[key(decl.Name)] = decl
	log.Debug("set qualifier {{qualifier}} in {{namespace}}", "qualifier", decl.Name, "namespace", s.name)
	r.trigger(TYPE_QUALIFIER, s.name, decl.Name, op)
	return nil
}

// GetQualifierDecl returns a qualifier declaration visible in the
// namespace.
func (r *Repository) GetQualifierDecl(ns, name string) (*cim.QualifierDecl, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, ok := v.LookupQualifierDecl(name)
	if !ok {
		return nil, cimerr.ErrNotFound(cimerr.OBJ_QUALIFIER, name)
	}
	return d.Copy(), nil
}

// DeleteQualifierDecl deletes a declaration of the namespace itself.
func (r *Repository) DeleteQualifierDecl(ns, name string) error {
	v, unlock, err := r.access(ns, locks.Write)
	if err != nil {
		return err
	}
	defer unlock()

	s := v.local()
	if err := r.namespaces.CheckUpdatesAllowed(s.name); err != nil {
		return err
	}
	d := s.qualifiers[key(name)]
	if d == nil {
		return cimerr.ErrNotFound(cimerr.OBJ_QUALIFIER, name)
	}
	if err := r.remove(qualifierId(s.name, name)); err != nil {
		return err
	}
	delete(s.qualifiers, key(name))
	r.trigger(TYPE_QUALIFIER, s.name, d.Name, OP_DELETED)
	return nil
}

// EnumerateQualifierDecls returns the declarations visible in the
// namespace ordered by name.
func (r *Repository) EnumerateQualifierDecls(ns string) ([]*cim.QualifierDecl, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	found := map[string]bool{}
	var result []*cim.QualifierDecl
	for _, s := range v.chain {
		for k, d := range s.qualifiers {
			if !found[k] {
				found[k] = true
				result = append(result, d.Copy())
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return key(result[i].Name) < key(result[j].Name) })
	return result, nil
}

// InstallStandardQualifiers declares the standard qualifiers
// in a namespace.
func (r *Repository) InstallStandardQualifiers(ns string) error {
	for _, d := range cim.StandardQualifierDecls() {
		if err := r.SetQualifierDecl(ns, d); err != nil {
			return err
		}
	}
	return nil
}
