package repository

import (
	"sort"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/locks"
	"github.com/mandelsoft/cimrepository/pkg/resolver"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

// CreateInstance resolves and stores a new instance and returns
// its path.
func (r *Repository) CreateInstance(ns string, inst *cim.Instance) (cim.ObjectPath, error) {
	v, unlock, err := r.access(ns, locks.Write)
	if err != nil {
		return cim.ObjectPath{}, err
	}
	defer unlock()

	s := v.local()
	class, ok := v.LookupClass(inst.ClassName)
	if !ok {
		return cim.ObjectPath{}, cimerr.New(cimerr.InvalidClass, "class %q not found", inst.ClassName)
	}
	if !class.HasKeys() {
		return cim.ObjectPath{}, cimerr.New(cimerr.InvalidParameter, "class %q has no keys", class.Name)
	}
	resolved, err := resolver.ResolveInstance(v, class, inst)
	if err != nil {
		return cim.ObjectPath{}, err
	}
	if err := v.normalizeInstance(resolved, class); err != nil {
		return cim.ObjectPath{}, err
	}
	if s.instances[resolved.Path.Key()] != nil {
		return cim.ObjectPath{}, cimerr.New(cimerr.AlreadyExists, "instance %s already exists", resolved.Path)
	}
	if err := r.store(newInstanceRecord(s.name, resolved)); err != nil {
		return cim.ObjectPath{}, err
	}
	s.addInstance(resolved, class)
	log.Debug("created instance {{instance}} in {{namespace}}", "instance", resolved.Path, "namespace", s.name)
	r.trigger(TYPE_INSTANCE, s.name, resolved.Path.String(), OP_CREATED)
	return r.externalPath(s.name, resolved.Path), nil
}

// instancePath types the key bindings of an instance path according
// to the key properties of its class.
func (v *view) instancePath(p cim.ObjectPath) cim.ObjectPath {
	if p.IsClassPath() {
		return p
	}
	if c, ok := v.LookupClass(p.ClassName()); ok {
		return p.Retype(c)
	}
	return p
}

// normalizeInstance types the reference values of a resolved instance
// according to the referenced classes and builds its path.
func (v *view) normalizeInstance(i *cim.Instance, class *cim.Class) error {
	for j := range i.Properties {
		p := &i.Properties[j]
		if !p.IsReference() || p.Value.IsNull() {
			continue
		}
		if target, err := p.Value.GetReference(); err == nil {
			p.Value = cim.NewReference(v.instancePath(target))
		}
	}
	path, err := i.BuildPath(class)
	if err != nil {
		return err
	}
	i.Path = path
	return nil
}

func (v *view) getInstance(p cim.ObjectPath) (*cim.Instance, error) {
	return v.local().getInstance(v.instancePath(p))
}

func (s *nsState) getInstance(p cim.ObjectPath) (*cim.Instance, error) {
	if p.IsClassPath() {
		return nil, cimerr.New(cimerr.InvalidParameter, "instance path required: %s", p)
	}
	i := s.instances[p.Key()]
	if i == nil {
		return nil, cimerr.ErrNotFound(cimerr.OBJ_INSTANCE, p.String())
	}
	return i, nil
}

func (r *Repository) GetInstance(ns string, p cim.ObjectPath, opts ...Options) (*cim.Instance, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	i, err := v.getInstance(p)
	if err != nil {
		return nil, err
	}
	return r.exportInstance(v.local().name, i, utils.Optional(opts...)), nil
}

func (r *Repository) exportInstance(ns string, i *cim.Instance, opts Options) *cim.Instance {
	i = opts.Instance(i)
	i.Path = r.externalPath(ns, i.Path)
	return i
}

// ModifyInstance replaces the properties of an existing instance.
// If a property list is given, only the listed properties are taken
// from the modified instance; listed properties it does not contain
// are reset to the class default. Key properties cannot be changed.
func (r *Repository) ModifyInstance(ns string, inst *cim.Instance, propertyList ...[]string) error {
	v, unlock, err := r.access(ns, locks.Write)
	if err != nil {
		return err
	}
	defer unlock()
	return r.modifyInstance(v, inst, utils.Optional(propertyList...))
}

func (r *Repository) modifyInstance(v *view, inst *cim.Instance, propertyList []string) error {
	s := v.local()
	class, ok := v.LookupClass(inst.ClassName)
	if !ok {
		return cimerr.New(cimerr.InvalidClass, "class %q not found", inst.ClassName)
	}

	path := inst.Path
	if path.IsZero() {
		var err error
		if path, err = inst.BuildPath(class); err != nil {
			return err
		}
	}
	old, err := v.getInstance(path)
	if err != nil {
		return err
	}

	modified := &cim.Instance{ClassName: inst.ClassName, Qualifiers: inst.Qualifiers.Local()}
	if propertyList == nil {
		for _, p := range inst.Properties {
			modified.Properties = append(modified.Properties, localProperty(p))
		}
	} else {
		modified.Qualifiers = old.Qualifiers.Local()
		for _, p := range old.Properties {
			if !p.Propagated {
				modified.Properties = append(modified.Properties, p)
			}
		}
		for _, n := range propertyList {
			if _, ok := class.Properties.Get(n); !ok {
				return cimerr.New(cimerr.InvalidParameter, "property %q not declared in class %q", n, class.Name)
			}
			if p, ok := inst.Properties.Get(n); ok {
				modified.Properties.Set(localProperty(*p))
			} else {
				modified.Properties.Remove(n)
			}
		}
	}

	resolved, err := resolver.ResolveInstance(v, class, modified)
	if err != nil {
		return err
	}
	if err := v.normalizeInstance(resolved, class); err != nil {
		return err
	}
	if !resolved.Path.Equal(old.Path) {
		return cimerr.New(cimerr.InvalidParameter, "key properties of instance %s cannot be modified", old.Path)
	}
	resolved.Path = old.Path
	if err := r.store(newInstanceRecord(s.name, resolved)); err != nil {
		return err
	}
	s.removeInstance(old.Path)
	s.addInstance(resolved, class)
	log.Debug("modified instance {{instance}} in {{namespace}}", "instance", old.Path, "namespace", s.name)
	r.trigger(TYPE_INSTANCE, s.name, old.Path.String(), OP_MODIFIED)
	return nil
}

// localProperty turns a supplied property into a local value of
// the modified instance.
func localProperty(p cim.Property) cim.Property {
	p = p.Copy()
	p.Propagated = false
	p.ClassOrigin = ""
	return p
}

func (r *Repository) DeleteInstance(ns string, p cim.ObjectPath) error {
	v, unlock, err := r.access(ns, locks.Write)
	if err != nil {
		return err
	}
	defer unlock()

	s := v.local()
	i, err := v.getInstance(p)
	if err != nil {
		return err
	}
	if err := r.remove(instanceId(s.name, i.Path)); err != nil {
		return err
	}
	s.removeInstance(i.Path)
	log.Debug("deleted instance {{instance}} in {{namespace}}", "instance", i.Path, "namespace", s.name)
	r.trigger(TYPE_INSTANCE, s.name, i.Path.String(), OP_DELETED)
	return nil
}

// instancesOf returns the instances of a class and, with deep, of
// all derived classes in order of their paths.
func (v *view) instancesOf(className string, deep bool) ([]*cim.Instance, error) {
	if _, err := v.getClass(className); err != nil {
		return nil, err
	}
	s := v.local()
	var result []*cim.Instance
	for _, c := range v.classNames(className, deep) {
		for _, k := range s.classInstances[c].UnsortedList() {
			result = append(result, s.instances[k])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path.Key() < result[j].Path.Key() })
	return result, nil
}

func (r *Repository) EnumerateInstanceNames(ns, className string, deep bool) ([]cim.ObjectPath, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list, err := v.instancesOf(className, deep)
	if err != nil {
		return nil, err
	}
	result := make([]cim.ObjectPath, len(list))
	for i, e := range list {
		result[i] = r.externalPath(v.local().name, e.Path)
	}
	return result, nil
}

func (r *Repository) EnumerateInstances(ns, className string, deep bool, opts ...Options) ([]*cim.Instance, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list, err := v.instancesOf(className, deep)
	if err != nil {
		return nil, err
	}
	o := utils.Optional(opts...)
	result := make([]*cim.Instance, len(list))
	for i, e := range list {
		result[i] = r.exportInstance(v.local().name, e, o)
	}
	return result, nil
}

// GetProperty returns the value of a property of an instance.
func (r *Repository) GetProperty(ns string, p cim.ObjectPath, name string) (cim.Value, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return cim.Value{}, err
	}
	defer unlock()

	i, err := v.getInstance(p)
	if err != nil {
		return cim.Value{}, err
	}
	value, ok := i.GetValue(name)
	if !ok {
		return cim.Value{}, cimerr.ErrNotFound(cimerr.OBJ_PROPERTY, name)
	}
	return value, nil
}

// SetProperty sets the value of a non-key property of an instance.
func (r *Repository) SetProperty(ns string, p cim.ObjectPath, name string, value cim.Value) error {
	v, unlock, err := r.access(ns, locks.Write)
	if err != nil {
		return err
	}
	defer unlock()

	i, err := v.getInstance(p)
	if err != nil {
		return err
	}
	if _, ok := i.Properties.Get(name); !ok {
		return cimerr.ErrNotFound(cimerr.OBJ_PROPERTY, name)
	}
	mod := cim.NewInstance(i.ClassName).SetProperty(name, value)
	mod.Path = i.Path
	return r.modifyInstance(v, mod, []string{name})
}
