package filesystem

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

var REALM = logging.DefineRealm("cim/database/filesystem", "file system based object store")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

const suffix = ".yaml"

// Database stores every object as YAML file
// <type>/<namespace>/<name>.yaml below a root directory.
type Database[O database.Object] struct {
	lock   sync.RWMutex
	scheme database.Scheme[O]
	path   string
	fs     vfs.FileSystem
}

var _ database.Database[database.Object] = (*Database[database.Object])(nil)

func New[O database.Object](s database.Scheme[O], path string, fss ...vfs.FileSystem) (*Database[O], error) {
	fs := utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...)

	err := fs.MkdirAll(path, 0o700)
	if err != nil && !errors.Is(err, vfs.ErrExist) {
		return nil, err
	}
	log.Debug("using file system store {{path}}", "path", path)
	return &Database[O]{scheme: s, path: path, fs: fs}, nil
}

func (d *Database[O]) Scheme() database.Scheme[O] {
	return d.scheme
}

func (d *Database[O]) ListObjectIds(typ, ns string) ([]database.ObjectId, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.list(typ, ns, ns == "")
}

func (d *Database[O]) ListObjects(typ, ns string) ([]O, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	ids, err := d.list(typ, ns, ns == "")
	if err != nil {
		return nil, err
	}
	result := make([]O, 0, len(ids))
	for _, id := range ids {
		o, err := d.get(id)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

func (d *Database[O]) list(typ, ns string, closure bool) ([]database.ObjectId, error) {
	var result []database.ObjectId

	list, err := vfs.ReadDir(d.fs, d.Path(path.Join(typ, ns)))
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	for _, e := range list {
		if e.IsDir() {
			if closure {
				r, err := d.list(typ, path.Join(ns, e.Name()), true)
				if err != nil {
					return nil, err
				}
				result = append(result, r...)
			}
			continue
		}
		if ns != "" && strings.HasSuffix(e.Name(), suffix) {
			result = append(result, database.NewObjectId(typ, ns, strings.TrimSuffix(e.Name(), suffix)))
		}
	}
	return result, nil
}

func (d *Database[O]) GetObject(id database.ObjectId) (O, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.get(id)
}

func (d *Database[O]) get(id database.ObjectId) (O, error) {
	var _nil O

	if err := checkId(id); err != nil {
		return _nil, err
	}
	p := d.OPath(id)
	data, err := vfs.ReadFile(d.fs, p)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return _nil, fmt.Errorf("%s: %w", database.StringId(id), database.ErrNotExist)
		}
		return _nil, err
	}
	o, err := d.scheme.Decode(data)
	if err != nil {
		return _nil, fmt.Errorf("%s: %w", p, err)
	}
	if !database.EqualObjectId(o, id) {
		return _nil, fmt.Errorf("corrupted database: %s does not contain object with id %s", p, database.StringId(id))
	}
	return o, nil
}

func (d *Database[O]) SetObject(o O) error {
	if err := checkId(o); err != nil {
		return err
	}
	data, err := d.scheme.Encode(o)
	if err != nil {
		return err
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	p := d.OPath(o)
	err = d.fs.MkdirAll(path.Dir(p), 0o700)
	if err != nil {
		return err
	}
	return vfs.WriteFile(d.fs, p, data, 0o600)
}

func (d *Database[O]) DeleteObject(id database.ObjectId) error {
	if err := checkId(id); err != nil {
		return err
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	err := d.fs.Remove(d.OPath(id))
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return fmt.Errorf("%s: %w", database.StringId(id), database.ErrNotExist)
		}
		return err
	}
	return nil
}

func (d *Database[O]) Close() error {
	return nil
}

func (d *Database[O]) Path(p string) string {
	return path.Join(d.path, p)
}

func (d *Database[O]) OPath(id database.ObjectId) string {
	return path.Join(d.path, Path(id))
}
