// Package boltdb provides an object store kept in a single bolt
// bucket. Keys are composed of type, namespace and name.
package boltdb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/boltdb/bolt"
	"github.com/mandelsoft/logging"

	"github.com/mandelsoft/cimrepository/pkg/database"
)

var REALM = logging.DefineRealm("cim/database/boltdb", "bolt based object store")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

const DefaultBucket = "cim"

const sep = "\x00"

type Database[O database.Object] struct {
	scheme database.Scheme[O]
	path   string
	bucket []byte
	db     *bolt.DB
}

var _ database.Database[database.Object] = (*Database[database.Object])(nil)

func New[O database.Object](s database.Scheme[O], spec *Specification[O]) (*Database[O], error) {
	if spec.Path == "" {
		return nil, os.ErrInvalid
	}
	bucket := spec.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}

	db, err := bolt.Open(spec.Path, 0o600, &bolt.Options{ReadOnly: spec.ReadOnly})
	if err != nil {
		return nil, err
	}
	db.NoSync = spec.NoSync

	if !spec.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			return err
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	log.Debug("using bolt store {{path}}", "path", spec.Path, "bucket", bucket)
	return &Database[O]{scheme: s, path: spec.Path, bucket: []byte(bucket), db: db}, nil
}

func Key(id database.ObjectId) []byte {
	return []byte(id.GetType() + sep + id.GetNamespace() + sep + id.GetName())
}

func prefix(typ, ns string) []byte {
	if ns == "" {
		return []byte(typ + sep)
	}
	return []byte(typ + sep + ns + sep)
}

func parseKey(k []byte) (database.ObjectId, error) {
	f := strings.Split(string(k), sep)
	if len(f) != 3 {
		return nil, fmt.Errorf("corrupted database: invalid key %q", string(k))
	}
	return database.NewObjectId(f[0], f[1], f[2]), nil
}

func checkId(id database.ObjectId) error {
	for _, f := range []string{id.GetType(), id.GetNamespace(), id.GetName()} {
		if f == "" || strings.Contains(f, sep) {
			return fmt.Errorf("invalid object id %q", database.StringId(id))
		}
	}
	return nil
}

func (d *Database[O]) Scheme() database.Scheme[O] {
	return d.scheme
}

func (d *Database[O]) ListObjectIds(typ, ns string) ([]database.ObjectId, error) {
	var result []database.ObjectId
	err := d.iterate(typ, ns, func(k, v []byte) error {
		id, err := parseKey(k)
		if err == nil {
			result = append(result, id)
		}
		return err
	})
	return result, err
}

func (d *Database[O]) ListObjects(typ, ns string) ([]O, error) {
	var result []O
	err := d.iterate(typ, ns, func(k, v []byte) error {
		o, err := d.decode(k, v)
		if err == nil {
			result = append(result, o)
		}
		return err
	})
	return result, err
}

func (d *Database[O]) iterate(typ, ns string, f func(k, v []byte) error) error {
	p := prefix(typ, ns)
	return d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(d.bucket).Cursor()
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			if err := f(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Database[O]) decode(k, v []byte) (O, error) {
	var _nil O

	o, err := d.scheme.Decode(v)
	if err != nil {
		return _nil, fmt.Errorf("%q: %w", string(k), err)
	}
	if !bytes.Equal(Key(o), k) {
		return _nil, fmt.Errorf("corrupted database: entry %q does not contain object with id %s", string(k), database.StringId(o))
	}
	return o, nil
}

func (d *Database[O]) GetObject(id database.ObjectId) (O, error) {
	var value []byte

	key := Key(id)
	err := d.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(d.bucket).Get(key); v != nil {
			value = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		var _nil O
		return _nil, err
	}
	if value == nil {
		var _nil O
		return _nil, fmt.Errorf("%s: %w", database.StringId(id), database.ErrNotExist)
	}
	return d.decode(key, value)
}

func (d *Database[O]) SetObject(o O) error {
	if err := checkId(o); err != nil {
		return err
	}
	data, err := d.scheme.Encode(o)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(d.bucket).Put(Key(o), data)
	})
}

func (d *Database[O]) DeleteObject(id database.ObjectId) error {
	key := Key(id)
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(d.bucket)
		if b.Get(key) == nil {
			return fmt.Errorf("%s: %w", database.StringId(id), database.ErrNotExist)
		}
		return b.Delete(key)
	})
}

func (d *Database[O]) Close() error {
	if err := d.db.Close(); err != nil && !errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return err
	}
	return nil
}
