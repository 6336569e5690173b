package database

import (
	"errors"
	"fmt"
)

// DeleteObjects deletes all objects of the given types in a namespace.
// Objects of nested namespaces are not affected.
func DeleteObjects[O Object](db Database[O], ns string, types ...string) error {
	if ns == "" {
		return fmt.Errorf("namespace required")
	}
	for _, t := range types {
		ids, err := db.ListObjectIds(t, ns)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := db.DeleteObject(id); err != nil && !errors.Is(err, ErrNotExist) {
				return err
			}
		}
		log.Debug("deleted {{count}} {{type}} objects of namespace {{namespace}}", "count", len(ids), "type", t, "namespace", ns)
	}
	return nil
}
