package filesystem

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/database"
)

var (
	nameExp      = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
	namespaceExp = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*(/[A-Za-z0-9_][A-Za-z0-9_-]*)*$`)
)

// CheckName checks whether a name can be used as file name.
func CheckName(name string) bool {
	return nameExp.MatchString(name) && !strings.HasSuffix(name, ".")
}

// CheckNamespace checks whether a namespace can be mapped
// to a directory path.
func CheckNamespace(ns string) bool {
	return namespaceExp.MatchString(ns)
}

// Path returns the relative file path of an object.
func Path(o database.ObjectId) string {
	return fmt.Sprintf("%s/%s/%s.yaml", o.GetType(), o.GetNamespace(), o.GetName())
}

func checkId(id database.ObjectId) error {
	if !CheckName(id.GetType()) {
		return fmt.Errorf("invalid object type %q", id.GetType())
	}
	if !CheckNamespace(id.GetNamespace()) {
		return fmt.Errorf("invalid namespace %q", id.GetNamespace())
	}
	if !CheckName(id.GetName()) {
		return fmt.Errorf("invalid object name %q", id.GetName())
	}
	return nil
}
