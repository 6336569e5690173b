package app

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
	"github.com/mandelsoft/cimrepository/pkg/repository/service"
)

// Kind maps the kind names accepted on the command line to the
// kinds of the repository service.
func Kind(name string) (string, error) {
	switch strings.ToLower(name) {
	case "ns", "namespace", "namespaces":
		return service.KIND_NAMESPACES, nil
	case "qualifier", "qualifiers":
		return service.KIND_QUALIFIERS, nil
	case "class", "classes":
		return service.KIND_CLASSES, nil
	case "instance", "instances":
		return service.KIND_INSTANCES, nil
	}
	return "", fmt.Errorf("unknown kind %q", name)
}

type Get struct {
	cmd *cobra.Command

	mainopts *Options
	sort     string
	output   string
	class    string
	deep     bool
	local    bool
	props    []string
}

func NewGet(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <kind> {<name>} <options>",
		Short: "get namespaces, qualifiers, classes or instances",
		Long: `
Without names all elements of the given kind in the namespace are
listed. Instances are given by their object paths and listed
for a class.
`,
		Args: cobra.MinimumNArgs(1),
	}
	TweakCommand(cmd)

	c := &Get{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringVarP(&c.sort, "sort", "S", "", "sort field")
	flags.StringVarP(&c.output, "output", "o", "", "output format (table, json, yaml)")
	flags.StringVarP(&c.class, "class", "c", "", "class for enumerations")
	flags.BoolVarP(&c.deep, "deep", "d", false, "include derived classes")
	flags.BoolVarP(&c.local, "local-only", "l", false, "only local elements")
	flags.StringSliceVarP(&c.props, "property", "p", nil, "requested properties")
	return cmd
}

func (c *Get) query() url.Values {
	q := url.Values{}
	if c.class != "" {
		q.Set("class", c.class)
	}
	if c.deep {
		q.Set("deep", "true")
	}
	if c.local {
		q.Set("localOnly", "true")
	}
	if len(c.props) > 0 {
		q.Set("propertyList", strings.Join(c.props, ","))
	}
	return q
}

func (c *Get) Run(args []string) error {
	kind, err := Kind(args[0])
	if err != nil {
		return err
	}
	names := args[1:]
	ns := c.mainopts.namespace
	if kind != service.KIND_NAMESPACES && ns == "" {
		return fmt.Errorf("namespace required")
	}

	var (
		elems   []any
		rows    [][]string
		columns []string
	)
	list := len(names) != 1
	opts := c.mainopts

	switch kind {
	case service.KIND_NAMESPACES:
		columns = []string{"NAME", "PARENT", "SHAREABLE", "UPDATES"}
		if len(names) == 0 {
			var l service.Items[string]
			p := kind
			if ns != "" {
				p = path.Join(kind, ns)
			}
			if _, err := opts.Call(service.METHOD_LIST, p, nil, nil, &l); err != nil {
				return err
			}
			names = l.Items
		}
		for _, n := range names {
			var e namespace.Namespace
			if _, err := opts.Call(http.MethodGet, path.Join(kind, n), nil, nil, &e); err != nil {
				return fmt.Errorf("%s: %w", n, err)
			}
			elems = append(elems, &e)
			rows = append(rows, []string{e.Name, e.Parent, strconv.FormatBool(e.Shareable), strconv.FormatBool(e.UpdatesAllowed)})
		}

	case service.KIND_QUALIFIERS:
		columns = []string{"NAME", "TYPE", "SCOPE", "FLAVOR", "DEFAULT"}
		var decls []*cim.QualifierDecl
		if len(names) == 0 {
			var l service.Items[*cim.QualifierDecl]
			if _, err := opts.Call(service.METHOD_LIST, path.Join(kind, ns), nil, nil, &l); err != nil {
				return err
			}
			decls = l.Items
		}
		for _, n := range names {
			var d cim.QualifierDecl
			if _, err := opts.Call(http.MethodGet, path.Join(kind, ns, n), nil, nil, &d); err != nil {
				return fmt.Errorf("%s: %w", n, err)
			}
			decls = append(decls, &d)
		}
		for _, d := range decls {
			elems = append(elems, d)
			rows = append(rows, []string{d.Name, typeName(d.Value), d.Scope.String(), d.Flavor.String(), d.Value.String()})
		}

	case service.KIND_CLASSES:
		columns = []string{"NAME", "SUPERCLASS", "PROPERTIES", "METHODS"}
		var classes []*cim.Class
		if len(names) == 0 {
			var l service.Items[*cim.Class]
			if _, err := opts.Call(service.METHOD_LIST, path.Join(kind, ns), c.query(), nil, &l); err != nil {
				return err
			}
			classes = l.Items
		}
		for _, n := range names {
			var e cim.Class
			if _, err := opts.Call(http.MethodGet, path.Join(kind, ns, n), c.query(), nil, &e); err != nil {
				return fmt.Errorf("%s: %w", n, err)
			}
			classes = append(classes, &e)
		}
		for _, e := range classes {
			elems = append(elems, e)
			rows = append(rows, []string{e.Name, e.SuperClass, strconv.Itoa(len(e.Properties)), strconv.Itoa(len(e.Methods))})
		}

	case service.KIND_INSTANCES:
		columns = []string{"PATH"}
		var instances []*cim.Instance
		if len(names) == 0 {
			if c.class == "" {
				return fmt.Errorf("class required to list instances")
			}
			var l service.Items[*cim.Instance]
			if _, err := opts.Call(service.METHOD_LIST, path.Join(kind, ns), c.query(), nil, &l); err != nil {
				return err
			}
			instances = l.Items
		}
		for _, n := range names {
			q := c.query()
			q.Set("path", n)
			var e cim.Instance
			if _, err := opts.Call(http.MethodGet, path.Join(kind, ns), q, nil, &e); err != nil {
				return fmt.Errorf("%s: %w", n, err)
			}
			instances = append(instances, &e)
		}
		for _, e := range instances {
			elems = append(elems, e)
			rows = append(rows, []string{e.Path.String()})
		}
	}
	return Output(c.cmd.OutOrStdout(), c.output, list, elems, columns, rows, c.sort)
}

func typeName(v cim.Value) string {
	if v.IsArray() {
		return v.Type().String() + "[]"
	}
	return v.Type().String()
}
