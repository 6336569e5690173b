package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/repository/service"
)

type Delete struct {
	cmd *cobra.Command

	mainopts *Options
	files    []string
}

func NewDelete(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <kind> {<name>} <options>",
		Short: "delete elements from the repository",
		Long: `
Elements are given by kind and names or by manifest files.
Instances are given by their object paths.
`,
	}
	TweakCommand(cmd)

	c := &Delete{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringSliceVarP(&c.files, "file", "f", nil, "manifest file (- for stdin)")
	return cmd
}

func (c *Delete) Run(args []string) error {
	if len(c.files) > 0 {
		if len(args) != 0 {
			return fmt.Errorf("no arguments expected for manifest files")
		}
		return HandleManifests(c.cmd, c.mainopts, c.files, "delete", c.manifest)
	}

	if len(args) < 2 {
		return fmt.Errorf("kind and names required")
	}
	kind, err := Kind(args[0])
	if err != nil {
		return err
	}
	ns := c.mainopts.namespace
	if kind != service.KIND_NAMESPACES && ns == "" {
		return fmt.Errorf("namespace required")
	}

	var cmderr error
	for _, n := range args[1:] {
		if err := c.delete(kind, ns, n); err != nil {
			fmt.Fprintf(c.cmd.ErrOrStderr(), "%s: %s\n", n, err.Error())
			cmderr = fmt.Errorf("delete failed for some elements")
			continue
		}
		fmt.Fprintf(c.cmd.OutOrStdout(), "%s: deleted\n", n)
	}
	return cmderr
}

func (c *Delete) delete(kind, ns, name string) error {
	var err error
	switch kind {
	case service.KIND_NAMESPACES:
		_, err = c.mainopts.Call(http.MethodDelete, path.Join(kind, name), nil, nil, nil)
	case service.KIND_INSTANCES:
		_, err = c.mainopts.Call(http.MethodDelete, path.Join(kind, ns), url.Values{"path": {name}}, nil, nil)
	default:
		_, err = c.mainopts.Call(http.MethodDelete, path.Join(kind, ns, name), nil, nil, nil)
	}
	return err
}

func (c *Delete) manifest(m *Manifest) (string, error) {
	var spec struct {
		Name string `json:"name"`
	}
	switch m.Kind {
	case service.KIND_INSTANCES:
		var inst cim.Instance
		if err := json.Unmarshal(m.Spec, &inst); err != nil {
			return "", err
		}
		var class cim.Class
		if _, err := c.mainopts.Call(http.MethodGet, path.Join(service.KIND_CLASSES, m.Namespace, inst.ClassName), nil, nil, &class); err != nil {
			return "", err
		}
		p, err := inst.BuildPath(&class)
		if err != nil {
			return "", err
		}
		spec.Name = p.String()
	default:
		if err := json.Unmarshal(m.Spec, &spec); err != nil {
			return "", err
		}
	}
	if err := c.delete(m.Kind, m.Namespace, spec.Name); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: deleted", spec.Name), nil
}
