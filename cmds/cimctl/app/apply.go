package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/repository/service"
)

// Manifest describes an element to apply. Without namespace the
// namespace of the command is used.
type Manifest struct {
	Kind      string          `json:"kind"`
	Namespace string          `json:"namespace,omitempty"`
	Spec      json.RawMessage `json:"spec"`
}

type ManifestList struct {
	Items []Manifest `json:"items"`
}

type Apply struct {
	cmd *cobra.Command

	mainopts *Options
	files    []string
}

func NewApply(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <options>",
		Short: "apply manifests to the repository",
		Long: `
A manifest file contains a single manifest or a list of manifests
below the field items. A manifest has the fields kind, namespace
and spec. Existing elements are modified.
`,
		TraverseChildren: true,
	}

	c := &Apply{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringSliceVarP(&c.files, "file", "f", nil, "manifest file (- for stdin)")
	return cmd
}

func (c *Apply) Run(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("no arguments expected")
	}
	return HandleManifests(c.cmd, c.mainopts, c.files, "apply", c.apply)
}

// HandleManifests reads the manifest files and calls the handler for
// every manifest.
func HandleManifests(cmd *cobra.Command, opts *Options, files []string, action string, h func(m *Manifest) (string, error)) error {
	var cmderr error

	for _, f := range files {
		var data []byte
		var err error

		if f == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = vfs.ReadFile(opts.fs, f)
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cannot read file %q: %s\n", f, err.Error())
			cmderr = fmt.Errorf("%s failed for some manifests", action)
			continue
		}

		list, multi, err := parseManifests(data)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cannot unmarshal file %q: %s\n", f, err.Error())
			cmderr = fmt.Errorf("%s failed for some manifests", action)
			continue
		}

		for i := range list {
			m := &list[i]
			if m.Namespace == "" {
				m.Namespace = opts.namespace
			}
			kind, err := Kind(m.Kind)
			if err == nil {
				m.Kind = kind
				if kind != service.KIND_NAMESPACES && m.Namespace == "" {
					err = fmt.Errorf("namespace required")
				}
			}
			if err != nil {
				cmderr = IndexError(cmd, multi, i, f, action, "invalid manifest", err)
				continue
			}
			msg, err := h(m)
			if err != nil {
				cmderr = IndexError(cmd, multi, i, f, action, fmt.Sprintf("%s failed", action), err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", msg)
		}
	}
	return cmderr
}

func parseManifests(data []byte) ([]Manifest, bool, error) {
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, false, err
	}
	if _, ok := m["items"]; ok && len(m) == 1 {
		var list ManifestList
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, false, err
		}
		return list.Items, true, nil
	}
	var single Manifest
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, false, err
	}
	return []Manifest{single}, false, nil
}

func (c *Apply) apply(m *Manifest) (string, error) {
	opts := c.mainopts
	switch m.Kind {
	case service.KIND_NAMESPACES:
		var spec service.NamespaceRequest
		if err := json.Unmarshal(m.Spec, &spec); err != nil {
			return "", err
		}
		id := fmt.Sprintf("namespace %s", spec.Name)
		_, err := opts.Call(http.MethodPost, m.Kind, nil, &spec, nil)
		if IsStatus(err, http.StatusConflict) {
			_, err = opts.Call(http.MethodPut, path.Join(m.Kind, spec.Name), nil, &spec.Attributes, nil)
			return id + ": updated", err
		}
		return id + ": created", err

	case service.KIND_QUALIFIERS:
		var spec cim.QualifierDecl
		if err := json.Unmarshal(m.Spec, &spec); err != nil {
			return "", err
		}
		_, err := opts.Call(http.MethodPost, path.Join(m.Kind, m.Namespace), nil, &spec, nil)
		return fmt.Sprintf("qualifier %s/%s: applied", m.Namespace, spec.Name), err

	case service.KIND_CLASSES:
		var spec cim.Class
		if err := json.Unmarshal(m.Spec, &spec); err != nil {
			return "", err
		}
		id := fmt.Sprintf("class %s/%s", m.Namespace, spec.Name)
		_, err := opts.Call(http.MethodPost, path.Join(m.Kind, m.Namespace), nil, &spec, nil)
		if IsStatus(err, http.StatusConflict) {
			_, err = opts.Call(http.MethodPut, path.Join(m.Kind, m.Namespace), nil, &spec, nil)
			return id + ": updated", err
		}
		return id + ": created", err

	default:
		var spec cim.Instance
		if err := json.Unmarshal(m.Spec, &spec); err != nil {
			return "", err
		}
		var p cim.ObjectPath
		_, err := opts.Call(http.MethodPost, path.Join(m.Kind, m.Namespace), nil, &spec, &p)
		if IsStatus(err, http.StatusConflict) {
			_, err = opts.Call(http.MethodPut, path.Join(m.Kind, m.Namespace), nil, &spec, nil)
			return fmt.Sprintf("instance of %s in %s: updated", spec.ClassName, m.Namespace), err
		}
		return fmt.Sprintf("instance %s: created", p), err
	}
}

func IndexError(c *cobra.Command, multi bool, index int, file string, action string, msg string, err error) error {
	if multi {
		fmt.Fprintf(c.ErrOrStderr(), "%s for manifest %d in %q: %s\n", msg, index+1, file, err.Error())
	} else {
		fmt.Fprintf(c.ErrOrStderr(), "%s for %q: %s\n", msg, file, err.Error())
	}
	return fmt.Errorf("%s failed for some manifests", action)
}
