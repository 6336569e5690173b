package app

import (
	"fmt"
	"net/http"
	"path"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/repository/service"
)

type Associators struct {
	cmd *cobra.Command

	mainopts   *Options
	references bool
	names      bool
	output     string
	request    service.AssociationRequest
}

// NewAssociators provides the associators or, with references set,
// the references command.
func NewAssociators(opts *Options, references bool) *cobra.Command {
	kind := service.KIND_ASSOCIATORS
	short := "query objects associated with a class or instance"
	if references {
		kind = service.KIND_REFERENCES
		short = "query associations referring to a class or instance"
	}
	cmd := &cobra.Command{
		Use:   kind + " <object path> <options>",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	TweakCommand(cmd)

	c := &Associators{
		cmd:        cmd,
		mainopts:   opts,
		references: references,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.BoolVarP(&c.names, "names", "N", false, "query object paths only")
	flags.StringVarP(&c.output, "output", "o", "", "output format (table, json, yaml)")
	flags.StringVarP(&c.request.ResultClass, "result-class", "r", "", "result class")
	flags.StringVarP(&c.request.Role, "role", "R", "", "role of the source object")
	if !references {
		flags.StringVarP(&c.request.AssocClass, "assoc-class", "a", "", "association class")
		flags.StringVarP(&c.request.ResultRole, "result-role", "e", "", "role of the result objects")
	}
	return cmd
}

func (c *Associators) Run(args []string) error {
	ns := c.mainopts.namespace
	if ns == "" {
		return fmt.Errorf("namespace required")
	}
	source, err := cim.ParseObjectPath(args[0])
	if err != nil {
		return err
	}
	kind := service.KIND_ASSOCIATORS
	if c.references {
		kind = service.KIND_REFERENCES
	}
	req := c.request
	req.Source = source
	req.Names = c.names

	var result service.Items[service.Result]
	if _, err := c.mainopts.Call(http.MethodPost, path.Join(kind, ns), nil, &req, &result); err != nil {
		return err
	}

	var elems []any
	var rows [][]string
	for _, r := range result.Items {
		switch {
		case r.Path != nil:
			elems = append(elems, r.Path)
			rows = append(rows, []string{"path", r.Path.String()})
		case r.Class != nil:
			elems = append(elems, r.Class)
			rows = append(rows, []string{"class", r.Class.Name})
		case r.Instance != nil:
			elems = append(elems, r.Instance)
			rows = append(rows, []string{"instance", r.Instance.Path.String()})
		}
	}
	return Output(c.cmd.OutOrStdout(), c.output, true, elems, []string{"TYPE", "OBJECT"}, rows, "")
}
