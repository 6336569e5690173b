package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/cimrepository/pkg/repository"
	"github.com/mandelsoft/cimrepository/pkg/repository/service"
	"github.com/mandelsoft/cimrepository/pkg/watch"
)

type Watch struct {
	cmd *cobra.Command

	mainopts *Options
	typ      string
}

func NewWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch {<namespace>} <options>",
		Short: "watch modifications of the repository",
		Long: `
Prints the modification events of the given namespaces, the
namespace of the command or, if none is given, all namespaces.
`,
	}
	TweakCommand(cmd)

	c := &Watch{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringVarP(&c.typ, "type", "t", "", "element type (namespace, qualifier, class, instance)")
	return cmd
}

func (c *Watch) Run(args []string) error {
	u, err := url.Parse(c.mainopts.GetURL())
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	req := service.WatchRequest{Type: c.typ, Namespaces: args}
	if len(args) == 0 && c.mainopts.namespace != "" {
		req.Namespaces = []string{c.mainopts.namespace}
	}

	client := watch.NewClient[service.WatchRequest, repository.Event](u.String() + service.KIND_WATCH)
	s, err := client.Register(c.cmd.Context(), req, &handler{c.cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	return s.Wait()
}

type handler struct {
	w io.Writer
}

func (h *handler) HandleEvent(e repository.Event) {
	data, _ := json.Marshal(e)
	fmt.Fprintf(h.w, "%s\n", string(data))
}
