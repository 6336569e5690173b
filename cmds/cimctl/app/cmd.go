package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"

	"github.com/mandelsoft/cimrepository/pkg/utils"
)

type Options struct {
	address   string
	namespace string
	fs        vfs.FileSystem
	client    *http.Client
}

// GetURL provides the base url of the repository service.
func (o *Options) GetURL() string {
	a := o.address
	if !strings.HasPrefix(a, "http://") && !strings.HasPrefix(a, "https://") {
		a = "http://" + a
	}
	if !strings.HasSuffix(a, "/") {
		a += "/"
	}
	return a + "cim/"
}

// Do executes a request for a service path. The body is sent as JSON.
func (o *Options) Do(method, path string, query url.Values, body any) (*http.Response, error) {
	var data io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		data = bytes.NewReader(b)
	}
	u := o.GetURL() + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, data)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return o.client.Do(req)
}

// Call executes a request and decodes the response into result, if given.
func (o *Options) Call(method, path string, query url.Values, body any, result any) (*http.Response, error) {
	resp, err := o.Do(method, path, query, body)
	if err != nil {
		return nil, err
	}
	data, err := ResponseData(resp)
	if err != nil {
		return resp, err
	}
	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func New(fss ...vfs.FileSystem) *cobra.Command {
	cfg := GetConfig()
	opts := &Options{
		fs:        utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...),
		address:   *cfg.Server,
		namespace: *cfg.Namespace,
		client:    http.DefaultClient,
	}

	maincmd := &cobra.Command{
		Use:   "cimctl <options> <cmd> <args>",
		Short: "access a CIM schema repository",
		Long: `
This command can be used to manipulate and query the namespaces,
qualifier declarations, classes and instances of a CIM repository
server. The server and the default namespace are taken from the
config files $HOME/.cimctl, <user config dir>/.cimctl and ./.cimctl
and the environment variables CIM_SERVER and CIM_NAMESPACE.
`,
		Run:              nil,
		TraverseChildren: true,
		SilenceUsage:     true,
		SilenceErrors:    true,
	}

	flags := maincmd.PersistentFlags()
	flags.StringVarP(&opts.namespace, "namespace", "n", opts.namespace, "namespace for operation")
	flags.StringVarP(&opts.address, "server", "s", opts.address, "repository server")

	maincmd.AddCommand(NewGet(opts))
	maincmd.AddCommand(NewApply(opts))
	maincmd.AddCommand(NewDelete(opts))
	maincmd.AddCommand(NewAssociators(opts, false))
	maincmd.AddCommand(NewAssociators(opts, true))
	maincmd.AddCommand(NewWatch(opts))
	return maincmd
}

func TweakCommand(cmd *cobra.Command) {
	cmd.DisableFlagsInUseLine = true
	cmd.SilenceUsage = true
}
