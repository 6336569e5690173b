// Package service provides http access to a repository.
//
// Elements are addressed by /<kind>/<namespace...>[/<name>] below
// the configured prefix. Instances are addressed by their object
// path given by the query parameter "path". LIST enumerates elements,
// POST creates them and PUT modifies them.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/ctxutil"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
	"github.com/mandelsoft/cimrepository/pkg/repository"
	"github.com/mandelsoft/cimrepository/pkg/server"
	"github.com/mandelsoft/cimrepository/pkg/utils"
	"github.com/mandelsoft/cimrepository/pkg/watch"
)

const METHOD_LIST = "LIST"

// RequestId provides the id of the request handled with a context.
var RequestId = ctxutil.NewValueKey[string]("requestId")

type RepositoryAccess struct {
	repository *repository.Repository
	prefix     string
	started    utils.Timestamp
	watch      *watch.RequestHandler[WatchRequest, repository.Event]
}

func New(repo *repository.Repository, prefix string) *RepositoryAccess {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &RepositoryAccess{
		repository: repo,
		prefix:     prefix,
		started:    utils.NewTimestamp(),
		watch:      watch.WatchHttpHandler[WatchRequest, repository.Event](&watchRegistry{repo}),
	}
}

// RegisterHandler registers the repository access and the
// websocket watch endpoint <prefix>watch.
func (a *RepositoryAccess) RegisterHandler(srv *server.Server) {
	srv.Handle(a.prefix, a)
	srv.Handle(a.prefix+KIND_WATCH, a.watch)
}

// Watchers returns the number of open watch connections.
func (a *RepositoryAccess) Watchers() int {
	return a.watch.Connections()
}

// Close closes the open watch connections.
func (a *RepositoryAccess) Close() error {
	return a.watch.Close()
}

// request describes an incoming request.
type request struct {
	ctx    context.Context
	method string
	kind   string
	path   []string
	query  url.Values
	header http.Header
	body   io.Reader
}

func (r *request) namespace() string {
	return strings.Join(r.path, "/")
}

// split separates the namespace and the element name.
func (r *request) split() (string, string, error) {
	if len(r.path) < 2 {
		return "", "", newHTTPError(http.StatusBadRequest, "namespace and name required")
	}
	return strings.Join(r.path[:len(r.path)-1], "/"), r.path[len(r.path)-1], nil
}

// response is the result of a request.
type response struct {
	status   int
	data     any
	etag     bool
	location string
}

func ok(data any) *response {
	return &response{status: http.StatusOK, data: data, etag: true}
}

func (a *RepositoryAccess) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id := uuid.NewString()
	w.Header().Set(HEADER_REQUEST_ID, id)

	comps := strings.Split(strings.Trim(strings.TrimPrefix(req.URL.Path, a.prefix), "/"), "/")
	r := &request{
		ctx:    RequestId.WithValue(req.Context(), id),
		method: req.Method,
		kind:   comps[0],
		query:  req.URL.Query(),
		header: req.Header,
		body:   req.Body,
	}
	for _, c := range comps[1:] {
		if c != "" {
			r.path = append(r.path, c)
		}
	}
	log.Debug("{{method}} {{kind}} {{path}}", "method", r.method, "kind", r.kind, "path", r.namespace(), "request", id)

	resp, err := a.handle(r)
	if err != nil {
		status := StatusCode(err)
		log.Debug("request {{request}} failed: {{error}}", "request", id, "status", status, "error", err)
		a.write(w, req, &response{status: status, data: &Error{Error: err.Error(), Kind: errorKind(err), RequestId: id}})
		return
	}
	a.write(w, req, resp)
}

func (a *RepositoryAccess) write(w http.ResponseWriter, req *http.Request, resp *response) {
	var data []byte
	if resp.data != nil {
		var err error
		data, err = json.Marshal(resp.data)
		if err != nil {
			resp = &response{status: http.StatusInternalServerError}
			data, _ = json.Marshal(&Error{Error: err.Error()})
		}
	}
	if resp.etag && data != nil {
		etag := strconv.Quote(utils.HashData(data))
		w.Header().Set(HEADER_ETAG, etag)
		if req.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	if resp.location != "" {
		w.Header().Set(HEADER_LOCATION, resp.location)
	}
	if data != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.status)
	if data != nil {
		w.Write(data)
	}
}

func (a *RepositoryAccess) handle(r *request) (*response, error) {
	log.Trace("handling request {{request}}", "request", RequestId.Get(r.ctx))
	switch r.kind {
	case KIND_STATUS:
		return a.handleStatus(r)
	case KIND_NAMESPACES:
		return a.handleNamespaces(r)
	case KIND_QUALIFIERS:
		return a.handleQualifiers(r)
	case KIND_CLASSES:
		return a.handleClasses(r)
	case KIND_INSTANCES:
		return a.handleInstances(r)
	case KIND_ASSOCIATORS, KIND_REFERENCES:
		return a.handleAssociations(r)
	}
	return nil, newHTTPError(http.StatusNotFound, fmt.Sprintf("unknown element kind %q", r.kind))
}

func methodNotAllowed(r *request) error {
	return newHTTPError(http.StatusMethodNotAllowed, fmt.Sprintf("method %s not supported for %s", r.method, r.kind))
}

// decode reads a JSON or YAML request body.
func decode(r *request, obj any) error {
	if t := r.header.Get("Content-Type"); t != "" {
		mt, _, err := mime.ParseMediaType(t)
		if err != nil || mt != "application/json" && mt != "application/yaml" && mt != "application/x-yaml" {
			return newHTTPError(http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported content type %q", t))
		}
	}
	data, err := io.ReadAll(r.body)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, obj); err != nil {
		return newHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
	}
	return nil
}

func boolParam(r *request, name string) (bool, error) {
	v := r.query.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, newHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid value %q for %s", v, name))
	}
	return b, nil
}

func listParam(r *request, name string) []string {
	if !r.query.Has(name) {
		return nil
	}
	list := []string{}
	for _, e := range strings.Split(r.query.Get(name), ",") {
		if e = strings.TrimSpace(e); e != "" {
			list = append(list, e)
		}
	}
	return list
}

func options(r *request) (repository.Options, error) {
	var o repository.Options
	var err error
	if o.LocalOnly, err = boolParam(r, "localOnly"); err != nil {
		return o, err
	}
	if o.ExcludeQualifiers, err = boolParam(r, "excludeQualifiers"); err != nil {
		return o, err
	}
	if o.ExcludeClassOrigin, err = boolParam(r, "excludeClassOrigin"); err != nil {
		return o, err
	}
	o.PropertyList = listParam(r, "propertyList")
	return o, nil
}

func pathParam(r *request) (cim.ObjectPath, error) {
	s := r.query.Get("path")
	if s == "" {
		return cim.ObjectPath{}, newHTTPError(http.StatusBadRequest, "instance path required")
	}
	return cim.ParseObjectPath(s)
}

////////////////////////////////////////////////////////////////////////////////

func (a *RepositoryAccess) handleStatus(r *request) (*response, error) {
	if r.method != http.MethodGet {
		return nil, methodNotAllowed(r)
	}
	return &response{status: http.StatusOK, data: &Status{
		Started:    a.started,
		Host:       a.repository.Host(),
		Namespaces: a.repository.EnumerateNameSpaces(),
	}}, nil
}

func (a *RepositoryAccess) handleNamespaces(r *request) (*response, error) {
	ns := r.namespace()
	switch r.method {
	case METHOD_LIST:
		if ns != "" {
			list, err := a.repository.GetNameSpaceChildren(ns)
			if err != nil {
				return nil, err
			}
			return ok(&Items[string]{Items: list}), nil
		}
		return ok(&Items[string]{Items: a.repository.EnumerateNameSpaces()}), nil
	case http.MethodGet:
		n, err := a.repository.GetNameSpaceAttributes(ns)
		if err != nil {
			return nil, err
		}
		return ok(n), nil
	case http.MethodPost:
		var spec NamespaceRequest
		if err := decode(r, &spec); err != nil {
			return nil, err
		}
		if spec.Name == "" {
			spec.Name = ns
		}
		if err := a.repository.CreateNameSpace(spec.Name, spec.Attributes); err != nil {
			return nil, err
		}
		return &response{status: http.StatusCreated, location: a.prefix + KIND_NAMESPACES + "/" + strings.Trim(spec.Name, "/")}, nil
	case http.MethodPut:
		var attrs namespace.Attributes
		if err := decode(r, &attrs); err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.ModifyNameSpace(ns, attrs.Shareable, attrs.UpdatesAllowed)
	case http.MethodDelete:
		return &response{status: http.StatusOK}, a.repository.DeleteNameSpace(ns)
	}
	return nil, methodNotAllowed(r)
}

func (a *RepositoryAccess) handleQualifiers(r *request) (*response, error) {
	switch r.method {
	case METHOD_LIST:
		list, err := a.repository.EnumerateQualifierDecls(r.namespace())
		if err != nil {
			return nil, err
		}
		return ok(&Items[*cim.QualifierDecl]{Items: list}), nil
	case http.MethodGet:
		ns, name, err := r.split()
		if err != nil {
			return nil, err
		}
		d, err := a.repository.GetQualifierDecl(ns, name)
		if err != nil {
			return nil, err
		}
		return ok(d), nil
	case http.MethodPost, http.MethodPut:
		var decl cim.QualifierDecl
		if err := decode(r, &decl); err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.SetQualifierDecl(r.namespace(), &decl)
	case http.MethodDelete:
		ns, name, err := r.split()
		if err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.DeleteQualifierDecl(ns, name)
	}
	return nil, methodNotAllowed(r)
}

func (a *RepositoryAccess) handleClasses(r *request) (*response, error) {
	switch r.method {
	case METHOD_LIST:
		deep, err := boolParam(r, "deep")
		if err != nil {
			return nil, err
		}
		names, err := boolParam(r, "names")
		if err != nil {
			return nil, err
		}
		if names {
			list, err := a.repository.EnumerateClassNames(r.namespace(), r.query.Get("class"), deep)
			if err != nil {
				return nil, err
			}
			return ok(&Items[string]{Items: list}), nil
		}
		opts, err := options(r)
		if err != nil {
			return nil, err
		}
		list, err := a.repository.EnumerateClasses(r.namespace(), r.query.Get("class"), deep, opts)
		if err != nil {
			return nil, err
		}
		return ok(&Items[*cim.Class]{Items: list}), nil
	case http.MethodGet:
		ns, name, err := r.split()
		if err != nil {
			return nil, err
		}
		opts, err := options(r)
		if err != nil {
			return nil, err
		}
		c, err := a.repository.GetClass(ns, name, opts)
		if err != nil {
			return nil, err
		}
		return ok(c), nil
	case http.MethodPost:
		var c cim.Class
		if err := decode(r, &c); err != nil {
			return nil, err
		}
		if err := a.repository.CreateClass(r.namespace(), &c); err != nil {
			return nil, err
		}
		return &response{status: http.StatusCreated, location: a.prefix + KIND_CLASSES + "/" + r.namespace() + "/" + c.Name}, nil
	case http.MethodPut:
		var c cim.Class
		if err := decode(r, &c); err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.ModifyClass(r.namespace(), &c)
	case http.MethodDelete:
		ns, name, err := r.split()
		if err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.DeleteClass(ns, name)
	}
	return nil, methodNotAllowed(r)
}

func (a *RepositoryAccess) handleInstances(r *request) (*response, error) {
	ns := r.namespace()
	switch r.method {
	case METHOD_LIST:
		deep, err := boolParam(r, "deep")
		if err != nil {
			return nil, err
		}
		names, err := boolParam(r, "names")
		if err != nil {
			return nil, err
		}
		class := r.query.Get("class")
		if class == "" {
			return nil, newHTTPError(http.StatusBadRequest, "class required")
		}
		if names {
			list, err := a.repository.EnumerateInstanceNames(ns, class, deep)
			if err != nil {
				return nil, err
			}
			return ok(&Items[cim.ObjectPath]{Items: list}), nil
		}
		opts, err := options(r)
		if err != nil {
			return nil, err
		}
		list, err := a.repository.EnumerateInstances(ns, class, deep, opts)
		if err != nil {
			return nil, err
		}
		return ok(&Items[*cim.Instance]{Items: list}), nil
	case http.MethodGet:
		p, err := pathParam(r)
		if err != nil {
			return nil, err
		}
		if name := r.query.Get("property"); name != "" {
			v, err := a.repository.GetProperty(ns, p, name)
			if err != nil {
				return nil, err
			}
			return ok(v), nil
		}
		opts, err := options(r)
		if err != nil {
			return nil, err
		}
		i, err := a.repository.GetInstance(ns, p, opts)
		if err != nil {
			return nil, err
		}
		return ok(i), nil
	case http.MethodPost:
		var i cim.Instance
		if err := decode(r, &i); err != nil {
			return nil, err
		}
		p, err := a.repository.CreateInstance(ns, &i)
		if err != nil {
			return nil, err
		}
		loc := a.prefix + KIND_INSTANCES + "/" + ns + "?" + url.Values{"path": {p.String()}}.Encode()
		return &response{status: http.StatusCreated, data: p, location: loc}, nil
	case http.MethodPut:
		var i cim.Instance
		if err := decode(r, &i); err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.ModifyInstance(ns, &i, listParam(r, "propertyList"))
	case http.MethodDelete:
		p, err := pathParam(r)
		if err != nil {
			return nil, err
		}
		return &response{status: http.StatusOK}, a.repository.DeleteInstance(ns, p)
	}
	return nil, methodNotAllowed(r)
}

func (a *RepositoryAccess) handleAssociations(r *request) (*response, error) {
	if r.method != http.MethodPost {
		return nil, methodNotAllowed(r)
	}
	var spec AssociationRequest
	if err := decode(r, &spec); err != nil {
		return nil, err
	}
	ns := r.namespace()
	if spec.Source.IsZero() {
		return nil, cimerr.New(cimerr.InvalidParameter, "source path required")
	}

	var (
		paths []cim.ObjectPath
		objs  []cim.EmbeddedObject
		err   error
	)
	switch {
	case r.kind == KIND_ASSOCIATORS && spec.Names:
		paths, err = a.repository.AssociatorNames(ns, spec.Source, spec.AssociationFilter)
	case r.kind == KIND_ASSOCIATORS:
		objs, err = a.repository.Associators(ns, spec.Source, spec.AssociationFilter, spec.Options)
	case spec.Names:
		paths, err = a.repository.ReferenceNames(ns, spec.Source, spec.ResultClass, spec.Role)
	default:
		objs, err = a.repository.References(ns, spec.Source, spec.ResultClass, spec.Role, spec.Options)
	}
	if err != nil {
		return nil, err
	}

	result := &Items[Result]{Items: []Result{}}
	for i := range paths {
		result.Items = append(result.Items, Result{Path: &paths[i]})
	}
	for _, o := range objs {
		switch e := o.(type) {
		case *cim.Class:
			result.Items = append(result.Items, Result{Class: e})
		case *cim.Instance:
			result.Items = append(result.Items, Result{Instance: e})
		}
	}
	return &response{status: http.StatusOK, data: result}, nil
}
