package service

import (
	"errors"
	"net/http"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// httpError is a request failure with a dedicated status.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string {
	return e.msg
}

func newHTTPError(status int, msg string) error {
	return &httpError{status, msg}
}

var statusCodes = map[cimerr.Kind]int{
	cimerr.Failed:            http.StatusInternalServerError,
	cimerr.NotFound:          http.StatusNotFound,
	cimerr.AlreadyExists:     http.StatusConflict,
	cimerr.InvalidParameter:  http.StatusBadRequest,
	cimerr.InvalidClass:      http.StatusBadRequest,
	cimerr.TypeMismatch:      http.StatusBadRequest,
	cimerr.OutOfRange:        http.StatusBadRequest,
	cimerr.NamespaceNotEmpty: http.StatusConflict,
	cimerr.ClassHasChildren:  http.StatusConflict,
	cimerr.ClassHasInstances: http.StatusConflict,
	cimerr.NotSupported:      http.StatusForbidden,
}

// StatusCode maps an error to the http status reported for it.
func StatusCode(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	var ce *cimerr.Error
	if errors.As(err, &ce) {
		if s, ok := statusCodes[ce.Kind()]; ok {
			return s
		}
	}
	return http.StatusInternalServerError
}

func errorKind(err error) string {
	var ce *cimerr.Error
	if errors.As(err, &ce) {
		return ce.Kind().String()
	}
	return ""
}
