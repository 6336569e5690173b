package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mandelsoft/cimrepository/pkg/repository/service"
)

// ResponseError is the error reported by the repository service.
type ResponseError struct {
	Status int
	Kind   string
	Msg    string
}

func (e *ResponseError) Error() string {
	return e.Msg
}

func IsStatus(err error, status int) bool {
	if e, ok := err.(*ResponseError); ok {
		return e.Status == status
	}
	return false
}

func ResponseData(r *http.Response) ([]byte, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if r.StatusCode == http.StatusCreated || r.StatusCode == http.StatusOK {
		return data, nil
	}

	if len(data) == 0 {
		return nil, &ResponseError{Status: r.StatusCode, Msg: fmt.Sprintf("request failed with status %s", r.Status)}
	}

	var msg service.Error
	err = json.Unmarshal(data, &msg)
	if err != nil || msg.Error == "" {
		return nil, &ResponseError{Status: r.StatusCode, Msg: fmt.Sprintf("request failed with status %s", r.Status)}
	}
	return nil, &ResponseError{Status: r.StatusCode, Kind: msg.Kind, Msg: msg.Error}
}
