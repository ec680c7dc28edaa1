package mocker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Tynarus/apily/encode"
	"github.com/Tynarus/apily/files"
	"github.com/Tynarus/apily/matcher"
	"github.com/Tynarus/apily/mock"
	"github.com/Tynarus/apily/registry"
)

const headerContentType = "Content-Type"

type (
	// Response is what gets written back to the client
	Response struct {
		Status int
		Header http.Header
		// Body is nil for a bare status
		Body []byte
		// Mock is the definition that was served, nil for preflight requests
		Mock *mock.Definition
	}

	// Dispatcher selects and renders the definition serving a request
	Dispatcher struct {
		registry *registry.Registry
		resolver files.Resolver
	}
)

// NewDispatcher returns a Dispatcher reading from reg and resolving file bodies through resolver
func NewDispatcher(reg *registry.Registry, resolver files.Resolver) *Dispatcher {
	return &Dispatcher{registry: reg, resolver: resolver}
}

// Dispatch finds the definition serving req and renders its response.
//
// OPTIONS requests are answered with a bare 200. Otherwise the error is a *NoRouteError when nothing is
// registered for the path and method, a *NoPredicateMatchError when nothing registered accepts the body and
// headers, or a *FileError when a file backed body cannot be read.
func (d *Dispatcher) Dispatch(ctx context.Context, req matcher.Request) (*Response, error) {
	if req.Method == http.MethodOptions {
		return &Response{Status: http.StatusOK, Header: http.Header{}}, nil
	}

	defs, ok := d.registry.Lookup(req.Path, req.Method)
	if !ok {
		return nil, &NoRouteError{Method: req.Method, Path: req.Path}
	}

	def := matcher.SelectByPriority(matcher.Scan(defs, req))
	if def == nil {
		return nil, &NoPredicateMatchError{Method: req.Method, Path: req.Path, Body: req.Body}
	}

	return d.render(ctx, def)
}

func (d *Dispatcher) render(ctx context.Context, def *mock.Definition) (*Response, error) {
	res := &Response{
		Status: def.Response.Status,
		Header: http.Header{},
		Mock:   def,
	}

	for name, value := range def.Response.Headers {
		res.Header.Set(name, value)
	}

	var contentType string
	body := def.Response.Body

	switch body.Kind() {
	case mock.BodyFile:
		name := body.File().FileName()
		content, err := d.resolver.Resolve(ctx, name)
		if err != nil {
			return nil, &FileError{FileName: name, Err: err}
		}

		res.Body, contentType = content.Data, content.ContentType
	case mock.BodyInline:
		var err error
		if res.Body, contentType, err = encodeBody(body.Value()); err != nil {
			return nil, fmt.Errorf("failed to encode body of mock %s: %w", def.ID, err)
		}
	}

	if contentType != "" && res.Header.Get(headerContentType) == "" {
		res.Header.Set(headerContentType, contentType)
	}

	return res, nil
}

func encodeBody(v interface{}) ([]byte, string, error) {
	switch b := v.(type) {
	case string:
		return []byte(b), "text/plain; charset=utf-8", nil
	case []byte:
		return b, "application/octet-stream", nil
	}

	s, err := encode.JSONString(v, "")
	if err != nil {
		return nil, "", err
	}

	return []byte(s), "application/json", nil
}
