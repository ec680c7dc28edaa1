// Package mock holds the data model for registered stubs.
package mock

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type (
	// Definition is a registered request pattern paired with the response served for it
	Definition struct {
		ID       string           `json:"id" yaml:"id"`
		Priority int              `json:"priority" yaml:"priority"`
		Request  RequestPattern   `json:"request" yaml:"request"`
		Response ResponseTemplate `json:"response" yaml:"response"`
	}

	// RequestPattern describes what a live request must look like to be served by a Definition
	RequestPattern struct {
		URL     string                 `json:"url" yaml:"url"`
		Method  string                 `json:"method" yaml:"method"`
		Body    interface{}            `json:"body,omitempty" yaml:"body,omitempty"`
		Headers map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
		Params  map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	}

	// ResponseTemplate is the canned response of a Definition
	ResponseTemplate struct {
		Status  int               `json:"status" yaml:"status"`
		Body    Body              `json:"-" yaml:"-"`
		Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	}

	// Options are the arguments of a registration call
	Options struct {
		Priority        int                    `json:"priority" yaml:"priority"`
		Method          string                 `json:"method" yaml:"method"`
		URL             string                 `json:"url" yaml:"url"`
		RequestHeaders  map[string]string      `json:"requestHeaders" yaml:"requestHeaders"`
		RequestParams   map[string]interface{} `json:"requestParams" yaml:"requestParams"`
		ResponseStatus  int                    `json:"responseStatus" yaml:"responseStatus"`
		ResponseHeaders map[string]string      `json:"responseHeaders" yaml:"responseHeaders"`
		RequestBody     interface{}            `json:"requestBody" yaml:"requestBody"`
		// ResponseBody is served inline unless it is a ResponseFile
		ResponseBody interface{} `json:"responseBody" yaml:"responseBody"`
	}

	// InvalidError is returned when registration options cannot form a Definition
	InvalidError struct {
		Field  string
		Reason string
	}
)

var supportedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
}

// Error implements the error interface
func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid mock %s: %s", e.Field, e.Reason)
}

// New validates the options and returns the Definition they describe.
// A missing url or method, an unsupported method or a status outside 100-599 is rejected.
func New(o Options) (*Definition, error) {
	if o.URL == "" {
		return nil, &InvalidError{Field: "url", Reason: "is required"}
	}

	if o.Method == "" {
		return nil, &InvalidError{Field: "method", Reason: "is required"}
	}

	if _, ok := supportedMethods[o.Method]; !ok {
		return nil, &InvalidError{Field: "method", Reason: fmt.Sprintf("%q is not one of GET, POST, PUT, DELETE, PATCH", o.Method)}
	}

	if o.ResponseStatus < 100 || o.ResponseStatus > 599 {
		return nil, &InvalidError{Field: "responseStatus", Reason: fmt.Sprintf("%d is not a valid HTTP status", o.ResponseStatus)}
	}

	return &Definition{
		ID:       uuid.New().String(),
		Priority: o.Priority,
		Request: RequestPattern{
			URL:     o.URL,
			Method:  o.Method,
			Body:    o.RequestBody,
			Headers: o.RequestHeaders,
			Params:  o.RequestParams,
		},
		Response: ResponseTemplate{
			Status:  o.ResponseStatus,
			Body:    bodyOf(o.ResponseBody),
			Headers: o.ResponseHeaders,
		},
	}, nil
}

// RouteKey is the key definitions sharing a url and method are grouped under
func RouteKey(url, method string) string {
	return url + ":" + method
}

// RouteKey returns the route key of the definition
func (d *Definition) RouteKey() string {
	return RouteKey(d.Request.URL, d.Request.Method)
}
