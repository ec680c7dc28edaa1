package mocker

import (
	"fmt"
	"reflect"

	"github.com/Tynarus/apily/encode"
)

type (
	// NoRouteError means no definition is registered for the request's path and method
	NoRouteError struct {
		Method string
		Path   string
	}

	// NoPredicateMatchError means definitions exist for the route but none accepted the body and headers
	NoPredicateMatchError struct {
		Method string
		Path   string
		Body   interface{}
	}

	// FileError means a file backed response body could not be read
	FileError struct {
		FileName string
		Err      error
	}

	// BodyError means the request body could not be parsed
	BodyError struct {
		ContentType string
		Err         error
	}
)

// Error implements the error interface
func (e *NoRouteError) Error() string {
	return fmt.Sprintf("Could not find mocks for %s %s", e.Method, e.Path)
}

// Error implements the error interface. A non-empty body is appended as indented JSON.
func (e *NoPredicateMatchError) Error() string {
	msg := fmt.Sprintf("Could not find matching request for %s %s", e.Method, e.Path)
	if !hasBody(e.Body) {
		return msg
	}

	body, err := encode.JSONString(e.Body, "    ")
	if err != nil {
		body = fmt.Sprint(e.Body)
	}

	return msg + " with body\n" + body
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("failed to resolve response file %s: %v", e.FileName, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Error implements the error interface
func (e *BodyError) Error() string {
	return fmt.Sprintf("failed to parse %s body: %v", e.ContentType, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

func hasBody(body interface{}) bool {
	if body == nil {
		return false
	}

	v := reflect.ValueOf(body)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return v.Len() > 0
	case reflect.Ptr:
		return !v.IsNil()
	}

	return true
}
