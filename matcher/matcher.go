// Package matcher evaluates mock definitions against live requests.
package matcher

import (
	"net/http"
	"strings"

	"github.com/Tynarus/apily/equality"
	"github.com/Tynarus/apily/mock"
)

// Request is a live request as handed over by the transport
type Request struct {
	Path   string
	Method string
	// Body is the parsed request body, nil when there was none
	Body   interface{}
	Header http.Header
}

// BodyMatches reports whether the request body satisfies the definition's body pattern.
// A definition without a body pattern matches any body, including none.
func BodyMatches(def *mock.Definition, req Request) bool {
	if def.Request.Body == nil {
		return true
	}

	return equality.Equals(def.Request.Body, req.Body)
}

// HeadersMatch reports whether every header the definition requires is present with exactly the required value.
// Header names are case-insensitive. Values are not patterns.
func HeadersMatch(def *mock.Definition, req Request) bool {
	for name, expected := range def.Request.Headers {
		values := req.Header.Values(name)
		if len(values) == 0 || strings.Join(values, ", ") != expected {
			return false
		}
	}

	return true
}

// Matches reports whether both the body and the headers of req satisfy def
func Matches(def *mock.Definition, req Request) bool {
	return BodyMatches(def, req) && HeadersMatch(def, req)
}

// Scan walks defs in order and returns the candidates for req.
// Scanning stops at the first definition that matches, so at most one candidate is returned
// and definitions registered earlier win over later ones regardless of priority.
func Scan(defs []*mock.Definition, req Request) []*mock.Definition {
	for _, def := range defs {
		if Matches(def, req) {
			return []*mock.Definition{def}
		}
	}

	return nil
}

// SelectByPriority returns the candidate with the lowest priority value, or nil when there are none.
// The earliest candidate wins a tie.
func SelectByPriority(candidates []*mock.Definition) *mock.Definition {
	var selected *mock.Definition
	for _, def := range candidates {
		if selected == nil || def.Priority < selected.Priority {
			selected = def
		}
	}

	return selected
}
