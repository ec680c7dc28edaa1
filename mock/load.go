package mock

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v2"
)

// RegexKey marks a mapping in a definitions file that stands for a regular expression pattern
const RegexKey = "$regex"

type entry struct {
	Options      `yaml:",inline"`
	ResponseFile string `yaml:"responseFile"`
}

// Load decodes a YAML (or JSON) list of registration options.
//
//	- method: POST
//	  url: /test
//	  requestBody:
//	    name: {$regex: "^k"}
//	  responseStatus: 200
//	  responseFile: ./fixtures/user.json
func Load(r io.Reader) ([]Options, error) {
	var entries []entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode mocks: %w", err)
	}

	options := make([]Options, 0, len(entries))
	for i, e := range entries {
		o := e.Options

		var err error
		if o.RequestBody, err = normalize(o.RequestBody, true); err != nil {
			return nil, fmt.Errorf("mock %d (%s %s): %w", i, o.Method, o.URL, err)
		}

		if o.ResponseBody, err = normalize(o.ResponseBody, false); err != nil {
			return nil, fmt.Errorf("mock %d (%s %s): %w", i, o.Method, o.URL, err)
		}

		params, err := normalize(o.RequestParams, false)
		if err != nil {
			return nil, fmt.Errorf("mock %d (%s %s): %w", i, o.Method, o.URL, err)
		}
		if params != nil {
			o.RequestParams = params.(map[string]interface{})
		}

		if e.ResponseFile != "" {
			if o.ResponseBody != nil {
				return nil, fmt.Errorf("mock %d (%s %s): %w", i, o.Method, o.URL,
					&InvalidError{Field: "responseFile", Reason: "cannot be combined with responseBody"})
			}
			o.ResponseBody = NewResponseFile(e.ResponseFile)
		}

		options = append(options, o)
	}

	return options, nil
}

// LoadFile loads registration options from path. A missing file yields no options.
func LoadFile(path string) ([]Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// normalize converts the generic maps yaml produces into string keyed maps, compiling regex markers when asked to.
func normalize(v interface{}, patterns bool) (interface{}, error) {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return normalize(m, patterns)
	case map[string]interface{}:
		if raw, ok := t[RegexKey]; ok && patterns && len(t) == 1 {
			expr, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string, got %T", RegexKey, raw)
			}

			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", RegexKey, expr, err)
			}
			return re, nil
		}

		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			n, err := normalize(val, patterns)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return m, nil
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, val := range t {
			n, err := normalize(val, patterns)
			if err != nil {
				return nil, err
			}
			s[i] = n
		}
		return s, nil
	}

	return v, nil
}
