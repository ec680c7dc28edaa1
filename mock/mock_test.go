package mock_test

import (
	"errors"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Tynarus/apily/mock"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mock", func() {
	Context("New", func() {
		It("builds a definition from the options", func() {
			def, err := mock.New(mock.Options{
				Priority:        2,
				Method:          http.MethodPost,
				URL:             "/test",
				RequestHeaders:  map[string]string{"X-Token": "abc"},
				RequestParams:   map[string]interface{}{"page": "1"},
				RequestBody:     map[string]interface{}{"testValue1": "hello"},
				ResponseStatus:  http.StatusCreated,
				ResponseHeaders: map[string]string{"X-Mock": "yes"},
				ResponseBody:    map[string]interface{}{"text": "Hello world!"},
			})

			Expect(err).ShouldNot(HaveOccurred())
			Expect(def.ID).ShouldNot(BeEmpty())
			Expect(def.Priority).To(Equal(2))
			Expect(def.RouteKey()).To(Equal("/test:POST"))
			Expect(def.Request.Headers).To(HaveKeyWithValue("X-Token", "abc"))
			Expect(def.Request.Params).To(HaveKeyWithValue("page", "1"))
			Expect(def.Response.Status).To(Equal(http.StatusCreated))
			Expect(def.Response.Headers).To(HaveKeyWithValue("X-Mock", "yes"))
			Expect(def.Response.Body.Kind()).To(Equal(mock.BodyInline))
			Expect(def.Response.Body.Value()).To(Equal(map[string]interface{}{"text": "Hello world!"}))
		})

		It("gives every definition its own id", func() {
			opts := mock.Options{Method: http.MethodGet, URL: "/test", ResponseStatus: http.StatusOK}
			a, err := mock.New(opts)
			Expect(err).ShouldNot(HaveOccurred())
			b, err := mock.New(opts)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(a.ID).ShouldNot(Equal(b.ID))
		})

		It("keeps file references as file bodies", func() {
			def, err := mock.New(mock.Options{
				Method:         http.MethodGet,
				URL:            "/file",
				ResponseStatus: http.StatusOK,
				ResponseBody:   mock.NewResponseFile("fixtures/user.json"),
			})

			Expect(err).ShouldNot(HaveOccurred())
			Expect(def.Response.Body.Kind()).To(Equal(mock.BodyFile))
			Expect(def.Response.Body.File().FileName()).To(Equal("fixtures/user.json"))
		})

		It("has no body when none is given", func() {
			def, err := mock.New(mock.Options{Method: http.MethodDelete, URL: "/x", ResponseStatus: http.StatusNoContent})

			Expect(err).ShouldNot(HaveOccurred())
			Expect(def.Response.Body.Kind()).To(Equal(mock.BodyNone))
		})

		table.DescribeTable("rejects malformed registrations",
			func(opts mock.Options, field string) {
				def, err := mock.New(opts)

				Expect(def).To(BeNil())
				var invalid *mock.InvalidError
				Expect(errors.As(err, &invalid)).To(BeTrue())
				Expect(invalid.Field).To(Equal(field))
			},
			table.Entry("missing url", mock.Options{Method: http.MethodGet, ResponseStatus: 200}, "url"),
			table.Entry("missing method", mock.Options{URL: "/x", ResponseStatus: 200}, "method"),
			table.Entry("unsupported method", mock.Options{Method: http.MethodHead, URL: "/x", ResponseStatus: 200}, "method"),
			table.Entry("lowercase method", mock.Options{Method: "get", URL: "/x", ResponseStatus: 200}, "method"),
			table.Entry("missing status", mock.Options{Method: http.MethodGet, URL: "/x"}, "responseStatus"),
		)
	})

	Context("Load", func() {
		It("decodes YAML definitions", func() {
			options, err := mock.Load(strings.NewReader(`
- method: POST
  url: /test
  priority: 1
  requestHeaders:
    X-Token: abc
  requestBody:
    user:
      name: {$regex: "^k"}
      tags: [a, {$regex: "b+"}]
  responseStatus: 201
  responseHeaders:
    X-Mock: "yes"
  responseBody:
    result:
      ok: true
- method: GET
  url: /file
  responseStatus: 200
  responseFile: fixtures/user.json
`))

			Expect(err).ShouldNot(HaveOccurred())
			Expect(options).To(HaveLen(2))

			first := options[0]
			Expect(first.Method).To(Equal(http.MethodPost))
			Expect(first.Priority).To(Equal(1))
			Expect(first.RequestHeaders).To(HaveKeyWithValue("X-Token", "abc"))
			Expect(first.ResponseHeaders).To(HaveKeyWithValue("X-Mock", "yes"))

			user := first.RequestBody.(map[string]interface{})["user"].(map[string]interface{})
			Expect(user["name"]).To(BeAssignableToTypeOf(&regexp.Regexp{}))
			Expect(user["name"].(*regexp.Regexp).String()).To(Equal("^k"))
			Expect(user["tags"].([]interface{})[1]).To(BeAssignableToTypeOf(&regexp.Regexp{}))
			Expect(first.ResponseBody).To(Equal(map[string]interface{}{
				"result": map[string]interface{}{"ok": true},
			}))

			Expect(options[1].ResponseBody).To(Equal(mock.NewResponseFile("fixtures/user.json")))
		})

		It("decodes JSON definitions", func() {
			options, err := mock.Load(strings.NewReader(
				`[{"method": "GET", "url": "/test", "responseStatus": 200, "responseBody": {"text": "Hello world!"}}]`,
			))

			Expect(err).ShouldNot(HaveOccurred())
			Expect(options).To(HaveLen(1))
			Expect(options[0].ResponseBody).To(Equal(map[string]interface{}{"text": "Hello world!"}))
		})

		It("does not compile regex markers in response bodies", func() {
			options, err := mock.Load(strings.NewReader(`
- method: GET
  url: /test
  responseStatus: 200
  responseBody: {$regex: "^a"}
`))

			Expect(err).ShouldNot(HaveOccurred())
			Expect(options[0].ResponseBody).To(Equal(map[string]interface{}{"$regex": "^a"}))
		})

		It("treats empty input as no definitions", func() {
			options, err := mock.Load(strings.NewReader(""))

			Expect(err).ShouldNot(HaveOccurred())
			Expect(options).To(BeEmpty())
		})

		It("rejects invalid regular expressions", func() {
			_, err := mock.Load(strings.NewReader(`
- method: POST
  url: /test
  responseStatus: 200
  requestBody: {$regex: "("}
`))

			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("POST /test"))
		})

		It("rejects a file reference combined with an inline body", func() {
			_, err := mock.Load(strings.NewReader(`
- method: GET
  url: /test
  responseStatus: 200
  responseBody: hi
  responseFile: hi.txt
`))

			var invalid *mock.InvalidError
			Expect(errors.As(err, &invalid)).To(BeTrue())
			Expect(invalid.Field).To(Equal("responseFile"))
		})
	})

	Context("LoadFile", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = ioutil.TempDir("", "apily-mock")
			Expect(err).ShouldNot(HaveOccurred())
		})

		AfterEach(func() {
			Expect(os.RemoveAll(dir)).To(Succeed())
		})

		It("yields nothing for a missing file", func() {
			options, err := mock.LoadFile(filepath.Join(dir, "missing.yaml"))

			Expect(err).ShouldNot(HaveOccurred())
			Expect(options).To(BeEmpty())
		})

		It("loads an existing file", func() {
			path := filepath.Join(dir, "apily.yaml")
			Expect(ioutil.WriteFile(path, []byte("- {method: GET, url: /test, responseStatus: 200}\n"), 0644)).To(Succeed())

			options, err := mock.LoadFile(path)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(options).To(HaveLen(1))
			Expect(options[0].URL).To(Equal("/test"))
		})
	})
})

var _ = Describe("Sample mocks", func() {
	It("loads and validates", func() {
		options, err := mock.LoadFile("../apily.yaml")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(options).To(HaveLen(5))

		for _, o := range options {
			_, err := mock.New(o)
			Expect(err).ShouldNot(HaveOccurred())
		}

		Expect(options[3].ResponseBody).To(Equal(mock.NewResponseFile("fixtures/user.json")))
	})
})
