package mocker

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/Tynarus/apily/encode"
	"github.com/Tynarus/apily/files"
	"github.com/Tynarus/apily/matcher"
	"github.com/Tynarus/apily/registry"
	"github.com/gofiber/fiber"
	"github.com/sirupsen/logrus"
)

type (
	// Mocker serves the definitions of a registry over HTTP
	Mocker struct {
		app            *fiber.App
		dispatcher     *Dispatcher
		registry       *registry.Registry
		configBasePath string
		logger         logrus.FieldLogger
		port           int
		host           string
	}

	config struct {
		port           int
		configBasePath string
		host           string
		logger         logrus.FieldLogger
		resolver       files.Resolver
	}

	// Option is a function that can modify a default config
	Option func(c *config)

	listing struct {
		ID       string `json:"id"`
		Priority int    `json:"priority"`
		Method   string `json:"method"`
		URL      string `json:"url"`
		Status   int    `json:"status"`
	}
)

// New returns a Mocker serving reg, by default on 127.0.0.1:4300 with the definitions listed under /mockconfig.
// The registry must be complete: nothing registered afterwards is served.
func New(reg *registry.Registry, options ...Option) *Mocker {
	c := &config{
		port:           4300,
		logger:         logrus.StandardLogger(),
		host:           "127.0.0.1",
		configBasePath: "/mockconfig",
		resolver:       files.NewDirResolver("."),
	}

	for _, applyOption := range options {
		applyOption(c)
	}

	app := fiber.New(&fiber.Settings{
		ServerHeader:          "Apily",
		DisableStartupMessage: true,
	})

	m := &Mocker{
		app:            app,
		dispatcher:     NewDispatcher(reg, c.resolver),
		registry:       reg,
		configBasePath: c.configBasePath,
		logger:         c.logger,
		port:           c.port,
		host:           c.host,
	}

	m.initConfigEndpoints()
	app.Use(fiber.Handler(m.serve))

	return m
}

// Start listens until the app is shut down or fails
func (m *Mocker) Start() error {
	errc := make(chan error)

	go func() {
		m.logger.WithFields(logrus.Fields{"host": m.host, "port": m.port}).Info("main")
		errc <- m.app.Listen(fmt.Sprintf("%s:%d", m.host, m.port))
	}()

	m.logger.Infof("Loaded %d mock requests", m.registry.Len())

	return <-errc
}

// Shutdown gracefully shuts down the app
func (m *Mocker) Shutdown() error {
	if shutdownErr := m.app.Shutdown(); shutdownErr != nil {
		return fmt.Errorf("failed to shutdown app %w", shutdownErr)
	}

	return nil
}

// WithLogger overrides the default logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithHost sets the host
func WithHost(host string) Option {
	return func(c *config) {
		c.host = host
	}
}

// WithPort sets the port
func WithPort(port int) Option {
	return func(c *config) {
		c.port = port
	}
}

// WithConfigBasePath sets the path the registered definitions are listed under, empty disables the listing
func WithConfigBasePath(basePath string) Option {
	return func(c *config) {
		c.configBasePath = basePath
	}
}

// WithResolver sets how file backed response bodies are read
func WithResolver(r files.Resolver) Option {
	return func(c *config) {
		c.resolver = r
	}
}

func (m *Mocker) serve(c *fiber.Ctx) {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}

	req, err := request(c)
	if err != nil {
		m.logger.WithFields(fields).WithError(err).Warn("rejected request body")
		c.Status(http.StatusBadRequest).SendString(err.Error())
		return
	}

	res, err := m.dispatcher.Dispatch(c.Fasthttp, req)
	if err != nil {
		var noRoute *NoRouteError
		var noMatch *NoPredicateMatchError

		if errors.As(err, &noRoute) || errors.As(err, &noMatch) {
			m.logger.WithFields(fields).Info(err.Error())
			c.Status(http.StatusNotFound).SendString(err.Error())
			return
		}

		m.logger.WithFields(fields).WithError(err).Error("failed to render mock")
		c.SendStatus(http.StatusInternalServerError)
		return
	}

	if res.Mock != nil {
		fields["mock"] = res.Mock.ID
	}
	m.logger.WithFields(fields).Debug("serving")

	c.Status(res.Status)

	for name := range res.Header {
		c.Set(name, res.Header.Get(name))
	}

	if res.Body != nil {
		c.SendBytes(res.Body)
	}
}

// request converts the fiber context into what the dispatcher matches against
func request(c *fiber.Ctx) (matcher.Request, error) {
	header := http.Header{}
	c.Fasthttp.Request.Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})

	req := matcher.Request{
		Path:   c.Path(),
		Method: c.Method(),
		Header: header,
	}

	body, err := parseBody(header.Get(headerContentType), c.Fasthttp.Request.Body())
	if err != nil {
		return req, err
	}
	req.Body = body

	return req, nil
}

// parseBody decodes JSON bodies and passes anything else through as text. An empty body is nil.
func parseBody(contentType string, raw []byte) (interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	if !isJSON(contentType) {
		return string(raw), nil
	}

	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &BodyError{ContentType: contentType, Err: err}
	}

	return body, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (m *Mocker) initConfigEndpoints() {
	if m.configBasePath == "" {
		return
	}

	m.logger.
		WithFields(logrus.Fields{
			http.MethodGet: m.configBasePath,
		}).Debug("config endpoints")

	m.app.Get(m.configBasePath, func(c *fiber.Ctx) {
		defs := m.registry.Definitions()
		listings := make([]listing, 0, len(defs))
		for _, def := range defs {
			listings = append(listings, listing{
				ID:       def.ID,
				Priority: def.Priority,
				Method:   def.Request.Method,
				URL:      def.Request.URL,
				Status:   def.Response.Status,
			})
		}

		c.Set(headerContentType, "application/json")

		err := encode.JSONIndented(c.Fasthttp.Response.BodyWriter(), listings, " ")

		if err != nil {
			m.logger.WithError(err).Error("Failed to encode response")
			c.SendStatus(http.StatusInternalServerError)
			return
		}
	})
}
