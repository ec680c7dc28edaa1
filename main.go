package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Tynarus/apily/config"
	"github.com/Tynarus/apily/files"
	"github.com/Tynarus/apily/mock"
	"github.com/Tynarus/apily/mocker"
	"github.com/Tynarus/apily/registry"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.New()

	logger := logrus.StandardLogger()
	logger.SetReportCaller(true)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithError(err).Warn("unknown log level, keeping info")
	}

	builder := registry.NewBuilder()

	// Load the default mocks, no file...no problem
	options, err := mock.LoadFile(cfg.MocksFilePath)
	if err != nil {
		logger.WithError(err).WithField("file", cfg.MocksFilePath).Fatal("failed to load mocks")
	}

	for _, o := range options {
		if _, err := builder.Register(o); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": o.Method,
				"url":    o.URL,
			}).Fatal("failed to register mock")
		}
	}

	m := mocker.New(builder.Build(),
		mocker.WithLogger(logger),
		mocker.WithHost(cfg.Host),
		mocker.WithPort(cfg.Port),
		mocker.WithConfigBasePath(cfg.ConfigBasePath),
		mocker.WithResolver(files.NewDirResolver(cfg.FilesDir)),
	)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		if err := m.Shutdown(); err != nil {
			logger.WithError(err).Error("failed to shut down")
		}
	}()

	if err := m.Start(); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
