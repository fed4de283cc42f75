package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photobook/gateway-api/internal/devbackend"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type settings struct {
	Port     string        `envconfig:"PORT" default:"5000"`
	Secret   string        `envconfig:"JWT_SECRET" default:"photobook-dev-secret"`
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	var s settings
	if err := envconfig.Process("DEVBACKEND", &s); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	if level, err := logrus.ParseLevel(s.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	srv := devbackend.New(devbackend.Config{Secret: []byte(s.Secret), TokenTTL: s.TokenTTL}, logger)
	app := srv.App(recover.New(), cors.New())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithField("port", s.Port).Info("Starting development backend")
	if err := app.Listen(":" + s.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
