// Package main initializes and starts the ItemGate server: the REST listener
// in the foreground and the SOAP listener in the background, both guarded by
// the same credential store.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/itemgate/internal/config"
	"github.com/atinyakov/itemgate/internal/logger"
	"github.com/atinyakov/itemgate/internal/repository"
	"github.com/atinyakov/itemgate/internal/server"
	"github.com/atinyakov/itemgate/internal/server/handler/http"
	"github.com/atinyakov/itemgate/internal/server/handler/soap"
	"github.com/atinyakov/itemgate/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Seed the credential store; it is immutable from here on.
	credentials, err := repository.NewCredentialStore(options.Users, 0)
	if err != nil {
		zapLogger.Fatal("cannot init credential store", zap.Error(err))
	}
	zapLogger.Info("credential store ready", zap.Int("users", credentials.Len()))

	// Initialize business-logic services.
	authService := service.NewAuthService(credentials)
	itemService := service.NewItemService(repository.NewMemItemRepository())

	// Build one router per protocol; both share the auth service.
	itemHandler := &http.ItemHandler{ItemService: itemService, Logger: zapLogger}
	restRouter := http.NewRouter(itemHandler, authService, zapLogger)
	soapRouter := soap.NewRouter(soap.NewHandler(soap.HelloService{}, zapLogger), authService, zapLogger)

	var tlsConfig *tls.Config
	if options.TLSEnabled() {
		tlsConfig, err = server.LoadTLSConfig(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("cannot load TLS configuration", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor := &server.Supervisor{
		Foreground: server.Endpoint{Name: "rest", Addr: options.RESTAddress, Handler: restRouter},
		Background: server.Endpoint{Name: "soap", Addr: options.SOAPAddress, Handler: soapRouter},
		TLSConfig:  tlsConfig,
		Logger:     zapLogger,
	}
	if err := supervisor.Run(ctx); err != nil {
		zapLogger.Error("server exited with error", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
	zapLogger.Info("server stopped")
}
