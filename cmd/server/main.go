// Package main initializes and starts the pwdvault HTTPS server,
// setting up configuration, logging, the user directory, the vault,
// services, handlers, and TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/pwdvault/internal/certgen"
	"github.com/atinyakov/pwdvault/internal/config"
	"github.com/atinyakov/pwdvault/internal/db"
	"github.com/atinyakov/pwdvault/internal/device"
	"github.com/atinyakov/pwdvault/internal/logger"
	"github.com/atinyakov/pwdvault/internal/repository"
	"github.com/atinyakov/pwdvault/internal/server/handler/http"
	"github.com/atinyakov/pwdvault/internal/service"
	"github.com/atinyakov/pwdvault/internal/vault"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, log.Log); err != nil {
		log.Log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer postgresDB.Close()

	v, err := newVault(options)
	if err != nil {
		return err
	}
	dev := device.New(v, zapLogger)
	defer dev.Close()

	ca, err := certgen.LoadAuthority(
		filepath.Join(options.CertDir, certgen.CACertFile),
		filepath.Join(options.CertDir, certgen.CAKeyFile),
	)
	if err != nil {
		return fmt.Errorf("failed to load CA: %w", err)
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(repository.NewPostgresUserRepository(postgresDB), v.Capacity())
	vaultService := service.NewVaultService(dev, authService)
	service.StartSessionReaper(ctx, vaultService,
		time.Duration(options.ReapInterval),
		time.Duration(options.SessionTTL),
		zapLogger,
	)

	// Build the router with middleware and routes.
	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService, Issuer: ca},
		&http.VaultHandler{VaultService: vaultService},
		&http.SessionHandler{SessionService: vaultService},
		zapLogger,
		options.Diagnostics,
	)

	tlsConfig, err := newTLSConfig(options.CertDir)
	if err != nil {
		return err
	}

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting HTTPS server",
			zap.String("addr", options.Port),
			zap.Int("users", v.Capacity()),
			zap.Int("hint_capacity", v.HintCapacity()),
			zap.Bool("diagnostics", options.Diagnostics),
		)
		errCh <- server.ListenAndServeTLS("", "")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start HTTPS server: %w", err)
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newVault(options *config.Options) (*vault.Vault, error) {
	opts := []vault.Option{vault.WithHintCapacity(options.HintCapacity)}
	if options.EntryLimit > 0 {
		opts = append(opts, vault.WithEntryLimit(options.EntryLimit))
	}
	v, err := vault.New(options.MaxUsers, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create vault: %w", err)
	}
	return v, nil
}

// newTLSConfig loads the server pair and the CA from dir. Client
// certificates are verified when presented; CertAuth rejects requests
// without one except registration.
func newTLSConfig(dir string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(
		filepath.Join(dir, certgen.ServerCertFile),
		filepath.Join(dir, certgen.ServerKeyFile),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load server TLS cert/key: %w", err)
	}

	caCert, err := os.ReadFile(filepath.Join(dir, certgen.CACertFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		return nil, errors.New("failed to append CA cert to pool")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.VerifyClientCertIfGiven,
		ClientCAs:    caCertPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
