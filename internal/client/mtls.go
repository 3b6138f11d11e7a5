// Package client talks to a pwdvault server over mutual TLS.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/atinyakov/pwdvault/internal/models"
)

// DefaultTimeout bounds every request made by clients built here.
const DefaultTimeout = 10 * time.Second

func loadCAPool(caPath string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	return pool, nil
}

// Register registers login at baseURL, trusting only the CA in caPath,
// and writes the returned client certificate and key to certPath and
// keyPath with mode 0600.
func Register(ctx context.Context, baseURL, login, caPath, certPath, keyPath string) (models.Registration, error) {
	pool, err := loadCAPool(caPath)
	if err != nil {
		return models.Registration{}, err
	}
	hc := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}},
		Timeout:   DefaultTimeout,
	}

	body, err := json.Marshal(map[string]string{"login": login})
	if err != nil {
		return models.Registration{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/register", bytes.NewReader(body))
	if err != nil {
		return models.Registration{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return models.Registration{}, fmt.Errorf("register failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return models.Registration{}, statusError(resp)
	}

	var reg models.Registration
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return models.Registration{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := os.WriteFile(certPath, []byte(reg.Cert), 0o600); err != nil {
		return models.Registration{}, fmt.Errorf("failed to save %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, []byte(reg.Key), 0o600); err != nil {
		return models.Registration{}, fmt.Errorf("failed to save %s: %w", keyPath, err)
	}
	return reg, nil
}

// NewMTLS builds an HTTP client presenting the certificate in
// certFile/keyFile and trusting only the CA in caFile.
func NewMTLS(certFile, keyFile, caFile string) (*http.Client, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert/key: %w", err)
	}
	pool, err := loadCAPool(caFile)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			RootCAs:      pool,
			MinVersion:   tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: DefaultTimeout}, nil
}
