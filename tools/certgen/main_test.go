package main

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/atinyakov/pwdvault/internal/certgen"
)

func TestRun_WritesBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var out bytes.Buffer
	if err := run([]string{"-dir", dir, "-hosts", "localhost, vault.local"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), dir) {
		t.Errorf("output %q does not mention %s", out.String(), dir)
	}

	ca, err := certgen.LoadAuthority(filepath.Join(dir, certgen.CACertFile), filepath.Join(dir, certgen.CAKeyFile))
	if err != nil {
		t.Fatalf("LoadAuthority: %v", err)
	}
	if ca.Cert.Subject.CommonName != "pwdvault CA" {
		t.Errorf("CA CN = %q", ca.Cert.Subject.CommonName)
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, certgen.ServerCertFile), filepath.Join(dir, certgen.ServerKeyFile))
	if err != nil {
		t.Fatalf("server pair: %v", err)
	}
	srv, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(srv.DNSNames, []string{"localhost", "vault.local"}) {
		t.Errorf("DNSNames = %v", srv.DNSNames)
	}
	if err := srv.CheckSignatureFrom(ca.Cert); err != nil {
		t.Errorf("server cert not signed by CA: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "client.crt")); !os.IsNotExist(err) {
		t.Errorf("client.crt should not exist without -client, stat err = %v", err)
	}
}

func TestRun_ClientCertificate(t *testing.T) {
	dir := t.TempDir()
	if err := run([]string{"-dir", dir, "-client", "alice"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "client.crt"))
	if err != nil {
		t.Fatal(err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		t.Fatal("client.crt is not PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatal(err)
	}
	if cert.Subject.CommonName != "alice" {
		t.Errorf("client CN = %q; want alice", cert.Subject.CommonName)
	}
}

func TestRun_BadFlag(t *testing.T) {
	if err := run([]string{"-nope"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestSplitHosts(t *testing.T) {
	got := splitHosts(" a ,,b,")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("splitHosts = %v", got)
	}
}
