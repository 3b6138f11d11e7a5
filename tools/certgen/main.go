// Command certgen bootstraps the certificate directory of a pwdvault
// server: a CA, a server certificate signed by it and, optionally, a
// client certificate for a login.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/pwdvault/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", "certs", "output directory")
	caName := fs.String("ca", "pwdvault CA", "CA common name")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma separated server names")
	client := fs.String("client", "", "also issue client.crt/client.key for this login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ca, err := certgen.NewAuthority(*caName)
	if err != nil {
		return err
	}
	if err := ca.WriteBundle(*dir, splitHosts(*hosts)...); err != nil {
		return err
	}

	if *client != "" {
		certPEM, keyPEM, err := ca.IssueClientCertificate(*client)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(*dir, "client.crt"), certPEM, 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(*dir, "client.key"), keyPEM, 0o600); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "certificates generated into %s\n", *dir)
	return nil
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
