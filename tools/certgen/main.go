// Package main generates a Certificate Authority (CA) and a server
// certificate for the REST and SOAP listeners, writing them to files under
// the "certs" directory. An existing CA can be reused with -ca and -ca-key.
package main

import (
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/itemgate/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	caCert := flag.String("ca", "", "existing CA certificate to sign with (requires -ca-key)")
	caKey := flag.String("ca-key", "", "private key of the existing CA")
	flag.Parse()

	if err := run(*dir, strings.Split(*hosts, ","), *caCert, *caKey); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}

// run writes server.crt/server.key into dir. Without an existing CA it also
// generates and writes ca.crt/ca.key.
func run(dir string, hosts []string, caCertPath, caKeyPath string) error {
	if (caCertPath == "") != (caKeyPath == "") {
		return errors.New("-ca and -ca-key must be given together")
	}

	var (
		caCert *x509.Certificate
		caKey  any
		err    error
	)
	if caCertPath != "" {
		caCert, caKey, err = certgen.LoadCACredentials(caCertPath, caKeyPath)
		if err != nil {
			return err
		}
	} else {
		caPEM, caKeyPEM, err := certgen.GenerateCA("ItemGate CA", 10*365*24*time.Hour)
		if err != nil {
			return err
		}
		if _, _, err := certgen.WritePair(dir, "ca", caPEM, caKeyPEM); err != nil {
			return err
		}
		caCert, caKey, err = certgen.ParseCACredentials(caPEM, caKeyPEM)
		if err != nil {
			return err
		}
	}

	var cleaned []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			cleaned = append(cleaned, h)
		}
	}
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(cleaned, caCert, caKey)
	if err != nil {
		return err
	}
	_, _, err = certgen.WritePair(dir, "server", certPEM, keyPEM)
	return err
}
