package certgen

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestCA(t *testing.T) (certPEM, keyPEM []byte, caCert *x509.Certificate, caKey any) {
	t.Helper()
	certPEM, keyPEM, err := GenerateCA("Test CA", 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateCA: %v", err)
	}
	caCert, caKey, err = ParseCACredentials(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("ParseCACredentials: %v", err)
	}
	return certPEM, keyPEM, caCert, caKey
}

func TestGenerateCA(t *testing.T) {
	_, _, caCert, caKey := setupTestCA(t)

	if !caCert.IsCA || !caCert.BasicConstraintsValid {
		t.Error("CA certificate should have IsCA and BasicConstraintsValid set")
	}
	if caCert.KeyUsage&x509.KeyUsageCertSign == 0 {
		t.Errorf("CA KeyUsage = %v; want CertSign", caCert.KeyUsage)
	}
	if caCert.Subject.CommonName != "Test CA" {
		t.Errorf("CN = %q; want Test CA", caCert.Subject.CommonName)
	}
	if _, ok := caKey.(*ecdsa.PrivateKey); !ok {
		t.Errorf("CA key type = %T; want *ecdsa.PrivateKey", caKey)
	}
}

func TestLoadCACredentials_Success(t *testing.T) {
	certPEM, keyPEM, want, _ := setupTestCA(t)
	certPath, keyPath, err := WritePair(t.TempDir(), "ca", certPEM, keyPEM)
	if err != nil {
		t.Fatalf("WritePair: %v", err)
	}

	got, _, err := LoadCACredentials(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadCACredentials: %v", err)
	}
	if !got.Equal(want) {
		t.Error("loaded CA differs from the generated one")
	}
}

func TestLoadCACredentials_Errors(t *testing.T) {
	dir := t.TempDir()
	certPEM, keyPEM, _, _ := setupTestCA(t)
	certPath, keyPath, _ := WritePair(dir, "ca", certPEM, keyPEM)
	garbage := filepath.Join(dir, "garbage.pem")
	_ = os.WriteFile(garbage, []byte("nope"), 0o600)

	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	pkcs8, _ := x509.MarshalPKCS8PrivateKey(rsaKey)
	unsupported := filepath.Join(dir, "pkcs8.key")
	_ = os.WriteFile(unsupported, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}), 0o600)

	tests := []struct {
		name     string
		cert     string
		key      string
		contains string
	}{
		{"missing cert", filepath.Join(dir, "absent.crt"), keyPath, "read ca cert"},
		{"missing key", certPath, filepath.Join(dir, "absent.key"), "read ca key"},
		{"bad cert", garbage, keyPath, "invalid CA cert PEM"},
		{"bad key", certPath, garbage, "invalid CA key PEM"},
		{"unsupported key", certPath, unsupported, "unsupported key type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadCACredentials(tt.cert, tt.key)
			if err == nil || !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %v; want containing %q", err, tt.contains)
			}
		})
	}
}

func TestGenerateServerCertificate(t *testing.T) {
	caPEM, _, caCert, caKey := setupTestCA(t)

	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, caCert, caKey)
	if err != nil {
		t.Fatalf("GenerateServerCertificate: %v", err)
	}
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("X509KeyPair: %v", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatalf("parse leaf: %v", err)
	}

	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caPEM)
	for _, host := range []string{"localhost", "127.0.0.1"} {
		_, err := leaf.Verify(x509.VerifyOptions{
			DNSName:   host,
			Roots:     pool,
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		})
		if err != nil {
			t.Errorf("verify for %s: %v", host, err)
		}
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	_, _, caCert, caKey := setupTestCA(t)
	if _, _, err := GenerateServerCertificate(nil, caCert, caKey); err == nil {
		t.Fatal("expected error without hosts")
	}
}

func TestWritePair_KeyPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	_, keyPath, err := WritePair(dir, "server", []byte("c"), []byte("k"))
	if err != nil {
		t.Fatalf("WritePair: %v", err)
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key mode = %v; want 0600", info.Mode().Perm())
	}
}
