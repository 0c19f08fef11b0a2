package tlsutils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// GenerateSelfSignedTLSCertificate writes a self-signed certificate for the
// given host names and IP addresses into a temporary directory.
// The returned function removes the directory.
func GenerateSelfSignedTLSCertificate(hosts ...string) (certFile, keyFile string, cleanup func(), err error) {
	if len(hosts) == 0 {
		hosts = []string{"localhost", "127.0.0.1"}
	}

	certPEM, keyPEM, err := generateSelfSignedTLSCertificate(hosts, time.Now())
	if err != nil {
		return "", "", func() {}, err
	}

	dir, err := os.MkdirTemp("", "dialogue-player-tls-")
	if err != nil {
		return "", "", func() {}, err
	}

	cleanup = func() {
		_ = os.RemoveAll(dir)
	}

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	err = os.WriteFile(certFile, certPEM, 0o600)
	if err != nil {
		cleanup()
		return "", "", func() {}, fmt.Errorf("write certificate: %w", err)
	}

	err = os.WriteFile(keyFile, keyPEM, 0o600)
	if err != nil {
		cleanup()
		return "", "", func() {}, fmt.Errorf("write private key: %w", err)
	}

	return certFile, keyFile, cleanup, nil
}

func generateSelfSignedTLSCertificate(hosts []string, notBefore time.Time) ([]byte, []byte, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ECDSA key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   hosts[0],
			Organization: []string{"dialogue-player"},
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(30 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	privBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal ECDSA private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privBytes})

	return certPEM, keyPEM, nil
}
