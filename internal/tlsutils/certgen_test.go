package tlsutils

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSelfSignedTLSCertificate(t *testing.T) {
	certFile, keyFile, cleanup, err := GenerateSelfSignedTLSCertificate("player.local", "10.0.0.7")
	require.NoError(t, err)

	keyPair, err := tls.LoadX509KeyPair(certFile, keyFile)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(keyPair.Certificate[0])
	require.NoError(t, err)
	require.Equal(t, "player.local", cert.Subject.CommonName)
	require.Equal(t, []string{"player.local"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	require.True(t, cert.IPAddresses[0].Equal(net.ParseIP("10.0.0.7")))
	require.NoError(t, cert.VerifyHostname("player.local"))

	cleanup()

	_, err = os.Stat(certFile)
	require.True(t, os.IsNotExist(err), "cleanup should remove the certificate")
}

func TestGenerateSelfSignedTLSCertificateDefaultHosts(t *testing.T) {
	certFile, keyFile, cleanup, err := GenerateSelfSignedTLSCertificate()
	require.NoError(t, err)
	defer cleanup()

	keyPair, err := tls.LoadX509KeyPair(certFile, keyFile)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(keyPair.Certificate[0])
	require.NoError(t, err)
	require.NoError(t, cert.VerifyHostname("localhost"))
	require.NoError(t, cert.VerifyHostname("127.0.0.1"))
}
