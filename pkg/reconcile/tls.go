package reconcile

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

func tlsCAPoolFromFile(ca string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()

	cert, err := os.ReadFile(ca)
	if err != nil {
		return nil, err
	}

	if ok := pool.AppendCertsFromPEM(cert); !ok {
		return nil, errors.New("invalid CA certificate")
	}

	return pool, nil
}

func tlsCAPoolFromPEM(ca string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()

	if ok := pool.AppendCertsFromPEM([]byte(ca)); !ok {
		return nil, errors.New("invalid CA certificate")
	}

	return pool, nil
}

func tlsKeyPairFromFile(cert string, key string) (tls.Certificate, error) {
	return tls.LoadX509KeyPair(cert, key)
}

func tlsKeyPairFromPEM(cert string, key string) (tls.Certificate, error) {
	return tls.X509KeyPair([]byte(cert), []byte(key))
}

// tlsSetup builds a TLS configuration from backend TLS options. PEM-encoded
// material takes precedence over file paths.
func tlsSetup(opts *TLSOptions) (*tls.Config, error) {
	var tlsCAPool *x509.CertPool
	var tlsErr error

	tlsCfg := &tls.Config{
		InsecureSkipVerify: opts.Insecure,
	}

	if len(opts.CA.PEM) > 0 {
		tlsCAPool, tlsErr = tlsCAPoolFromPEM(opts.CA.PEM)
	} else if len(opts.CA.Path) > 0 {
		tlsCAPool, tlsErr = tlsCAPoolFromFile(opts.CA.Path)
	}

	if tlsErr != nil {
		return nil, errors.Wrap(tlsErr, "CA pool initialization failure")
	}

	tlsCfg.RootCAs = tlsCAPool

	var tlsKeyPair tls.Certificate
	var tlsKeyPairSet bool

	if len(opts.Certificate.PEM) > 0 && len(opts.Key.PEM) > 0 {
		tlsKeyPair, tlsErr = tlsKeyPairFromPEM(opts.Certificate.PEM, opts.Key.PEM)
		tlsKeyPairSet = true
	} else if len(opts.Certificate.Path) > 0 && len(opts.Key.Path) > 0 {
		tlsKeyPair, tlsErr = tlsKeyPairFromFile(opts.Certificate.Path, opts.Key.Path)
		tlsKeyPairSet = true
	}

	if tlsErr != nil {
		return nil, errors.Wrap(tlsErr, "key pair initialization failure")
	}

	if tlsKeyPairSet {
		tlsCfg.Certificates = []tls.Certificate{tlsKeyPair}
	}

	return tlsCfg, nil
}
