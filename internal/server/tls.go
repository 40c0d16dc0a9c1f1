package server

import (
	"crypto/tls"
	"fmt"

	"github.com/muurk/tapcalc/internal/logging"
	"go.uber.org/zap"
)

// NewTLSConfig loads a certificate pair for serving the page over HTTPS.
// Browsers then reach the WebSocket endpoint over wss://.
func NewTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	logging.Info("TLS configuration created from files",
		zap.String("cert", certPath),
		zap.String("key", keyPath),
	)

	return NewTLSConfigFromCertificate(cert), nil
}

// NewTLSConfigFromCertificate builds the server TLS config around cert.
func NewTLSConfigFromCertificate(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"http/1.1"},
		VerifyConnection: func(cs tls.ConnectionState) error {
			logging.Debug("TLS handshake completed",
				zap.String("server_name", cs.ServerName),
				zap.String("tls_version", tls.VersionName(cs.Version)),
				zap.String("cipher_suite", tls.CipherSuiteName(cs.CipherSuite)),
			)
			return nil
		},
	}
}

// GetTLSInfo returns human-readable TLS configuration information
func GetTLSInfo(config *tls.Config) map[string]interface{} {
	return map[string]interface{}{
		"min_version":     tls.VersionName(config.MinVersion),
		"num_certs":       len(config.Certificates),
		"alpn":            config.NextProtos,
		"session_tickets": !config.SessionTicketsDisabled,
	}
}
