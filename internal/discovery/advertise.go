package discovery

import (
	"fmt"
	"os"
	"strconv"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/tapcalc/internal/logging"
	"go.uber.org/zap"
)

// Advertisement is a registered mDNS service. Shutdown withdraws it.
type Advertisement struct {
	Name   string
	server *zeroconf.Server
}

// AdvertiseOptions describes the service to announce.
type AdvertiseOptions struct {
	Name    string // instance name; DefaultInstanceName() when empty
	Port    int
	TLS     bool
	Version string
}

// DefaultInstanceName returns "tapcalc on <hostname>".
func DefaultInstanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "tapcalc"
	}
	return "tapcalc on " + host
}

// TXTRecords returns the TXT records announced for opts.
func TXTRecords(opts AdvertiseOptions) []string {
	txt := []string{
		TxtPath + "=/",
		TxtWebSocketPath + "=" + DefaultWebSocketPath,
		TxtTLS + "=" + strconv.FormatBool(opts.TLS),
	}
	if opts.Version != "" {
		txt = append(txt, TxtVersion+"="+opts.Version)
	}
	return txt
}

// Advertise registers a _tapcalc._tcp service on all multicast interfaces.
func Advertise(opts AdvertiseOptions) (*Advertisement, error) {
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", opts.Port)
	}
	if opts.Name == "" {
		opts.Name = DefaultInstanceName()
	}

	server, err := zeroconf.Register(opts.Name, ServiceType, ServiceDomain, opts.Port, TXTRecords(opts), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising via mDNS",
		zap.String("name", opts.Name),
		zap.String("service", ServiceType),
		zap.Int("port", opts.Port),
	)

	return &Advertisement{Name: opts.Name, server: server}, nil
}

// Shutdown withdraws the advertisement. Safe on a nil receiver.
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Info("mDNS advertisement withdrawn", zap.String("name", a.Name))
}
