package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Instance is a tapcalc server found on the network.
type Instance struct {
	// Name is the advertised instance name (e.g., "tapcalc on studio")
	Name string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP listen port
	Port int

	// TLS is true when the server only accepts HTTPS
	TLS bool

	// Version is the server's tapcalc version, if advertised
	Version string

	// Metadata holds the raw TXT records
	Metadata map[string]string

	// DiscoveredAt is when the instance was seen
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	return fmt.Sprintf("%s (%s) at %s", i.Name, i.Hostname, i.URL())
}

// URL returns the calculator page URL.
func (i *Instance) URL() string {
	scheme := "http"
	if i.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(i.IP, strconv.Itoa(i.Port)))
}

// WebSocketURL returns the session endpoint URL.
func (i *Instance) WebSocketURL() string {
	scheme := "ws"
	if i.TLS {
		scheme = "wss"
	}
	path := i.GetMetadata(TxtWebSocketPath)
	if path == "" {
		path = DefaultWebSocketPath
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(i.IP, strconv.Itoa(i.Port)), path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
