package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/tapcalc/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type tapcalc servers advertise
	ServiceType = "_tapcalc._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultWebSocketPath is assumed when an instance does not advertise one
	DefaultWebSocketPath = "/ws"
)

// TXT record keys.
const (
	TxtVersion       = "version"
	TxtTLS           = "tls"
	TxtWebSocketPath = "ws"
	TxtPath          = "path"
)

// Scanner handles mDNS discovery of tapcalc servers
type Scanner struct {
	// Timeout is the maximum time to wait for responses
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses until the timeout or ctx ends and returns every instance
// seen, deduplicated by name.
func (s *Scanner) Scan(ctx context.Context) ([]*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu        sync.Mutex
		instances []*Instance
		seen      = make(map[string]bool)
		done      = make(chan struct{})
	)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(done)
		for entry := range entries {
			inst := parseServiceEntry(entry)
			if inst == nil {
				continue
			}
			mu.Lock()
			if !seen[inst.Name] {
				seen[inst.Name] = true
				instances = append(instances, inst)
				logging.Debug("Discovered tapcalc instance",
					zap.String("name", inst.Name),
					zap.String("url", inst.URL()),
				)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	// The resolver closes entries once the browse context ends.
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Instance(nil), instances...), nil
}

// WaitForInstance returns the first instance named name.
func (s *Scanner) WaitForInstance(ctx context.Context, name string) (*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Instance, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			inst := parseServiceEntry(entry)
			if inst != nil && inst.Name == name {
				select {
				case found <- inst:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case inst := <-found:
		return inst, nil
	case <-ctx.Done():
		select {
		case inst := <-found:
			return inst, nil
		default:
		}
		return nil, fmt.Errorf("instance %q not found within %s", name, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to an Instance.
// Returns nil when the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Instance {
	if entry == nil || entry.Port <= 0 {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	metadata := parseTXT(entry.Text)
	tls, _ := strconv.ParseBool(metadata[TxtTLS])

	name := unescapeInstance(entry.Instance)
	if name == "" {
		name = strings.TrimSuffix(entry.HostName, ".")
	}

	return &Instance{
		Name:         name,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		TLS:          tls,
		Version:      metadata[TxtVersion],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" records; a bare key maps to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}
	return metadata
}

// unescapeInstance removes DNS label escaping ("tapcalc\ on\ studio").
func unescapeInstance(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}

// Scan is a convenience function to browse with a custom timeout
func Scan(timeout time.Duration) ([]*Instance, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(context.Background())
}
