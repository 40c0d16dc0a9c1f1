package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/tapcalc/internal/discovery"
	"github.com/muurk/tapcalc/internal/server"
	"github.com/muurk/tapcalc/internal/version"
)

// Server command flags
var (
	serveHost    string
	servePort    int
	certPath     string
	keyPath      string
	advertise    bool
	instanceName string
	rateLimit    float64
	rateBurst    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser calculator",
	Long: `Serve the browser keypad page and its WebSocket endpoint.

Every WebSocket connection gets its own display. The page sends one message
per key press and renders the display the server returns. Prometheus
metrics are exposed on /metrics and a liveness probe on /healthz.

TLS is enabled when both --cert and --key are given. With --mdns the server
is advertised as a _tapcalc._tcp service so 'tapcalc discover' can find it.

The server shuts down gracefully on SIGINT or SIGTERM.`,
	Example: `  # Serve on port 8080
  tapcalc serve

  # Serve on all interfaces with TLS
  tapcalc serve --port 8443 --cert cert.pem --key key.pem

  # Advertise on the local network
  tapcalc serve --mdns --name "kitchen tablet"

  # Allow 5 key events per second per client host
  tapcalc serve --rate 5 --burst 20 --log-level info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (empty = listen on all interfaces)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Listen port")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file (requires --key)")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file (requires --cert)")
	serveCmd.Flags().BoolVar(&advertise, "mdns", false, "Advertise the server over mDNS")
	serveCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default: \"tapcalc on <hostname>\")")
	serveCmd.Flags().Float64Var(&rateLimit, "rate", 0, "Key events per second per client host (0 = unlimited)")
	serveCmd.Flags().IntVar(&rateBurst, "burst", 0, "Rate limiter burst size")

	rootCmd.AddCommand(serveCmd)
}

// serverConfig merges the server section of the config file with flags.
func serverConfig(cmd *cobra.Command) (*server.Config, error) {
	opts, err := calcOptions(cmd)
	if err != nil {
		return nil, err
	}

	prefs := cfg.Server
	conf := &server.Config{
		Host:       prefs.Host,
		Port:       prefs.Port,
		Calculator: opts,
		RateLimit:  prefs.RateLimit,
		RateBurst:  prefs.RateBurst,
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		conf.Host = serveHost
	}
	if flags.Changed("port") {
		conf.Port = servePort
	}
	if flags.Changed("rate") {
		conf.RateLimit = rateLimit
	}
	if flags.Changed("burst") {
		conf.RateBurst = rateBurst
	}

	// Validate: Either both cert and key are provided, or neither
	if (certPath != "") != (keyPath != "") {
		return nil, fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("private key file not found: %s", keyPath)
		}
		conf.CertPath = certPath
		conf.KeyPath = keyPath
	}

	if conf.Port < 0 || conf.Port > 65535 {
		return nil, fmt.Errorf("port must be between 0 and 65535, got %d", conf.Port)
	}
	if conf.RateLimit < 0 {
		return nil, fmt.Errorf("--rate must not be negative")
	}
	if conf.RateLimit > 0 && conf.RateBurst <= 0 {
		return nil, fmt.Errorf("--burst must be positive when --rate is set")
	}
	return conf, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := serverConfig(cmd)
	if err != nil {
		return err
	}

	mdns := cfg.Server.MDNS
	if cmd.Flags().Changed("mdns") {
		mdns = advertise
	}
	name := cfg.Server.InstanceName
	if cmd.Flags().Changed("name") {
		name = instanceName
	}
	if mdns && conf.Port == 0 {
		return fmt.Errorf("--mdns requires a fixed --port")
	}

	srv, err := server.New(conf)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if mdns {
		ad, err := discovery.Advertise(discovery.AdvertiseOptions{
			Name:    name,
			Port:    conf.Port,
			TLS:     conf.TLSEnabled(),
			Version: version.Version,
		})
		if err != nil {
			return err
		}
		defer ad.Shutdown()
		fmt.Fprintf(cmd.OutOrStdout(), "Advertising %q as %s\n", ad.Name, discovery.ServiceType)
	}

	scheme := "http"
	if conf.TLSEnabled() {
		scheme = "https"
	}
	host := conf.Host
	if host == "" {
		host = "localhost"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving calculator on %s://%s (ctrl+c to stop)\n", scheme, net.JoinHostPort(host, strconv.Itoa(conf.Port)))

	return srv.Start()
}
