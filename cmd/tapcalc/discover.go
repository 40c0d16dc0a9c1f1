package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/tapcalc/internal/discovery"
	"github.com/muurk/tapcalc/internal/tui"
	"github.com/muurk/tapcalc/internal/ui"
)

// Discovery command flags
var (
	scanTimeout  int
	interactive  bool
	instanceName string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find calculator servers on the network",
	Long: `Find tapcalc servers advertised over mDNS/DNS-SD.

Servers started with 'tapcalc serve --mdns' announce a _tapcalc._tcp
service with their version, TLS mode and WebSocket path. With
--interactive the results are shown in a list and the chosen server's
URL is printed. With --name the scan stops at the first server with that
instance name.`,
	Example: `  # Scan for 5 seconds (default)
  tapcalc discover

  # Longer scan for busy networks
  tapcalc discover --timeout 15

  # Pick a server from a list
  tapcalc discover --interactive

  # Wait for one named server and print its URL
  tapcalc discover --name "tapcalc on studio"`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	discoverCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose a server from an interactive list")
	discoverCmd.Flags().StringVar(&instanceName, "name", "", "Wait for the server with this instance name")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if scanTimeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}
	if interactive && instanceName != "" {
		return fmt.Errorf("--interactive and --name cannot be combined")
	}
	timeout := time.Duration(scanTimeout) * time.Second
	out := cmd.OutOrStdout()

	if instanceName != "" {
		scanner := discovery.NewScanner()
		scanner.Timeout = timeout
		inst, err := scanner.WaitForInstance(context.Background(), instanceName)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, inst.URL())
		return nil
	}

	if interactive {
		inst, err := tui.RunDiscovery(timeout)
		if err != nil {
			return err
		}
		if inst != nil {
			fmt.Fprintln(out, inst.URL())
		}
		return nil
	}

	fmt.Fprintf(out, "Scanning for tapcalc servers (timeout: %ds)...\n\n", scanTimeout)

	instances, err := discovery.Scan(timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printInstances(ui.NewPrinter(out), instances)
	return nil
}

func printInstances(p *ui.Printer, instances []*discovery.Instance) {
	if len(instances) == 0 {
		p.PrintError("No servers found", nil,
			"Start one with 'tapcalc serve --mdns'",
			"Check that multicast traffic is allowed on this network",
			"Try increasing --timeout for slower networks",
		)
		return
	}

	p.Println(fmt.Sprintf("Found %d server(s):", len(instances)))
	p.Newline()
	for _, inst := range instances {
		details := []ui.Detail{
			{Key: "URL", Value: inst.URL()},
			{Key: "WebSocket", Value: inst.WebSocketURL()},
		}
		if inst.Version != "" {
			details = append(details, ui.Detail{Key: "Version", Value: inst.Version})
		}
		if inst.Hostname != "" {
			details = append(details, ui.Detail{Key: "Host", Value: inst.Hostname})
		}
		p.PrintSuccess(inst.Name, details...)
	}
}
