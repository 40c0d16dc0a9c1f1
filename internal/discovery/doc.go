// Package discovery advertises and finds tapcalc servers with mDNS.
//
// `tapcalc serve --mdns` registers a "_tapcalc._tcp" service so phones and
// laptops on the same network can find the calculator page without typing
// an address. `tapcalc discover` browses for those services.
//
// # TXT Records
//
//	path=/          calculator page
//	ws=/ws          WebSocket endpoint
//	tls=true|false  whether the server expects HTTPS
//	version=...     tapcalc version
//
// # Usage Example
//
//	ad, err := discovery.Advertise(discovery.AdvertiseOptions{Port: 8080})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ad.Shutdown()
//
//	instances, err := discovery.Scan(3 * time.Second)
//	for _, inst := range instances {
//	    fmt.Println(inst.Name, inst.URL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Clients must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
