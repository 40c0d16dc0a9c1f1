// Package server hosts the browser calculator.
//
// It serves a single page with a keypad and a keyboard listener. The page
// opens a WebSocket to /ws and forwards every key press as a JSON message
// (see package protocol). The server owns one calc.Display per session,
// applies each key and answers with the new display text, so the page only
// renders.
//
// # Routes
//
//	GET  /          embedded calculator page
//	GET  /ws        WebSocket session
//	POST /api/cut   roll cutting plan (JSON)
//	GET  /metrics   Prometheus metrics
//	GET  /healthz   liveness probe
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{
//	    Port:       8080,
//	    Calculator: calc.DefaultOptions(),
//	    RateLimit:  50,
//	    RateBurst:  100,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until SIGINT/SIGTERM or a serve error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Rate Limiting
//
// Key and reset messages are limited per remote host with a token bucket.
// Rejected messages get an error reply and leave the display untouched.
//
// # TLS
//
// When a certificate and key are configured the listener is wrapped in TLS
// and the page connects over wss://.
//
// # Graceful Shutdown
//
// Start handles SIGINT and SIGTERM:
//  1. Stop accepting new connections
//  2. Send a close frame to every session
//  3. Wait for session goroutines, bounded by ShutdownTimeout
package server
