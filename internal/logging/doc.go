// Package logging provides structured logging for tapcalc.
//
// This package wraps a zap logger with package-level convenience functions
// so that the calculator surfaces (terminal UI, browser server, one-shot
// commands) log the same way.
//
// # Silent by Default
//
// The terminal UI draws on stdout, so logging is off unless a level is
// given through --log-level or the TAPCALC_LOG_LEVEL environment variable.
// Output goes to stderr in zap's console encoding.
//
// # Specialized Logging
//
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogKeyEvent("ws", "7", "17", true)
//	logging.LogEvaluation("tui", "5/0", "Error: Division by zero", err)
//	logging.LogHTTPRequest(remoteAddr, "GET", "/", 200)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
