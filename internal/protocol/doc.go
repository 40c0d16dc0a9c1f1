// Package protocol defines the JSON messages exchanged between the browser
// calculator page and `tapcalc serve`.
//
// Every WebSocket frame is one JSON object in a text message.
//
// # Client Messages
//
//	{"type":"key","key":"7"}        one key press (browser KeyboardEvent.key name)
//	{"type":"reset"}                clear the display
//	{"type":"ping"}                 liveness check
//
// # Server Messages
//
//	{"type":"display","display":"6×7","state":"entering","action":"digit"}
//	{"type":"display","display":"Error","state":"error","action":"evaluate","error":"Invalid Expression"}
//	{"type":"error","display":"12","state":"entering","error":"rate limited"}
//	{"type":"pong","display":"12"}
//
// The server owns the display state; the page renders whatever the last
// message says. HandleMessage applies a parsed client message to a
// calc.Display and returns the reply.
package protocol
