package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/tapcalc/internal/calc"
	"github.com/muurk/tapcalc/internal/cutting"
	"github.com/muurk/tapcalc/internal/protocol"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = &Config{Calculator: calc.DefaultOptions()}
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("Dial() status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { _ = conn.Close() })

	// Every session starts with the current display.
	first := readMessage(t, conn)
	if first.Type != protocol.TypeDisplay || first.State != string(calc.StateEmpty) {
		t.Fatalf("initial message = %+v", first)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *protocol.ServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	msg, err := protocol.ParseServerMessage(data)
	if err != nil {
		t.Fatalf("ParseServerMessage() error = %v", err)
	}
	return msg
}

func pressKey(t *testing.T, conn *websocket.Conn, key string) *protocol.ServerMessage {
	t.Helper()
	if err := conn.WriteJSON(protocol.BuildKey(key)); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	return readMessage(t, conn)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestWebSocketSession(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	steps := []struct {
		key  string
		want string
	}{
		{"1", "1"},
		{"2", "12"},
		{"x", "12×"},
		{"+", "12+"},
		{"3", "12+3"},
		{"Enter", "15"},
	}
	for _, step := range steps {
		msg := pressKey(t, conn, step.key)
		if msg.Type != protocol.TypeDisplay || msg.Display != step.want {
			t.Fatalf("key %q: got %+v, want display %q", step.key, msg, step.want)
		}
	}
}

func TestWebSocketDivisionByZeroAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	for _, k := range []string{"1", "/", "0"} {
		pressKey(t, conn, k)
	}
	msg := pressKey(t, conn, "=")
	if msg.Display != calc.DivisionByZeroText || msg.State != string(calc.StateError) {
		t.Fatalf("got %+v", msg)
	}

	status, body := get(t, ts.URL+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("/metrics status = %d", status)
	}
	for _, want := range []string{
		`tapcalc_evaluations_total{outcome="division_by_zero"} 1`,
		`tapcalc_key_events_total{action="digit"} 2`,
		`tapcalc_key_events_total{action="operator"} 1`,
		`tapcalc_sessions_active 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics should contain %q", want)
		}
	}
}

func TestWebSocketStrictDivision(t *testing.T) {
	opts := calc.DefaultOptions()
	opts.DivisionCheck = calc.DivisionCheckStrict
	_, ts := newTestServer(t, &Config{Calculator: opts})
	conn := dial(t, ts)

	for _, k := range []string{"1", "/", "1", "0"} {
		pressKey(t, conn, k)
	}
	if msg := pressKey(t, conn, "Enter"); msg.Display != "0.1" {
		t.Errorf("strict 1/10 = %q, want 0.1", msg.Display)
	}
}

func TestWebSocketSessionsAreIndependent(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	a := dial(t, ts)
	b := dial(t, ts)

	pressKey(t, a, "7")
	if msg := pressKey(t, b, "8"); msg.Display != "8" {
		t.Errorf("second session display = %q, want 8", msg.Display)
	}
	if msg := pressKey(t, a, "9"); msg.Display != "79" {
		t.Errorf("first session display = %q, want 79", msg.Display)
	}
	if n := srv.GetActiveSessions(); n != 2 {
		t.Errorf("GetActiveSessions() = %d, want 2", n)
	}
}

func TestWebSocketRejectedMessages(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	pressKey(t, conn, "4")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != protocol.TypeError || msg.Display != "4" {
		t.Errorf("invalid message reply = %+v", msg)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != protocol.TypeError || msg.Error != "text frames only" {
		t.Errorf("binary frame reply = %+v", msg)
	}

	if err := conn.WriteJSON(&protocol.ClientMessage{Type: protocol.TypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != protocol.TypePong {
		t.Errorf("ping reply = %+v", msg)
	}

	if msg := pressKey(t, conn, "F1"); msg.Type != protocol.TypeDisplay || msg.Display != "4" {
		t.Errorf("unbound key reply = %+v", msg)
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	_, ts := newTestServer(t, &Config{
		Calculator: calc.DefaultOptions(),
		RateLimit:  0.001,
		RateBurst:  2,
	})
	conn := dial(t, ts)

	pressKey(t, conn, "1")
	pressKey(t, conn, "2")
	msg := pressKey(t, conn, "3")
	if msg.Type != protocol.TypeError || msg.Error != "rate limited" {
		t.Fatalf("third key reply = %+v, want rate limited", msg)
	}
	if msg.Display != "12" {
		t.Errorf("rate limited key should not reach the display, got %q", msg.Display)
	}

	// Pings are never limited.
	if err := conn.WriteJSON(&protocol.ClientMessage{Type: protocol.TypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != protocol.TypePong {
		t.Errorf("ping reply = %+v", msg)
	}
}

func TestRejectedMessagesMetric(t *testing.T) {
	srv, ts := newTestServer(t, &Config{
		Calculator: calc.DefaultOptions(),
		RateLimit:  0.001,
		RateBurst:  1,
	})
	conn := dial(t, ts)
	pressKey(t, conn, "1")

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	readMessage(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json`)); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != protocol.TypeError {
		t.Errorf("invalid JSON reply = %+v", msg)
	}

	if msg := pressKey(t, conn, "2"); msg.Error != "rate limited" {
		t.Errorf("second key reply = %+v, want rate limited", msg)
	}

	_, body := get(t, ts.URL+"/metrics")
	for _, reason := range []string{reasonBinaryFrame, reasonInvalidMessage, reasonRateLimited} {
		want := `tapcalc_messages_rejected_total{reason="` + reason + `"} 1`
		if !strings.Contains(body, want) {
			t.Errorf("/metrics should contain %q", want)
		}
	}

	families, err := srv.Metrics().Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "tapcalc_messages_rejected_total" {
			found = true
			if n := len(f.GetMetric()); n != 3 {
				t.Errorf("reason series = %d, want 3", n)
			}
		}
	}
	if !found {
		t.Error("registry has no tapcalc_messages_rejected_total family")
	}
}

func TestHTTPRoutes(t *testing.T) {
	_, ts := newTestServer(t, nil)

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK || !strings.Contains(body, `id="display"`) {
		t.Errorf("GET / = %d", status)
	}

	status, body = get(t, ts.URL+"/healthz")
	if status != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Errorf("GET /healthz = %d %q", status, body)
	}

	status, _ = get(t, ts.URL+"/ws")
	if status != http.StatusBadRequest {
		t.Errorf("plain GET /ws = %d, want 400", status)
	}
}

func TestCutEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCount  int
	}{
		{"valid", `{"material_width":500,"target_width":150,"length":50}`, http.StatusOK, 3},
		{"out of range", `{"material_width":100,"target_width":150,"length":50}`, http.StatusBadRequest, 0},
		{"unknown field", `{"material_width":500,"width":150}`, http.StatusBadRequest, 0},
		{"not json", `hello`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/cut", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				var e map[string]string
				if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e["error"] == "" {
					t.Errorf("error body = %v (%v)", e, err)
				}
				return
			}
			var plan cutting.Plan
			if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if plan.MainCount != tt.wantCount || plan.AdditionalWidth == nil || *plan.AdditionalWidth != 50 {
				t.Errorf("plan = %+v", plan)
			}
		})
	}
}

func TestServeAndShutdown(t *testing.T) {
	srv, err := New(&Config{Calculator: calc.DefaultOptions(), ShutdownTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer func() { _ = conn.Close() }()
	readMessage(t, conn)

	if srv.Addr() == nil {
		t.Error("Addr() should be set while serving")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after Shutdown")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("client should see a going-away close, got %v", err)
	}
	if n := srv.GetActiveSessions(); n != 0 {
		t.Errorf("GetActiveSessions() after shutdown = %d", n)
	}
}

func TestShutdown_RefusesNewSessions(t *testing.T) {
	srv, err := New(&Config{Calculator: calc.DefaultOptions()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if srv.track(&session{remoteAddr: "127.0.0.1:9"}) {
		t.Error("track() after Shutdown should refuse the session")
	}
	if n := srv.GetActiveSessions(); n != 0 {
		t.Errorf("GetActiveSessions() = %d, want 0", n)
	}
}

func TestShutdown_TimeoutReturnsContextError(t *testing.T) {
	srv, err := New(&Config{Calculator: calc.DefaultOptions()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// A session goroutine that never finishes.
	srv.wg.Add(1)
	defer srv.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestNew_TLSConfigErrors(t *testing.T) {
	if _, err := New(&Config{CertPath: "cert.pem"}); err == nil {
		t.Error("New() with a certificate but no key should fail")
	}
	dir := t.TempDir()
	if _, err := New(&Config{CertPath: dir + "/missing.pem", KeyPath: dir + "/missing.key"}); err == nil {
		t.Error("New() with missing certificate files should fail")
	}
}

func TestGetTLSInfo(t *testing.T) {
	info := GetTLSInfo(NewTLSConfigFromCertificate(tls.Certificate{}))
	if info["min_version"] != "TLS 1.2" {
		t.Errorf("min_version = %v", info["min_version"])
	}
	if info["num_certs"] != 1 {
		t.Errorf("num_certs = %v", info["num_certs"])
	}
}

func TestConfigAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"127.0.0.1", 9000, "127.0.0.1:9000"},
		{"::1", 80, "[::1]:80"},
	}
	for _, tt := range tests {
		c := &Config{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
