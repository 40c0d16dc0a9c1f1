package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/tapcalc/internal/calc"
	"github.com/muurk/tapcalc/internal/logging"
	"github.com/muurk/tapcalc/internal/protocol"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// session is one browser tab: a connection and the display it drives.
type session struct {
	conn       *websocket.Conn
	remoteAddr string
	display    *calc.Display

	writeMu sync.Mutex
}

func (s *session) write(msg *protocol.ServerMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

func (s *session) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// close sends a close frame and closes the connection, which ends the read loop.
func (s *session) close(code int, text string) {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
	s.writeMu.Unlock()
	_ = s.conn.Close()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	sess := &session{
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		display:    calc.NewDisplay(s.config.Calculator),
	}

	if !s.track(sess) {
		sess.close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer s.untrack(sess)

	logging.LogConnection(sess.remoteAddr, "websocket_opened")
	defer func() {
		_ = conn.Close()
		logging.LogConnection(sess.remoteAddr, "websocket_closed")
	}()

	s.runSession(sess)
}

// runSession sends the initial display then applies client messages until
// the connection ends.
func (s *Server) runSession(sess *session) {
	conn := sess.conn
	conn.SetReadLimit(protocol.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sess.ping(); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	if err := sess.write(protocol.BuildDisplay(sess.display, calc.ActionNone, nil)); err != nil {
		logging.Warn("Failed to send initial display", zap.String("remote_addr", sess.remoteAddr), zap.Error(err))
		return
	}

	host := remoteHost(sess.remoteAddr)
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Session ended unexpectedly",
					zap.String("remote_addr", sess.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		reply := s.handleFrame(sess, host, mt, data)
		if err := sess.write(reply); err != nil {
			logging.Info("Failed to write reply",
				zap.String("remote_addr", sess.remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

// handleFrame validates one frame, applies it to the session display and
// returns the reply.
func (s *Server) handleFrame(sess *session, host string, messageType int, data []byte) *protocol.ServerMessage {
	if messageType != websocket.TextMessage {
		s.metrics.observeRejected(reasonBinaryFrame)
		return protocol.BuildError(sess.display, "text frames only")
	}

	msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		s.metrics.observeRejected(reasonInvalidMessage)
		logging.Debug("Rejected client message",
			zap.String("remote_addr", sess.remoteAddr),
			zap.Error(err),
		)
		return protocol.BuildError(sess.display, err.Error())
	}

	if msg.Type != protocol.TypePing && !s.limiter.Allow(host, time.Now()) {
		s.metrics.observeRejected(reasonRateLimited)
		return protocol.BuildError(sess.display, "rate limited")
	}

	source := "ws:" + sess.remoteAddr
	before := sess.display.Text()

	res, err := protocol.HandleMessage(sess.display, msg)
	if err != nil {
		s.metrics.observeRejected(reasonInvalidMessage)
		return protocol.BuildError(sess.display, err.Error())
	}

	if msg.Type == protocol.TypeKey {
		logging.LogKeyEvent(source, msg.Key, sess.display.Text(), res.Handled)
		if res.Handled {
			s.metrics.observeKey(res.Action)
		}
		if res.Action == calc.ActionEvaluate {
			s.metrics.observeEvaluation(res.EvalErr)
			logging.LogEvaluation(source, calc.MachineExpression(before), sess.display.Text(), res.EvalErr)
		}
	}
	return res.Reply
}
