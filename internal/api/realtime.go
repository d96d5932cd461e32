package api

import (
	"encoding/json"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/internal/realtime"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio frames
)

var upgrader = ws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// clientCommand is one inbound message from the browser.
type clientCommand struct {
	Type  string `json:"type"`
	Audio string `json:"audio,omitempty"`
	Text  string `json:"text,omitempty"`
}

// browserOutput discards decoded model audio server-side. The browser
// receives the raw audio delta events and schedules its own playback.
type browserOutput struct{}

func (browserOutput) Now() time.Duration                               { return 0 }
func (browserOutput) PlayAt(samples []float32, at time.Duration) error { return nil }
func (browserOutput) SampleRate() int                                  { return realtime.WireSampleRate }

// handleRealtime bridges one browser websocket to its own model session.
// Each connection owns an independent session: conversation state is never
// shared across browsers.
func (s *Server) handleRealtime(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	session := realtime.NewSession(s.realtime, s.dialer, browserOutput{}, nil, s.logger)

	send := make(chan realtime.ServerEvent, 256)
	session.SetEventHandler(func(ev realtime.ServerEvent) {
		select {
		case send <- ev:
		default:
			s.logger.Warn("Dropping server event, browser is not keeping up",
				zap.String("type", ev.Type))
		}
	})

	if err := session.Connect(c.Request().Context()); err != nil {
		s.logger.Error("Failed to open realtime session", zap.Error(err))
		payload, _ := json.Marshal(map[string]string{
			"type":    "bridge.error",
			"message": "failed to open realtime session",
		})
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(ws.TextMessage, payload)
		conn.Close()
		return nil
	}

	done := make(chan struct{})
	go s.writePump(conn, send, done)
	s.readPump(conn, session)

	close(done)
	session.Disconnect()
	return nil
}

// readPump forwards browser commands to the session until the browser
// disconnects.
func (s *Server) readPump(conn *ws.Conn, session *realtime.Session) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseAbnormalClosure) {
				s.logger.Error("WebSocket error", zap.Error(err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			s.logger.Warn("Dropping malformed client command", zap.Error(err))
			continue
		}

		switch cmd.Type {
		case "audio":
			session.IngestAudio(cmd.Audio)
		case "commit":
			session.Commit()
		case "text":
			session.SendText(cmd.Text)
		default:
			s.logger.Warn("Unknown client command", zap.String("type", cmd.Type))
		}
	}
}

// writePump relays session events to the browser.
func (s *Server) writePump(conn *ws.Conn, send <-chan realtime.ServerEvent, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Error("Failed to relay server event", zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
