package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Transport is a duplex message connection to the speech endpoint.
// WriteJSON must be safe for concurrent use; ReadMessage is driven by a
// single reader goroutine.
type Transport interface {
	WriteJSON(v any) error
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer establishes transports. Injected so sessions can run against a
// fake connection in tests.
type Dialer interface {
	Dial(ctx context.Context, model, apiKey string) (Transport, error)
}

const realtimeEndpoint = "wss://api.openai.com/v1/realtime"

// WebsocketDialer connects to the hosted speech-to-speech endpoint.
type WebsocketDialer struct{}

// Dial opens the websocket for the given model, authenticating with the
// API key as a bearer token.
func (WebsocketDialer) Dial(ctx context.Context, model, apiKey string) (Transport, error) {
	wsURL := realtimeEndpoint + "?model=" + url.QueryEscape(model)
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial realtime endpoint: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	return &websocketTransport{conn: conn}, nil
}

type websocketTransport struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (t *websocketTransport) WriteJSON(v any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(v)
}

func (t *websocketTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *websocketTransport) Close() error {
	return t.conn.Close()
}
