package pilot

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the message channel to the park server. *websocket.Conn
// satisfies it. One goroutine reads while the session loop writes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens the channel to url.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// WebsocketDialer returns a DialFunc backed by gorilla/websocket.
func WebsocketDialer(handshakeTimeout time.Duration) DialFunc {
	return func(ctx context.Context, url string) (Conn, error) {
		d := websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
		conn, resp, err := d.DialContext(ctx, url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// inbound is one result of the read loop: a frame or the terminal error.
type inbound struct {
	data []byte
	err  error
}

func readLoop(conn Conn, out chan<- inbound, done <-chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		select {
		case out <- inbound{data: data, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

func closeNormally(conn Conn) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	werr := conn.WriteMessage(websocket.CloseMessage, msg)
	if err := conn.Close(); err != nil {
		return err
	}
	return werr
}
