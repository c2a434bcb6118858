package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Dispatcher handles inbound envelopes from a client. Implementations
// live above the transport and route to game and tournament logic.
type Dispatcher interface {
	HandleEnvelope(client *Client, env Envelope)
	HandleDisconnect(client *Client)
}

// Client is one websocket connection. Reads and writes each run on
// their own goroutine; the send channel decouples the two.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	dispatcher Dispatcher
	logger     *slog.Logger

	// rooms is owned by the hub's Run goroutine and guarded by hub.mu.
	rooms map[string]bool

	// UserID and Username come from the auth middleware when the
	// connection was authenticated. Empty for anonymous clients.
	UserID   string
	Username string

	// GameID and PlayerID bind the client to a live match after a
	// successful join. Only the read goroutine touches them.
	GameID   string
	PlayerID string

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, dispatcher Dispatcher, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		dispatcher: dispatcher,
		logger:     logger,
		rooms:      make(map[string]bool),
	}
}

// Send marshals a message and queues it for delivery. Messages are
// dropped when the client cannot keep up.
func (c *Client) Send(message any) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("failed to marshal client message", slog.Any("error", err))
		return
	}
	c.enqueue(messageBytes)
}

// SendError pushes a typed error frame without closing the connection.
func (c *Client) SendError(code, detail string) {
	c.Send(Message{
		Type:    TypeError,
		Payload: ErrorPayload{Code: code, Message: detail},
	})
}

func (c *Client) Subscribe(room string)   { c.hub.Subscribe(c, room) }
func (c *Client) Unsubscribe(room string) { c.hub.Unsubscribe(c, room) }

func (c *Client) enqueue(messageBytes []byte) {
	defer func() {
		// Losing the race with closeSend is fine, the client is gone.
		recover()
	}()
	select {
	case c.send <- messageBytes:
	default:
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

func (c *Client) ReadPump() {
	defer func() {
		if c.dispatcher != nil {
			c.dispatcher.HandleDisconnect(c)
		}
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(messageBytes, &env); err != nil {
			c.SendError("bad_envelope", "message is not a valid envelope")
			continue
		}
		if env.Type == "" {
			c.SendError("bad_envelope", "envelope type is required")
			continue
		}
		if c.dispatcher != nil {
			c.dispatcher.HandleEnvelope(c, env)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case messageBytes, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(messageBytes)

			// Drain whatever queued up behind this frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var newline = []byte{'\n'}
