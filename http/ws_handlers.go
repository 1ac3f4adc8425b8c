package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"estimahome/ml"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

// MessageType names a WebSocket message.
type MessageType string

const (
	EstimateRequest MessageType = "estimate"
	EstimateResult  MessageType = "estimate_result"
	EstimateError   MessageType = "error"
	Ping            MessageType = "ping"
	Pong            MessageType = "pong"
)

// Message is the envelope for every frame written to a stream client.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	ID        string      `json:"id"`
	Status    int         `json:"status,omitempty"`
}

// ClientMessage is a frame sent by a stream client.
type ClientMessage struct {
	Type MessageType     `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamClient serves estimates over one WebSocket connection. Replies go
// only to the client that asked.
type streamClient struct {
	conn     *websocket.Conn
	send     chan Message
	done     chan struct{}
	clientID string
	handlers *Handlers
	logger   *zap.Logger
}

func (h *Handlers) handlePredictStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &streamClient{
		conn:     conn,
		send:     make(chan Message, 16),
		done:     make(chan struct{}),
		clientID: uuid.NewString(),
		handlers: h,
		logger:   h.Logger,
	}
	client.logger.Info("stream client connected", zap.String("client_id", client.clientID))

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	go client.writePump()
	go client.readPump(ctx, cancel)
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("websocket write", zap.String("client_id", c.clientID), zap.Error(err))
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

func (c *streamClient) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		close(c.send)
		c.logger.Info("stream client disconnected", zap.String("client_id", c.clientID))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read", zap.String("client_id", c.clientID), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Message{
				Type:   EstimateError,
				Status: http.StatusBadRequest,
				Data:   errorResponse{Error: "invalid message: " + err.Error()},
			})
			continue
		}
		c.handleClientMessage(ctx, msg)
	}
}

func (c *streamClient) handleClientMessage(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case Ping:
		c.reply(Message{Type: Pong, ID: msg.ID})

	case EstimateRequest:
		features, err := decodeStreamFeatures(msg.Data)
		if err != nil {
			c.reply(Message{
				Type:   EstimateError,
				ID:     msg.ID,
				Status: http.StatusBadRequest,
				Data:   errorResponse{Error: "invalid features: " + err.Error()},
			})
			return
		}
		status, body := c.handlers.estimate(ctx, features, "websocket")
		reply := Message{Type: EstimateResult, ID: msg.ID, Status: status, Data: body}
		if status != http.StatusOK {
			reply.Type = EstimateError
		}
		c.reply(reply)

	default:
		c.reply(Message{
			Type:   EstimateError,
			ID:     msg.ID,
			Status: http.StatusBadRequest,
			Data:   errorResponse{Error: "unknown message type " + string(msg.Type)},
		})
	}
}

func (c *streamClient) reply(message Message) {
	message.Timestamp = time.Now()
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	select {
	case c.send <- message:
	case <-c.done:
	}
}

// decodeStreamFeatures applies the same defaults as the REST endpoint.
func decodeStreamFeatures(raw json.RawMessage) (ml.HousingFeatures, error) {
	return decodeFeatures(bytes.NewReader(raw))
}
