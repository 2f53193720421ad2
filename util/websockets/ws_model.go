package websockets

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Message types
const (
	MsgTypeSubscribe      = "subscribe"
	MsgTypeChatMessage    = "chat_message"
	MsgTypeBotReply       = "bot_reply"
	MsgTypeDetectionAlert = "detection_alert"
	MsgTypeError          = "error"
)

// Client represents a connected WebSocket user
type Client struct {
	Conn      *websocket.Conn
	UserID    string
	Latitude  float64
	Longitude float64
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *websocket.Conn
	mu         sync.Mutex

	// Answer produces the assistant's reply to one chat message. Left
	// nil, chat messages are answered with an error frame.
	Answer func(userID, content string) (string, error)
}

// Message struct for incoming and outgoing WebSocket frames
type Message struct {
	Type      string  `json:"type"`
	UserID    string  `json:"user_id,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Content   string  `json:"content,omitempty"`
}
