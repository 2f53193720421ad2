package websockets

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewWebSocketManager initializes a WebSocketManager
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
	}
}

// Run starts the WebSocket manager
func (manager *WebSocketManager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.Conn] = client
			manager.mu.Unlock()

		case conn := <-manager.unregister:
			manager.mu.Lock()
			if client, exists := manager.clients[conn]; exists {
				delete(manager.clients, conn)
				conn.Close()
				log.Printf("Client %s disconnected", client.UserID)
			}
			manager.mu.Unlock()

		case message := <-manager.broadcast:
			manager.mu.Lock()
			for _, client := range manager.clients {
				if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Conn.Close()
					delete(manager.clients, client.Conn)
				}
			}
			manager.mu.Unlock()
		}
	}
}

// HandleConnections upgrades HTTP requests to WebSocket connections and
// runs the per-connection read loop.
func (manager *WebSocketManager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket Upgrade Error:", err)
		return
	}

	client := &Client{Conn: conn}
	manager.register <- client

	defer func() {
		manager.unregister <- conn
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			manager.unregister <- conn
			break
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Println("Invalid JSON:", err)
			continue
		}

		switch message.Type {
		case MsgTypeSubscribe:
			client.UserID = message.UserID
			client.Latitude = message.Latitude
			client.Longitude = message.Longitude

		case MsgTypeChatMessage:
			manager.answerChat(client, message.Content)
		}
	}
}

func (manager *WebSocketManager) answerChat(client *Client, content string) {
	if manager.Answer == nil {
		manager.writeTo(client, Message{Type: MsgTypeError, Content: "El asistente no está disponible."})
		return
	}

	reply, err := manager.Answer(client.UserID, content)
	if err != nil {
		log.Printf("chat answer failed for %s: %v", client.UserID, err)
		manager.writeTo(client, Message{Type: MsgTypeError, Content: "No pude conectar con la IA en este momento."})
		return
	}
	manager.writeTo(client, Message{Type: MsgTypeBotReply, Content: reply})
}

func (manager *WebSocketManager) writeTo(client *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		client.Conn.Close()
		delete(manager.clients, client.Conn)
	}
}

// BroadcastDetectionAlert notifies subscribed clients within the alert
// radius of a new detection.
func (manager *WebSocketManager) BroadcastDetectionAlert(alert []byte, lat, lon, radiusKm float64) {
	// Rough conversion; fine at these latitudes for alert purposes.
	radiusDeg := radiusKm / 111.0

	manager.mu.Lock()
	defer manager.mu.Unlock()

	for _, client := range manager.clients {
		if isNearby(client.Latitude, client.Longitude, lat, lon, radiusDeg) {
			client.Conn.WriteMessage(websocket.TextMessage, alert)
		}
	}
}

// isNearby checks if a user is within a given radius
func isNearby(userLat, userLon, reportLat, reportLon, radius float64) bool {
	return (userLat-reportLat)*(userLat-reportLat)+(userLon-reportLon)*(userLon-reportLon) <= (radius * radius)
}
