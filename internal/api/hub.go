/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the push half of the API.

    It maintains a registry of all connected clients and a broadcast channel.
    When the alert pulse finds a changed result, the server publishes a
    'resource_alert' message and the Hub writes it to every socket.

    Architecture:
    - Hub: one per server, run as a goroutine.
    - Client: one browser connection.
    - ServeWs: upgrades a GET request to a WebSocket.
*/

package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// MsgResourceAlert is the message type of an alert pulse.
const MsgResourceAlert = "resource_alert"

// Message is the JSON envelope for everything sent over the socket.
type Message struct {
	Type    string `json:"type"`    // e.g. "resource_alert"
	Payload any    `json:"payload"` // game.PulseReport for alerts
	Sender  string `json:"sender"`  // "system" for server-originated messages
}

// Client is one connected browser tab.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte // buffered outbound messages
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast carries encoded messages to every client.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	count      chan chan int

	Log *log.Logger
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		Broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		clients:    make(map[*Client]bool),
		Log:        logger,
	}
}

// Run is the Hub event loop. It blocks: `go hub.Run()`.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.Log.Printf("WS: client connected (%d online)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full: the client is stuck or gone.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Clients reports how many sockets are registered.
func (h *Hub) Clients() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}

// Publish wraps payload in a Message and broadcasts it.
func (h *Hub) Publish(msgType string, payload any) error {
	b, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: "system"})
	if err != nil {
		return err
	}
	h.Broadcast <- b
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and registers the connection with hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.Log.Printf("WS: upgrade: %v", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close frames are noticed.
// The feed is one-way; anything a client sends is dropped.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Log.Printf("WS: %v", err)
			}
			return
		}
	}
}

// writePump copies hub messages to the socket until send is closed.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
