package main

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// room broadcasts rotation-event JSON messages to every connected
// websocket client, dropping a message for a slow client rather than
// blocking the broadcaster.
type room struct {
	forward chan []byte
	join    chan *client
	leave   chan *client
	clients map[*client]bool
}

func newRoom() *room {
	return &room{
		forward: make(chan []byte),
		join:    make(chan *client),
		leave:   make(chan *client),
		clients: make(map[*client]bool),
	}
}

func (r *room) run() {
	for {
		select {
		case c := <-r.join:
			r.clients[c] = true
			log.Println("imuekfweb: client joined")
		case c := <-r.leave:
			delete(r.clients, c)
			close(c.send)
			log.Println("imuekfweb: client left")
		case msg := <-r.forward:
			for c := range r.clients {
				select {
				case c.send <- msg:
				default:
					log.Println("imuekfweb: dropping message for slow client")
				}
			}
		}
	}
}

const (
	socketBufferSize  = 1024
	messageBufferSize = 16
)

var upgrader = &websocket.Upgrader{ReadBufferSize: socketBufferSize, WriteBufferSize: socketBufferSize}

func (r *room) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	socket, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Println("imuekfweb: upgrade:", err)
		return
	}
	c := &client{socket: socket, send: make(chan []byte, messageBufferSize), room: r}
	r.join <- c
	defer func() { r.leave <- c }()
	go c.write()
	c.read()
}

// client is a single websocket connection joined to a room.
type client struct {
	socket *websocket.Conn
	send   chan []byte
	room   *room
}

func (c *client) read() {
	defer c.socket.Close()
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) write() {
	defer c.socket.Close()
	for msg := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
