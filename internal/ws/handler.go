package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"solar_ingest/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CatalogSource lists the processed files.
type CatalogSource interface {
	Catalog() (model.Catalog, error)
}

// Handler upgrades chart pages to WebSocket connections and answers their
// catalog requests.
type Handler struct {
	hub     *Hub
	catalog CatalogSource
}

func NewHandler(hub *Hub, catalog CatalogSource) *Handler {
	return &Handler{hub: hub, catalog: catalog}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := newClient(h.hub, conn)

	h.hub.Register(client)
	log.Printf("ws: %s connected (%d clients)", client.addr, h.hub.ClientCount())
	go client.writePump()

	h.sendCatalog(client)

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Printf("ws: %s disconnected (%d clients)", c.addr, h.hub.ClientCount())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeCatalogRefresh:
		h.sendCatalog(c)
	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func (h *Handler) catalogMessage() ([]byte, error) {
	c, err := h.catalog.Catalog()
	if err != nil {
		return nil, err
	}
	return NewEnvelope(TypeCatalogLoaded, CatalogFromModel(c))
}

func (h *Handler) sendCatalog(c *Client) {
	msg, err := h.catalogMessage()
	if err != nil {
		log.Printf("Error creating catalog:loaded message: %v", err)
		return
	}
	c.trySend(msg)
}
