package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"shop-backend/models"
	"shop-backend/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connected websocket clients and pushes the full product list to
// all of them after every committed add or delete. Broadcasts are
// fire-and-forget: a slow or dead client is dropped, never waited on.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: map[*websocket.Conn]bool{}}
}

// Handler upgrades the connection and serves inbound createProduct /
// deleteProduct events until the client goes away.
func (h *Hub) Handler(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		h.mu.Lock()
		h.clients[conn] = true
		h.mu.Unlock()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				h.mu.Lock()
				delete(h.clients, conn)
				h.mu.Unlock()
				break
			}
			h.handleMessage(c.Request.Context(), conn, raw, products)
		}
	}
}

func (h *Hub) handleMessage(ctx context.Context, conn *websocket.Conn, raw []byte, products *services.ProductService) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(conn, "malformed message")
		return
	}

	switch msg.Event {
	case "createProduct":
		var req models.CreateProductRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			h.sendError(conn, "malformed product data")
			return
		}
		if _, err := products.Create(ctx, req); err != nil {
			h.sendError(conn, err.Error())
			return
		}
		h.BroadcastProducts(ctx, products)
	case "deleteProduct":
		var id string
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			h.sendError(conn, "malformed product id")
			return
		}
		deleted, err := products.Delete(ctx, id)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		if !deleted {
			h.sendError(conn, "product not found")
			return
		}
		h.BroadcastProducts(ctx, products)
	default:
		h.sendError(conn, "unknown event")
	}
}

func (h *Hub) sendError(conn *websocket.Conn, message string) {
	payload, err := json.Marshal(outboundMessage{
		Event: "error",
		Data:  map[string]string{"message": message},
	})
	if err != nil {
		return
	}
	conn.WriteMessage(websocket.TextMessage, payload)
}

// BroadcastProducts pushes the current product list to every client.
func (h *Hub) BroadcastProducts(ctx context.Context, products *services.ProductService) {
	list, err := products.GetAll(ctx)
	if err != nil {
		log.Printf("broadcast: load products: %v", err)
		return
	}
	payload, err := json.Marshal(outboundMessage{Event: "productsUpdated", Data: list})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
