package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/models"
)

const writeWait = 5 * time.Second

// ItemOrderedEvent is the message pushed to every connected manager.
type ItemOrderedEvent struct {
	CartID    uint  `json:"cart_id"`
	ItemID    uint  `json:"item_id"`
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UserID    *uint `json:"user_id"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans ordered-item events out to websocket clients. A client whose
// buffer is full is dropped rather than blocking the order request.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: make(map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades GET /manage/orders/ws and keeps the socket until the
// peer goes away.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		cl := &client{conn: conn, send: make(chan []byte, 16)}
		h.add(cl)

		done := make(chan struct{})
		go h.writeLoop(cl, done)

		// Reads only detect the close; managers never send anything.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(cl)
		<-done
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

func (h *Hub) writeLoop(cl *client, done chan<- struct{}) {
	defer close(done)
	defer cl.conn.Close()
	for msg := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(cl)
			return
		}
	}
}

// ItemOrdered broadcasts the placed item.
func (h *Hub) ItemOrdered(cart *models.Cart, item *models.CartItem) {
	data, err := json.Marshal(ItemOrderedEvent{
		CartID:    cart.ID,
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UserID:    cart.UserID,
	})
	if err != nil {
		logger.Error("failed to encode order event", map[string]any{"error": err})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			delete(h.clients, cl)
			close(cl.send)
		}
	}
}
