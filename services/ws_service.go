package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
)

// WSMessage представляет сообщение WebSocket
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client представляет подключенного клиента
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan WSMessage
	Hub    *Hub
}

// Hub рассылает подключенным экранам события об изменениях инвентаря,
// чтобы они могли заново загрузить список
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan WSMessage
	done       chan struct{}
	mutex      sync.RWMutex
	secret     func() string
	log        *slog.Logger
	// Клиент, молчащий дольше pongWait, отключается
	pongWait   time.Duration
	pingPeriod time.Duration
}

// NewHub создает новый хаб; secret возвращает ключ проверки токенов
func NewHub(secret func() string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan WSMessage, 64),
		done:       make(chan struct{}),
		secret:     secret,
		log:        log,
		pongWait:   60 * time.Second,
		pingPeriod: 54 * time.Second,
	}
}

// Run обслуживает подключения до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("ws client connected", "user_id", client.UserID, "clients", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("ws client disconnected", "user_id", client.UserID, "clients", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish ставит событие в очередь рассылки; при переполнении событие отбрасывается
func (h *Hub) Publish(message WSMessage) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("ws broadcast queue full, dropping event", "type", message.Type)
	}
}

// ClientCount число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Authenticate проверяет токен из query-параметра и возвращает ID пользователя
func (h *Hub) Authenticate(tokenString string) (uint, bool) {
	if tokenString == "" {
		return 0, false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.secret()), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, false
	}
	return uint(userIDFloat), true
}

// HandleWebSocket обрабатывает WebSocket соединение
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	userID, ok := h.Authenticate(c.Query("token"))
	if !ok {
		c.Close()
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   c,
		Send:   make(chan WSMessage, 256),
		Hub:    h,
	}

	select {
	case h.register <- client:
	case <-h.done:
		c.Close()
		return
	}

	// fiber закрывает соединение после возврата обработчика, поэтому чтение
	// выполняется в текущей горутине
	go client.writePump()
	client.readPump()
}

// readPump читает сообщения из WebSocket
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.pongWait))
		return nil
	})

	for {
		var message WSMessage
		if err := c.Conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket error", "user_id", c.UserID, "err", err)
			}
			return
		}

		if message.Type == "ping" {
			c.Conn.SetReadDeadline(time.Now().Add(c.Hub.pongWait))
		}
	}
}

// writePump записывает сообщения в WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(c.Hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
