package services

import (
	"context"
	"net"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubAuthenticate(t *testing.T) {
	secret := func() string { return "hub-secret" }
	hub := NewHub(secret, discardLogger())

	sign := func(claims jwt.MapClaims, key string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return token
	}
	exp := time.Now().Add(time.Hour).Unix()

	userID, ok := hub.Authenticate(sign(jwt.MapClaims{"user_id": 5, "exp": exp}, "hub-secret"))
	assert.True(t, ok)
	assert.Equal(t, uint(5), userID)

	_, ok = hub.Authenticate(sign(jwt.MapClaims{"user_id": 5, "exp": exp}, "other"))
	assert.False(t, ok)

	_, ok = hub.Authenticate(sign(jwt.MapClaims{"sub": "images/a.png", "exp": exp}, "hub-secret"))
	assert.False(t, ok)

	_, ok = hub.Authenticate(sign(jwt.MapClaims{"user_id": 5, "exp": time.Now().Add(-time.Hour).Unix()}, "hub-secret"))
	assert.False(t, ok)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(func() string { return "s" }, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{UserID: 1, Send: make(chan WSMessage, 4), Hub: hub}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, time.Millisecond)

	hub.Publish(WSMessage{Type: EventInventoryCreated, Payload: "x"})

	select {
	case msg := <-client.Send:
		assert.Equal(t, EventInventoryCreated, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	<-hub.done

	_, open := <-client.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubPublishDoesNotBlock(t *testing.T) {
	hub := NewHub(func() string { return "s" }, discardLogger())

	// Хаб не запущен: очередь переполняется, лишние события отбрасываются
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(WSMessage{Type: EventInventoryUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

// startHubServer поднимает fiber с маршрутом /ws и возвращает адрес для клиента
func startHubServer(t *testing.T, hub *Hub) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", websocket.New(hub.HandleWebSocket))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return "ws://" + ln.Addr().String() + "/ws"
}

func TestHubClientPingKeepsConnectionAlive(t *testing.T) {
	hub := NewHub(func() string { return "hub-secret" }, discardLogger())
	hub.pongWait = 300 * time.Millisecond
	// Управляющие ping не отправляются, жив только тот, кто шлет "ping"
	hub.pingPeriod = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 3,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("hub-secret"))
	require.NoError(t, err)

	conn, _, err := fws.DefaultDialer.Dial(startHubServer(t, hub)+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Три интервала ожидания с сообщениями ping
	until := time.Now().Add(3 * hub.pongWait)
	for time.Now().Before(until) {
		require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))
		time.Sleep(100 * time.Millisecond)
	}
	assert.Equal(t, 1, hub.ClientCount())

	hub.Publish(WSMessage{Type: EventInventoryUpdated})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventInventoryUpdated, msg.Type)

	// Молчащий клиент отключается
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsConnectionWithoutToken(t *testing.T) {
	hub := NewHub(func() string { return "hub-secret" }, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, _, err := fws.DefaultDialer.Dial(startHubServer(t, hub), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}
