package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	err      error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestNotifier(docs *fakeDocuments, sender MessageSender, interval time.Duration) *ExpiryNotifier {
	factory := func() *InventoryView { return newTestView(docs, &fakeBlobs{}) }
	n := NewExpiryNotifier(factory, sender, 42, interval, discardLogger())
	n.now = func() time.Time { return testNow }
	return n
}

func TestFormatExpiryDigest(t *testing.T) {
	items := []InventoryItem{
		{Name: "Milk", Quantity: 4, Expiration: testNow.Add(3 * 24 * time.Hour)},
		{Name: "Beans", Quantity: 9, Expiration: testNow.Add(20*24*time.Hour + time.Hour)},
	}

	expected := "Products expiring within 4 weeks (2):\n" +
		"- Milk: qty 4, expires 2026-03-04 (3 days)\n" +
		"- Beans: qty 9, expires 2026-03-21 (20 days)"
	assert.Equal(t, expected, FormatExpiryDigest(items, testNow))
}

func TestSendDigest(t *testing.T) {
	docs := &fakeDocuments{docs: []Document{
		doc("1", "Milk", 4, 3, "images/milk.png"),
		doc("2", "Rice", 20, 100, "images/rice.png"),
	}}
	sender := &fakeSender{}
	n := newTestNotifier(docs, sender, time.Hour)

	require.NoError(t, n.SendDigest(context.Background()))
	require.Equal(t, 1, sender.count())

	msg := sender.messages[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "(1):")
	assert.Contains(t, msg.Text, "Milk")
	assert.NotContains(t, msg.Text, "Rice")
}

func TestSendDigestSkipsEmpty(t *testing.T) {
	docs := &fakeDocuments{docs: []Document{doc("1", "Rice", 20, 100, "images/rice.png")}}
	sender := &fakeSender{}
	n := newTestNotifier(docs, sender, time.Hour)

	require.NoError(t, n.SendDigest(context.Background()))
	assert.Equal(t, 0, sender.count())
}

func TestSendDigestErrors(t *testing.T) {
	docs := &fakeDocuments{err: errors.New("unavailable")}
	n := newTestNotifier(docs, &fakeSender{}, time.Hour)
	assert.ErrorContains(t, n.SendDigest(context.Background()), "fetch inventory")

	docs = &fakeDocuments{docs: []Document{doc("1", "Milk", 4, 3, "images/milk.png")}}
	n = newTestNotifier(docs, &fakeSender{err: errors.New("bot blocked")}, time.Hour)
	assert.ErrorContains(t, n.SendDigest(context.Background()), "send digest")
}

func TestNotifierRun(t *testing.T) {
	docs := &fakeDocuments{docs: []Document{doc("1", "Milk", 4, 3, "images/milk.png")}}
	sender := &fakeSender{}
	n := newTestNotifier(docs, sender, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	require.Eventually(t, func() bool { return sender.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop")
	}
}
