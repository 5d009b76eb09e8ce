package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender отправляет сообщения в Telegram; *tgbotapi.BotAPI подходит
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ViewFactory создает новую модель представления инвентаря
type ViewFactory func() *InventoryView

// ExpiryNotifier периодически отправляет в чат список продуктов,
// срок годности которых истекает в ближайшие 4 недели
type ExpiryNotifier struct {
	newView  ViewFactory
	sender   MessageSender
	chatID   int64
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewExpiryNotifier создает уведомитель
func NewExpiryNotifier(newView ViewFactory, sender MessageSender, chatID int64, interval time.Duration, log *slog.Logger) *ExpiryNotifier {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &ExpiryNotifier{
		newView:  newView,
		sender:   sender,
		chatID:   chatID,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run отправляет сводку сразу и затем каждые interval до отмены ctx
func (n *ExpiryNotifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		if err := n.SendDigest(ctx); err != nil {
			n.log.Error("expiry digest failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SendDigest отправляет одну сводку. Пустая сводка не отправляется.
func (n *ExpiryNotifier) SendDigest(ctx context.Context) error {
	view := n.newView()
	if err := view.Fetch(ctx); err != nil {
		return fmt.Errorf("fetch inventory: %w", err)
	}
	items := view.SelectBucket(BucketUpTo4Weeks)
	if len(items) == 0 {
		n.log.Debug("no items expiring soon, digest skipped")
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatExpiryDigest(items, n.now()))
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	n.log.Info("expiry digest sent", "items", len(items), "chat_id", n.chatID)
	return nil
}

// FormatExpiryDigest текст сводки
func FormatExpiryDigest(items []InventoryItem, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Products expiring within 4 weeks (%d):\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: qty %d, expires %s (%d days)\n",
			item.Name, item.Quantity, item.Expiration.Format("2006-01-02"), DaysUntil(item.Expiration, now))
	}
	return strings.TrimRight(b.String(), "\n")
}
