package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Pixel0001/Nutopia-sub001/config"
	"github.com/Pixel0001/Nutopia-sub001/models"
)

// Notifier receives order events. Implementations must never propagate
// failures back into the order/payment flow.
type Notifier interface {
	OrderPlaced(order *models.Order)
}

// Telegram posts order notifications to a staff channel via the bot API.
type Telegram struct {
	cfg    config.TelegramConfig
	client *http.Client
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// OrderPlaced fires the notification in the background. Errors are logged and
// swallowed; a failed notification never fails the order.
func (t *Telegram) OrderPlaced(order *models.Order) {
	if !t.cfg.Configured() {
		return
	}

	text := fmt.Sprintf("New order %s\n%s, %s\nTotal: %s MDL (%s)",
		order.OrderRef, order.CustomerName, order.CustomerPhone,
		order.Total.StringFixed(2), order.PaymentMethod)

	go func() {
		if err := t.send(text); err != nil {
			log.Printf("telegram notification failed for order %s: %v", order.OrderRef, err)
		}
	}()
}

func (t *Telegram) send(text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.cfg.ChatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.cfg.BotToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned %d", resp.StatusCode)
	}
	return nil
}
