package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxMessageLen is the Telegram limit for one message, in characters.
const maxMessageLen = 4096

// TelegramNotifier delivers plain text reports to one chat through the Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier; proxyURL may be empty.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if u, err := url.Parse(proxyURL); proxyURL != "" && err == nil {
		transport.Proxy = http.ProxyURL(u)
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  "https://api.telegram.org",
		Client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// Send posts text to the chat without a parse mode, since reports contain
// '<' and '>'. Long reports go out as several messages split on line breaks.
func (t *TelegramNotifier) Send(text string) error {
	chunks := splitMessage(text, maxMessageLen)
	for i, chunk := range chunks {
		if err := t.post("sendMessage", sendMessageRequest{ChatID: t.ChatID, Text: chunk}); err != nil {
			return fmt.Errorf("message part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (t *TelegramNotifier) post(method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	resp, err := t.Client.Post(t.endpoint(method), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	var apiErr struct {
		Description string `json:"description"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(raw, &apiErr) != nil || apiErr.Description == "" {
		apiErr.Description = strings.TrimSpace(string(raw))
	}
	return fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode, apiErr.Description)
}

// SendWithRetry retries Send with a backoff doubling from one second.
// maxRetries counts the attempts after the first one.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		err := t.Send(text)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, err)
		}
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", attempt+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// splitMessage cuts text into pieces of at most limit runes, preferring the
// last line break inside each piece.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
