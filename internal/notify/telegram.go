// Package notify delivers processed-signal events to the two best-effort
// sinks: Telegram chat messages and downstream webhook forwarding.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender sends Markdown messages through per-strategy bot tokens.
// Bot clients are cached per token because constructing one performs a getMe
// round trip.
type TelegramSender struct {
	HTTP *http.Client

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func (t *TelegramSender) bot(token string) (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bot, ok := t.bots[token]; ok {
		return bot, nil
	}
	client := t.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	if t.bots == nil {
		t.bots = map[string]*tgbotapi.BotAPI{}
	}
	t.bots[token] = bot
	return bot, nil
}

// Send delivers one message. chatID is either a numeric chat id or an
// @channel username.
func (t *TelegramSender) Send(ctx context.Context, token, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := t.bot(token)
	if err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if id, perr := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64); perr == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else if strings.HasPrefix(strings.TrimSpace(chatID), "@") {
		msg = tgbotapi.NewMessageToChannel(strings.TrimSpace(chatID), text)
	} else {
		return fmt.Errorf("invalid telegram chat id %q", chatID)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err = bot.Send(msg)
	return err
}
