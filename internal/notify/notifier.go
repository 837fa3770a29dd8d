// Package notify delivers match notifications to a Telegram chat through
// the Bot API.
package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"dealwatch/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends formatted notifications to a single chat. Sends are rate
// limited to stay under Telegram's ~30 messages/second bot limit.
type Bot struct {
	api         telegramAPI
	chatID      int64
	targetMonth int
	targetYear  int
	limiter     *rate.Limiter
}

// New creates a Bot with the given token and destination chat.
func New(token string, chatID int64, targetMonth, targetYear int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newWithAPI(api, chatID, targetMonth, targetYear), nil
}

func newWithAPI(api telegramAPI, chatID int64, targetMonth, targetYear int) *Bot {
	return &Bot{
		api:         api,
		chatID:      chatID,
		targetMonth: targetMonth,
		targetYear:  targetYear,
		limiter:     rate.NewLimiter(rate.Limit(20), 1),
	}
}

// NotifyMatch sends one matched message to the chat.
func (b *Bot) NotifyMatch(ctx context.Context, msg model.Message, v model.Verdict) error {
	return b.send(ctx, FormatMatch(msg, v, b.targetMonth))
}

// NotifyNoMatches sends the "nothing found this run" courtesy note.
func (b *Bot) NotifyNoMatches(ctx context.Context) error {
	text := fmt.Sprintf("🔍 Мониторинг: новых предложений на %s %d не найдено",
		monthName(b.targetMonth), b.targetYear)
	return b.send(ctx, html.EscapeString(text))
}

// NotifyError reports a fatal monitoring failure to the chat.
func (b *Bot) NotifyError(ctx context.Context, err error) error {
	text := err.Error()
	if len(text) > 200 {
		text = text[:200]
	}
	return b.send(ctx, html.EscapeString("❌ Ошибка мониторинга: "+text))
}

func (b *Bot) send(ctx context.Context, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	// HTML mode does not break t.me links containing underscores.
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
