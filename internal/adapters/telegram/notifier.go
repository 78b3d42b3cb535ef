package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

// Notifier posts the top buy/sell candidates to a Telegram chat after each
// successful refresh
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat ID is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{api: bot, chatID: cfg.ChatID}, nil
}

// NotifyRefresh sends one message summarizing the fresh snapshot
func (n *Notifier) NotifyRefresh(_ context.Context, snapshot map[models.Market]models.CacheEntry) error {
	msg := tgbotapi.NewMessage(n.chatID, formatSnapshot(snapshot))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send refresh notification: %w", err)
	}
	return nil
}

func formatSnapshot(snapshot map[models.Market]models.CacheEntry) string {
	var b strings.Builder
	b.WriteString("📊 <b>Signal refresh complete</b>\n")

	for _, market := range []models.Market{models.MarketIndia, models.MarketUS} {
		entry, ok := snapshot[market]
		if !ok {
			continue
		}

		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", strings.ToUpper(string(market))))
		writeSide(&b, "🟢 Buy", entry.Buy)
		writeSide(&b, "🔴 Sell", entry.Sell)
	}

	return b.String()
}

func writeSide(b *strings.Builder, title string, summaries []models.SignalSummary) {
	if len(summaries) == 0 {
		return
	}

	b.WriteString(title + ":\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("  %s  %.2f  (%s, %.1f%%)\n",
			s.Symbol, s.Price, s.Signal, s.Confidence))
	}
}
