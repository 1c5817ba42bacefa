package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-ictjob-scraper/internal/scraper"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// formatSummary renders the end-of-run report as MarkdownV2.
func formatSummary(name string, stats scraper.RunStats, runID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s run finished*\n", escapeMarkdown(name))
	fmt.Fprintf(&b, "🆔 `%s`\n", escapeMarkdown(runID))
	fmt.Fprintf(&b, "📦 Listings found: %d\n", stats.Total)
	fmt.Fprintf(&b, "👀 Visited: %d\n", stats.Visited)
	fmt.Fprintf(&b, "✅ Saved: %d\n", stats.Processed)
	fmt.Fprintf(&b, "⏭️ Already done: %d\n", stats.Skipped)
	if stats.Failed > 0 {
		fmt.Fprintf(&b, "❌ Failed: %d\n", stats.Failed)
	}
	fmt.Fprintf(&b, "📄 Pages: %d\n", stats.Pages)
	fmt.Fprintf(&b, "⏱️ %s\n", escapeMarkdown(stats.Duration.Round(time.Second).String()))
	return b.String()
}

func (b *Bot) SendSummary(name string, stats scraper.RunStats, runID string) error {
	msg := tgbotapi.NewMessage(b.chatID, formatSummary(name, stats, runID))
	msg.ParseMode = "MarkdownV2"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
