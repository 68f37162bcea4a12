package telegramBot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/deniskrds/tixplore-app/internal/models/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendReport отправляет сводку прогона в чат из конфига.
func (bot *Bot) SendReport(ctx context.Context, report domain.ScrapeReport) error {
	op := "bot.SendReport()"
	log := bot.log.With(
		slog.String("op", op),
		slog.String("vendor", report.Vendor),
	)

	if !bot.Enabled() {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := tgbotapi.NewMessage(bot.chatID, formatReportMessage(report))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := bot.tgbot.Send(msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("report sent", slog.Int64("chatID", bot.chatID))

	return nil
}

// formatReportMessage форматирует отчёт в HTML-текст для Telegram.
func formatReportMessage(report domain.ScrapeReport) string {
	var sb strings.Builder

	status := "✅"
	if report.Err != nil {
		status = "❌"
	}

	fmt.Fprintf(&sb, "%s <b>%s</b>\n\n", status, html.EscapeString(report.Vendor))
	fmt.Fprintf(&sb, "Найдено: %d\n", report.Seen)
	fmt.Fprintf(&sb, "Создано: %d\n", report.Created)
	fmt.Fprintf(&sb, "Обновлено: %d\n", report.Updated)
	fmt.Fprintf(&sb, "Ошибок: %d\n", report.Failed)

	if report.Duration > 0 {
		fmt.Fprintf(&sb, "⏱ %s\n", report.Duration.Round(time.Millisecond))
	}

	if report.Err != nil {
		fmt.Fprintf(&sb, "\n<code>%s</code>\n", html.EscapeString(report.Err.Error()))
	}

	fmt.Fprintf(&sb, "\n<i>%s</i>", report.RequestID)

	return sb.String()
}
