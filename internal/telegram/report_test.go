package telegramBot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatReportMessage(t *testing.T) {
	id := uuid.New()
	text := formatReportMessage(domain.ScrapeReport{
		RequestID: id,
		Vendor:    "passo",
		Seen:      5,
		Created:   2,
		Updated:   2,
		Failed:    1,
		Duration:  1500 * time.Millisecond,
		Err:       errors.New("venue <list> down"),
	})

	assert.Contains(t, text, "❌ <b>passo</b>")
	assert.Contains(t, text, "Найдено: 5")
	assert.Contains(t, text, "Ошибок: 1")
	assert.Contains(t, text, "1.5s")
	assert.Contains(t, text, "venue &lt;list&gt; down")
	assert.Contains(t, text, id.String())
}

func TestSendReport(t *testing.T) {
	fake := &fakeSender{}
	bot := &Bot{log: discardLogger(), tgbot: fake, chatID: 42}

	require.NoError(t, bot.SendReport(context.Background(), domain.ScrapeReport{Vendor: "bubilet", Created: 3}))
	require.Len(t, fake.sent, 1)

	msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Создано: 3")

	fake.err = errors.New("telegram down")
	assert.Error(t, bot.SendReport(context.Background(), domain.ScrapeReport{Vendor: "bubilet"}))
}

func TestDisabledBot(t *testing.T) {
	bot, err := New(discardLogger(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, bot.Enabled())

	assert.NoError(t, bot.SendReport(context.Background(), domain.ScrapeReport{Vendor: "passo"}))
	assert.NoError(t, bot.Shutdown(context.Background()))
}
