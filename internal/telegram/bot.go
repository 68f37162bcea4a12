package telegramBot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deniskrds/tixplore-app/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot отправляет отчёты о прогонах скрапера в один чат.
// Без токена бот выключен и все отправки молча пропускаются.
type Bot struct {
	log    *slog.Logger
	tgbot  sender
	api    *tgbotapi.BotAPI
	chatID int64
}

func New(log *slog.Logger, cfg *config.Config) (*Bot, error) {
	op := "bot.New()"
	log = log.With(slog.String("op", op))

	if cfg.BotConfig.TgbotApiToken == "" || cfg.BotConfig.ChatID == 0 {
		log.Info("telegram notifier disabled")
		return &Bot{log: log}, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotConfig.TgbotApiToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("authorized on telegram account", slog.String("username", api.Self.UserName))

	return &Bot{
		log:    log,
		tgbot:  api,
		api:    api,
		chatID: cfg.BotConfig.ChatID,
	}, nil
}

func (bot *Bot) Enabled() bool {
	return bot.tgbot != nil
}

func (bot *Bot) Shutdown(_ context.Context) error {
	if bot.api != nil {
		bot.api.StopReceivingUpdates()
	}
	return nil
}
