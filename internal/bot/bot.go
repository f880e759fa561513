package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"versebattle/internal/game"
)

// Bot is the Telegram front end. It is a thin client of the game
// service: all rules and scoring live behind it.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     *zap.SugaredLogger
}

func New(token string, svc *game.Service, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Infow("authorized on telegram", "account", api.Self.UserName)

	return &Bot{
		api:     api,
		handler: NewHandler(api, svc, log),
		log:     log,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.log.Info("bot stopping")
			b.handler.Shutdown()
			return ctx.Err()
		case update := <-updates:
			go b.handler.HandleUpdate(ctx, update)
		}
	}
}
