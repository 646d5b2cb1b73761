package tg

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/logger"
	"max.ks1230/advisor-bot/internal/model/session"
)

const (
	defaultUpdateOffset = 0
	defaultTurnTimeout  = 60 * time.Second

	startCommand = "/start"

	busyMessage = "Un momento, por favor. Todavía estoy procesando su mensaje anterior."
	doneMessage = "Su plan financiero está completo. Envíe /start para iniciar una nueva asesoría."
	errMessage  = "Lo siento, ha ocurrido un error técnico. Por favor, inténtelo de nuevo."
)

type tokenGetter interface {
	Token() string
}

type appConfig interface {
	TurnTimeout() int64
}

// SessionFactory builds a fresh advisory session for a chat. A new
// session replaces the old one on /start.
type SessionFactory func(chatID int64) *session.Service

type Client struct {
	client     *tgbotapi.BotAPI
	newSession SessionFactory
	sessions   map[int64]*session.Service
	timeout    time.Duration
}

func New(tokenGetter tokenGetter, factory SessionFactory, cfg appConfig) (*Client, error) {
	client, err := tgbotapi.NewBotAPI(tokenGetter.Token())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewBotApi")
	}

	timeout := defaultTurnTimeout
	if cfg.TurnTimeout() > 0 {
		timeout = time.Duration(cfg.TurnTimeout()) * time.Second
	}

	return &Client{
		client:     client,
		newSession: factory,
		sessions:   make(map[int64]*session.Service),
		timeout:    timeout,
	}, nil
}

func (c *Client) SendMessage(text string, chatID int64) error {
	_, err := c.client.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return errors.Wrap(err, "client.Send")
	}
	return nil
}

func (c *Client) ListenUpdates(ctx context.Context) {
	u := tgbotapi.NewUpdate(defaultUpdateOffset)
	u.Timeout = 60

	updates := c.client.GetUpdatesChan(u)

	logger.Info("Start listening for messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop listening for messages")
			return
		case update := <-updates:
			c.listenOnce(ctx, update)
		}
	}
}

func (c *Client) listenOnce(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	logger.Info(text, zap.String("user", update.Message.From.UserName))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.handleMessage(ctx, chatID, text); err != nil {
		logger.Error("error processing message:", zap.Error(err))
	}
}

func (c *Client) handleMessage(ctx context.Context, chatID int64, text string) error {
	svc, ok := c.sessions[chatID]

	// a fresh chat and an explicit /start both open a new advisory
	if !ok || text == startCommand {
		svc = c.newSession(chatID)
		c.sessions[chatID] = svc

		greeting, err := svc.Start(ctx)
		if err != nil {
			return errors.Wrap(err, "start session")
		}
		return c.SendMessage(greeting, chatID)
	}

	reply, err := svc.SubmitUserTurn(ctx, text)
	if errors.Is(err, session.ErrInvalidState) {
		if svc.Completed() {
			return c.SendMessage(doneMessage, chatID)
		}
		return c.SendMessage(busyMessage, chatID)
	}
	if err != nil {
		_ = c.SendMessage(errMessage, chatID)
		return errors.Wrap(err, "submit turn")
	}
	return c.SendMessage(reply, chatID)
}
