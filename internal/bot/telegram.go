package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"market-card/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

const (
	startReply   = "Hello! Send /market to get the card."
	cardCaption  = "Market Overview"
	errorReply   = "⚠️ Error rendering card."
	requestLimit = 60 * time.Second
)

type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

type PNGRenderer interface {
	PNG(snap domain.MarketSnapshot) ([]byte, error)
}

// Limiter throttles /market per chat.
type Limiter interface {
	Acquire(ctx context.Context, chatID int64) (bool, time.Duration)
	Release(ctx context.Context, chatID int64)
}

type MarketBot struct {
	tracer    trace.Tracer
	snapshots SnapshotSource
	renderer  PNGRenderer
	limiter   Limiter
}

// NewMarketBot accepts a nil limiter, which disables throttling.
func NewMarketBot(tracer trace.Tracer, snapshots SnapshotSource, renderer PNGRenderer, limiter Limiter) *MarketBot {
	return &MarketBot{
		tracer:    tracer,
		snapshots: snapshots,
		renderer:  renderer,
		limiter:   limiter,
	}
}

func (m *MarketBot) Register(b *tele.Bot) {
	b.Handle("/start", m.HandleStart)
	b.Handle("/market", m.HandleMarket)
}

func (m *MarketBot) HandleStart(c tele.Context) error {
	return c.Send(startReply)
}

// HandleMarket renders a fresh card and replies with it as a photo.
func (m *MarketBot) HandleMarket(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestLimit)
	defer cancel()
	ctx, span := m.tracer.Start(ctx, "bot.market")
	defer span.End()

	var chatID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	span.SetAttributes(attribute.Int64("chat.id", chatID))

	if m.limiter != nil {
		if ok, wait := m.limiter.Acquire(ctx, chatID); !ok {
			secs := int(math.Ceil(wait.Seconds()))
			return c.Send(fmt.Sprintf("Please wait %ds before requesting another card.", secs))
		}
	}

	if err := c.Notify(tele.UploadingPhoto); err != nil {
		log.Printf("telegram chat action failed: %v", err)
	}

	img, err := m.render(ctx)
	if err != nil {
		span.RecordError(err)
		log.Printf("market card for chat %d failed: %v", chatID, err)
		if m.limiter != nil {
			m.limiter.Release(ctx, chatID)
		}
		return c.Send(errorReply)
	}

	return c.Send(&tele.Photo{
		File:    tele.FromReader(bytes.NewReader(img)),
		Caption: cardCaption,
	})
}

func (m *MarketBot) render(ctx context.Context) ([]byte, error) {
	snap, err := m.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return m.renderer.PNG(snap)
}

var (
	newBot        = tele.NewBot
	removeWebhook = func(b *tele.Bot) error { return b.RemoveWebhook(true) }
	startPolling  = func(b *tele.Bot) { go b.Start() }
)

// StartTelegramBot starts long polling in the background. It returns a nil
// bot when token is empty; callers stop a non-nil bot on shutdown.
func StartTelegramBot(token string, mb *MarketBot) (*tele.Bot, error) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	// Polling receives nothing while a webhook is registered.
	if err := removeWebhook(b); err != nil {
		log.Printf("failed to clear Telegram webhook: %v", err)
	}

	mb.Register(b)
	startPolling(b)
	log.Println("Telegram bot started (long polling), listening for /market")
	return b, nil
}
