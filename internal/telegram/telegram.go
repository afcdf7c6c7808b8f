// Package telegram runs the bot: long polling, the whitelist, voice note
// transcription, quick commands, and formatted delivery of replies.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pirlo1121/I-am-poor/internal/bus"
	"github.com/pirlo1121/I-am-poor/internal/store"
)

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// Options configures the Telegram channel.
type Options struct {
	Token       string
	AllowedIDs  []int64
	Bus         *bus.Bus
	Store       *store.Store
	Transcriber Transcriber // nil disables voice notes
	Loc         *time.Location
}

// Channel is the Telegram side of the bot. Free-form messages go to the
// conversation worker through the bus; commands are answered straight
// from the store.
type Channel struct {
	bot         *tgbotapi.BotAPI
	bus         *bus.Bus
	store       *store.Store
	transcriber Transcriber
	allowed     map[int64]bool
	loc         *time.Location
	now         func() time.Time
	http        *http.Client
	ctx         context.Context

	// typing indicator cancellation per chat
	stopTyping sync.Map // chatID int64 → chan struct{}
}

// New connects to the Bot API and prepares the channel.
func New(opts Options) (*Channel, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram token not set")
	}
	bot, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	allowed := make(map[int64]bool, len(opts.AllowedIDs))
	for _, id := range opts.AllowedIDs {
		allowed[id] = true
	}
	loc := opts.Loc
	if loc == nil {
		loc = time.UTC
	}

	return &Channel{
		bot:         bot,
		bus:         opts.Bus,
		store:       opts.Store,
		transcriber: opts.Transcriber,
		allowed:     allowed,
		loc:         loc,
		now:         time.Now,
		http:        &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Start begins polling for updates and delivering outbound messages. It
// returns immediately; the goroutines stop when ctx is canceled.
func (c *Channel) Start(ctx context.Context) {
	c.ctx = ctx

	slog.Info("telegram bot started",
		slog.String("username", c.bot.Self.UserName),
		slog.Int("allowed_users", len(c.allowed)))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil {
					c.handleMessage(ctx, update.Message)
				}
			}
		}
	}()

	go func() {
		for {
			msg, ok := c.bus.SubscribeOutbound(ctx)
			if !ok {
				return
			}
			c.deliver(msg)
		}
	}()
}

func (c *Channel) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	userID := msg.From.ID
	if len(c.allowed) > 0 && !c.allowed[userID] {
		slog.Warn("telegram: unauthorized user", slog.Int64("user_id", userID))
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		c.handleCommand(ctx, chatID, userID, msg.Command())
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" && msg.Voice != nil {
		transcript, err := c.transcribeVoice(ctx, msg.Voice)
		if err != nil {
			slog.Warn("voice transcription failed", slog.Int64("user_id", userID), slog.Any("error", err))
			c.reply(chatID, "🎤 No pude entender el audio. ¿Me lo escribes?")
			return
		}
		slog.Info("voice transcribed", slog.Int64("user_id", userID), slog.Int("chars", len(transcript)))
		text = transcript
	}
	if text == "" {
		return // stickers, photos without caption, etc.
	}

	c.startTyping(chatID)
	c.bus.PublishInbound(bus.Message{
		ID:        fmt.Sprintf("tg-%d", msg.MessageID),
		Source:    bus.SourceTelegram,
		UserID:    userID,
		ChatID:    chatID,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// transcribeVoice downloads the voice note and runs it through Whisper.
func (c *Channel) transcribeVoice(ctx context.Context, voice *tgbotapi.Voice) (string, error) {
	if c.transcriber == nil {
		return "", fmt.Errorf("transcription not configured")
	}
	url, err := c.bot.GetFileDirectURL(voice.FileID)
	if err != nil {
		return "", fmt.Errorf("resolve voice file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download voice file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download voice file: status %d", resp.StatusCode)
	}
	return c.transcriber.Transcribe(ctx, resp.Body, "voice.ogg")
}

// reply queues a message for this chat through the normal outbound path.
func (c *Channel) reply(chatID int64, text string) {
	c.bus.PublishOutbound(bus.Message{
		Source:    bus.SourceTelegram,
		ChatID:    chatID,
		Text:      text,
		Timestamp: time.Now(),
	})
}

func (c *Channel) deliver(msg bus.Message) {
	if msg.Text == "" {
		return
	}
	c.stopTypingFor(msg.ChatID)

	text := sanitizeUTF8(msg.Text)

	// Try HTML mode first, fall back to plain text.
	htmlText := markdownToTelegramHTML(text)
	if err := c.sendChunked(msg.ChatID, htmlText, tgbotapi.ModeHTML); err != nil {
		slog.Warn("telegram: HTML send failed, falling back to plain text", slog.Any("error", err))
		plain := stripMarkdown(text)
		if err := c.sendChunked(msg.ChatID, plain, ""); err != nil {
			slog.Error("telegram: send failed", slog.Int64("chat_id", msg.ChatID), slog.Any("error", err))
		}
	}
}

func (c *Channel) sendChunked(chatID int64, text string, parseMode string) error {
	const maxLen = 4096
	for _, chunk := range splitMessage(text, maxLen) {
		if chunk == "" {
			continue
		}
		tgMsg := tgbotapi.NewMessage(chatID, chunk)
		if parseMode != "" {
			tgMsg.ParseMode = parseMode
		}
		if _, err := c.bot.Send(tgMsg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) startTyping(chatID int64) {
	_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	stop := make(chan struct{})
	if prev, loaded := c.stopTyping.Swap(chatID, stop); loaded {
		if ch, ok := prev.(chan struct{}); ok {
			close(ch)
		}
	}
	go c.typingLoop(chatID, stop)
}

func (c *Channel) stopTypingFor(chatID int64) {
	if stop, ok := c.stopTyping.LoadAndDelete(chatID); ok {
		if ch, ok := stop.(chan struct{}); ok {
			close(ch)
		}
	}
}

func (c *Channel) typingLoop(chatID int64, stop <-chan struct{}) {
	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
		}
	}
}
