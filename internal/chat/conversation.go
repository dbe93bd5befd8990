// Package chat holds a conversation with the companion bot.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/impress/internal/store"
)

// Greeting opens every conversation.
const Greeting = "Hello! How can I assist you today?"

// Senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is one line of the conversation.
type Message struct {
	Sender string    `json:"sender" yaml:"sender"`
	Text   string    `json:"text" yaml:"text"`
	At     time.Time `json:"at,omitzero" yaml:"at,omitempty"`
}

// Client sends a message to the bot.
type Client interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Transcript persists lines between runs.
type Transcript interface {
	AppendMessage(ctx context.Context, sender, text string) error
	Messages(ctx context.Context, limit int) ([]store.Message, error)
	ClearMessages(ctx context.Context) error
}

// Conversation is a chat session. The zero value is not usable; call New.
type Conversation struct {
	client     Client
	transcript Transcript
	logger     *zap.Logger

	mu       sync.Mutex
	messages []Message
}

// New starts a conversation. transcript may be nil, in which case nothing
// is persisted.
func New(client Client, transcript Transcript, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		client:     client,
		transcript: transcript,
		logger:     logger,
		messages:   []Message{{Sender: SenderBot, Text: Greeting}},
	}
}

// Send posts text and returns the bot's reply. Blank input is ignored and
// returns ok == false. On a transport error the user line is kept and no
// bot line is added.
func (c *Conversation) Send(ctx context.Context, text string) (reply string, ok bool, err error) {
	if strings.TrimSpace(text) == "" {
		return "", false, nil
	}
	c.append(ctx, SenderUser, text)

	reply, err = c.client.Chat(ctx, text)
	if err != nil {
		c.logger.Error("chat request failed", zap.Error(err))
		return "", false, fmt.Errorf("sending chat message: %w", err)
	}
	c.append(ctx, SenderBot, reply)
	return reply, true, nil
}

func (c *Conversation) append(ctx context.Context, sender, text string) {
	c.mu.Lock()
	c.messages = append(c.messages, Message{Sender: sender, Text: text, At: time.Now()})
	c.mu.Unlock()
	if c.transcript == nil {
		return
	}
	if err := c.transcript.AppendMessage(ctx, sender, text); err != nil {
		c.logger.Warn("saving chat transcript", zap.String("sender", sender), zap.Error(err))
	}
}

// Messages returns this session's lines, greeting first.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// History returns the greeting followed by the newest limit persisted lines.
// limit <= 0 returns all of them.
func History(ctx context.Context, t Transcript, limit int) ([]Message, error) {
	rows, err := t.Messages(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(rows)+1)
	out = append(out, Message{Sender: SenderBot, Text: Greeting})
	for _, r := range rows {
		out = append(out, Message{Sender: r.Sender, Text: r.Text, At: r.CreatedAt})
	}
	return out, nil
}

// Clear drops the persisted transcript.
func Clear(ctx context.Context, t Transcript) error {
	return t.ClearMessages(ctx)
}
