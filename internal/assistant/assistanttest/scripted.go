// Package assistanttest содержит поддельный ассистент для тестов
package assistanttest

import (
	"context"
	"sync"

	"github.com/Zanvi/lacasabarber/internal/assistant"
)

// ReplyFunc формирует ответ на сообщение пользователя
type ReplyFunc func(ctx context.Context, message string) (string, error)

// Client выдает диалоги с заранее заданным поведением
type Client struct {
	mu      sync.Mutex
	reply   ReplyFunc
	prompts []string
	err     error
}

// NewClient создает клиент, отвечающий через reply
func NewClient(reply ReplyFunc) *Client {
	return &Client{reply: reply}
}

// Replies создает клиент, который отвечает строками по очереди; после
// последней строки повторяет её.
func Replies(lines ...string) *Client {
	var mu sync.Mutex
	i := 0
	return NewClient(func(context.Context, string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(lines) == 0 {
			return "", nil
		}
		line := lines[i]
		if i < len(lines)-1 {
			i++
		}
		return line, nil
	})
}

// FailStart заставляет StartChat возвращать err
func (c *Client) FailStart(err error) *Client {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	return c
}

func (c *Client) StartChat(_ context.Context, systemPrompt string) (assistant.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.prompts = append(c.prompts, systemPrompt)
	return &conversation{reply: c.reply}, nil
}

// Prompts возвращает системные инструкции открытых диалогов
func (c *Client) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

type conversation struct {
	reply ReplyFunc
}

func (c *conversation) Send(ctx context.Context, message string) (string, error) {
	return c.reply(ctx, message)
}
