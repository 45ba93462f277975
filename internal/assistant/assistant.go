// Package assistant описывает диалог с языковой моделью и собирает
// системную инструкцию для сессии клиента.
package assistant

import "context"

// Client открывает новые диалоги
type Client interface {
	StartChat(ctx context.Context, systemPrompt string) (Conversation, error)
}

// Conversation хранит историю на стороне модели. Send отправляет одно
// сообщение пользователя и возвращает текст ответа, возможно пустой.
type Conversation interface {
	Send(ctx context.Context, message string) (string, error)
}
