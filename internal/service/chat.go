package service

import (
	"context"
	"strings"

	"reviewpromax/internal/client"

	"go.uber.org/zap"
)

const DefaultSystemPrompt = `You are the ReviewProMax assistant. ReviewProMax helps authors get honest reader reviews for their books.
Plans: Starter Trial (10 reviews), Bronze Package (25 reviews), Silver Package (50 reviews), Gold Package (100 reviews).
Verified plans come from readers who bought the book; unverified plans do not require a purchase.
Answer briefly and politely. If you do not know something, suggest contacting support.`

const ChatFallback = "I'm sorry, I'm having trouble responding right now. Please try again later or contact our support team."

type ChatService interface {
	// Reply never fails; upstream problems produce ChatFallback.
	Reply(ctx context.Context, message string) string
}

type chatServiceImpl struct {
	chatClient   client.ChatClient
	systemPrompt string
	log          *zap.Logger
}

func NewChatService(chatClient client.ChatClient, systemPrompt string, log *zap.Logger) ChatService {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &chatServiceImpl{
		chatClient:   chatClient,
		systemPrompt: systemPrompt,
		log:          log,
	}
}

func (s *chatServiceImpl) Reply(ctx context.Context, message string) string {
	answer, err := s.chatClient.Complete(ctx, []client.ChatMessage{
		{Role: "system", Content: s.systemPrompt},
		{Role: "user", Content: message},
	})
	if err != nil {
		s.log.Warn("chat completion", zap.Error(err))
		return ChatFallback
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ChatFallback
	}
	return answer
}
