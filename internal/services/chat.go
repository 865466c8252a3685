package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

const (
	chatContextSize = 6
	chatHistorySize = 50
)

type ChatService interface {
	Send(ctx context.Context, user *models.User, message string) (string, error)
	History(ctx context.Context, userID uint) ([]models.ChatMessage, error)
}

type chatService struct {
	chatRepo repositories.ChatRepository
	oracle   Oracle
	logger   *zap.Logger
}

func NewChatService(chatRepo repositories.ChatRepository, oracle Oracle, log *zap.Logger) ChatService {
	return &chatService{chatRepo: chatRepo, oracle: oracle, logger: logger.OrNop(log)}
}

// Send implements ChatService. The assistant sees the last few messages of
// the conversation; anonymous conversations are answered but not stored.
func (s *chatService) Send(ctx context.Context, user *models.User, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}

	if user == nil {
		return s.oracle.Chat(ctx, nil, nil, message), nil
	}

	history, err := s.chatRepo.Recent(user.ID, chatContextSize)
	if err != nil {
		return "", err
	}
	if err := s.chatRepo.Create(&models.ChatMessage{UserID: user.ID, Role: models.ChatRoleUser, Content: message}); err != nil {
		return "", err
	}

	reply := s.oracle.Chat(ctx, user, history, message)
	if err := s.chatRepo.Create(&models.ChatMessage{UserID: user.ID, Role: models.ChatRoleAssistant, Content: reply}); err != nil {
		return "", err
	}

	s.logger.Debug("chat reply stored", zap.Uint(logger.FieldUserID, user.ID), zap.Int("history", len(history)))
	return reply, nil
}

// History implements ChatService.
func (s *chatService) History(ctx context.Context, userID uint) ([]models.ChatMessage, error) {
	return s.chatRepo.Recent(userID, chatHistorySize)
}
