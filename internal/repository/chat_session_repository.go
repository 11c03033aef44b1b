package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studybuddy/internal/model"
)

type ChatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

func (r *ChatSessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create chat session failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) GetByIDAndUserID(sessionID, userID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}

func (r *ChatSessionRepository) UpdateRawResponse(sessionID uint, raw string) error {
	if err := r.db.Model(&model.ChatSession{}).Where("id = ?", sessionID).
		Update("raw_response", raw).Error; err != nil {
		return fmt.Errorf("update raw response failed: %w", err)
	}
	return nil
}

// ListSummariesByUserID returns the user's sessions most-recent-first,
// each joined with its flashcard set id when a set exists.
func (r *ChatSessionRepository) ListSummariesByUserID(userID uint) ([]model.SessionSummary, error) {
	var summaries []model.SessionSummary
	err := r.db.Table("chat_sessions").
		Select("chat_sessions.id, chat_sessions.title, chat_sessions.created_at, flashcard_sets.id AS set_id").
		Joins("LEFT JOIN flashcard_sets ON flashcard_sets.chat_session_id = chat_sessions.id").
		Where("chat_sessions.user_id = ?", userID).
		Order("chat_sessions.created_at DESC, chat_sessions.id DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("list session summaries failed: %w", err)
	}
	return summaries, nil
}
