package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studybuddy/internal/model"
)

type FlashcardRepository struct {
	db *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// CreateSetWithCards inserts the set row, then bulk-inserts its cards.
func (r *FlashcardRepository) CreateSetWithCards(set *model.FlashcardSet, cards []model.Flashcard) error {
	if err := r.db.Create(set).Error; err != nil {
		return fmt.Errorf("create flashcard set failed: %w", err)
	}
	for i := range cards {
		cards[i].SetID = set.ID
	}
	if len(cards) > 0 {
		if err := r.db.Create(&cards).Error; err != nil {
			return fmt.Errorf("create flashcards failed: %w", err)
		}
	}
	return nil
}

// GetSetByIDAndUserID resolves a set through its chat session so only the
// owning user can read it.
func (r *FlashcardRepository) GetSetByIDAndUserID(setID, userID uint) (*model.FlashcardSet, error) {
	var set model.FlashcardSet
	err := r.db.
		Joins("JOIN chat_sessions ON chat_sessions.id = flashcard_sets.chat_session_id").
		Where("flashcard_sets.id = ? AND chat_sessions.user_id = ?", setID, userID).
		First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flashcard set failed: %w", err)
	}
	return &set, nil
}

func (r *FlashcardRepository) ListCardsBySetID(setID uint) ([]model.Flashcard, error) {
	var cards []model.Flashcard
	if err := r.db.Where("set_id = ?", setID).Order("id ASC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("list flashcards failed: %w", err)
	}
	return cards, nil
}
