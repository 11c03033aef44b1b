package model

import "time"

// FlashcardSet groups the cards derived from one chat session. The 1:1
// link to the session is by convention, not enforced by the schema.
type FlashcardSet struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChatSessionID uint      `gorm:"not null;index" json:"chat_session_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Flashcard struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	SetID    uint   `gorm:"not null;index" json:"set_id"`
	Question string `gorm:"type:text;not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
}
