package model

import "time"

// ChatSession records one generation request: the submitted text and,
// once the generator call resolves, its raw response. The response stays
// empty until the persist worker applies the queued update.
type ChatSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	UserInput   string    `gorm:"type:text;not null" json:"user_input"`
	RawResponse string    `gorm:"type:text" json:"-"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionSummary is the dashboard read model: a session joined with the
// id of its flashcard set, when one exists.
type SessionSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	SetID     *uint     `gorm:"column:set_id" json:"set_id,omitempty"`
}

// ResponseUpdate is the queue payload carrying a generator response to
// the persist worker.
type ResponseUpdate struct {
	SessionID   uint   `json:"session_id"`
	RawResponse string `json:"raw_response"`
}
