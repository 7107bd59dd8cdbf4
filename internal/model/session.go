package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ChatMessage is one turn of a stored conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageList stores an ordered message array as JSONB.
type MessageList []ChatMessage

func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return json.Marshal(m)
}

func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// ChatSession is one saved conversation, owned by an opaque user identifier.
// The session ID is chosen by the client; upserts are keyed on it.
type ChatSession struct {
	ID        string      `gorm:"size:255;primary_key" json:"id"`
	UserID    string      `gorm:"size:255;not null;index:idx_chat_sessions_user" json:"-"`
	Title     string      `gorm:"size:500;not null" json:"title"`
	Messages  MessageList `gorm:"type:jsonb;not null" json:"messages"`
	CreatedAt int64       `gorm:"not null" json:"createdAt"`
	UpdatedAt int64       `gorm:"not null" json:"updatedAt"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
