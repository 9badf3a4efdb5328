package models

import "time"

// Conversation is unique per (institute, user) pair; it is looked up
// before creation to avoid duplicates.
type Conversation struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	InstituteID string    `gorm:"type:uuid;not null;uniqueIndex:idx_conv_pair" json:"instituteId"`
	Institute   Institute `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_conv_pair" json:"userId"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`

	UserUnreadCount      int      `gorm:"not null;default:0" json:"userUnreadCount"`
	InstituteUnreadCount int      `gorm:"not null;default:0" json:"instituteUnreadCount"`
	LastMessageID        *string  `gorm:"type:uuid" json:"lastMessageId,omitempty"`
	LastMessage          *Message `gorm:"foreignKey:LastMessageID" json:"lastMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// Media kinds for messages.
const (
	MediaImage = "IMAGE"
	MediaVideo = "VIDEO"
	MediaPDF   = "PDF"
)

type Message struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string `gorm:"type:uuid;index;not null" json:"conversationId"`
	SenderID       string `gorm:"type:uuid;not null" json:"senderId"`
	SenderType     string `gorm:"size:20;not null" json:"senderType"` // USER | INSTITUTE
	Content        string `gorm:"type:text" json:"content"`
	MediaURL       string `gorm:"size:500" json:"mediaUrl,omitempty"`
	MediaType      string `gorm:"size:20" json:"mediaType,omitempty"`

	IsRead    bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
