package models

import "time"

// Receiver roles for notifications and message senders.
const (
	ReceiverUser      = "USER"
	ReceiverInstitute = "INSTITUTE"
)

// Notification is immutable once created except for the read flag.
type Notification struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiverID   string `gorm:"type:uuid;index:idx_notif_receiver;not null" json:"receiverId"`
	ReceiverRole string `gorm:"size:20;index:idx_notif_receiver;not null" json:"receiverRole"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Message      string `gorm:"type:text;not null" json:"message"`

	RelatedJobID         *string      `gorm:"type:uuid;index" json:"relatedJobId,omitempty"`
	Job                  *Job         `gorm:"foreignKey:RelatedJobID" json:"job,omitempty"`
	RelatedApplicationID *string      `gorm:"type:uuid;index" json:"relatedApplicationId,omitempty"`
	Application          *Application `gorm:"foreignKey:RelatedApplicationID" json:"application,omitempty"`

	IsRead    bool      `gorm:"index;not null;default:false" json:"isRead"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
