package notify

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/ws"
)

var log = logrus.WithField("service", "notify")

type Input struct {
	ReceiverID           string
	ReceiverRole         string // USER | INSTITUTE
	Title                string
	Message              string
	RelatedJobID         *string
	RelatedApplicationID *string
}

// Dispatcher persists notifications and best-effort pushes them to a
// live connection. The stored row is the durable source of truth; a
// missed push is recovered on the receiver's next connect.
type Dispatcher struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewDispatcher(db *gorm.DB, hub *ws.Hub) *Dispatcher {
	return &Dispatcher{db: db, hub: hub}
}

// Send never returns an error: notification failure must not break the
// business operation that triggered it. Failures are logged.
func (d *Dispatcher) Send(in Input) {
	n := models.Notification{
		ID:                   uuid.NewString(),
		ReceiverID:           in.ReceiverID,
		ReceiverRole:         in.ReceiverRole,
		Title:                in.Title,
		Message:              in.Message,
		RelatedJobID:         in.RelatedJobID,
		RelatedApplicationID: in.RelatedApplicationID,
	}

	if err := d.db.Create(&n).Error; err != nil {
		log.WithError(err).WithField("receiverId", in.ReceiverID).Error("failed to persist notification")
		return
	}

	if d.hub != nil {
		d.hub.Push(in.ReceiverID, ws.Event{Type: ws.EventNotification, Data: n})
	}
}

// FlushUnread pushes all unread notifications to a freshly connected
// receiver, oldest first, and marks them read. Delivery is
// at-least-once: duplicates across reconnects are tolerated by the
// consumer.
func (d *Dispatcher) FlushUnread(receiverID string, client *ws.Client) {
	var pending []models.Notification
	if err := d.db.Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Order("created_at asc").Find(&pending).Error; err != nil {
		log.WithError(err).WithField("receiverId", receiverID).Error("failed to load unread notifications")
		return
	}
	if len(pending) == 0 {
		return
	}

	// only what actually made it onto the wire counts as read; a
	// notification dropped on a full buffer stays unread for the
	// next connect
	ids := make([]string, 0, len(pending))
	for _, n := range pending {
		select {
		case client.Send <- ws.Event{Type: ws.EventNotification, Data: n}:
			ids = append(ids, n.ID)
		default:
		}
	}
	if len(ids) < len(pending) {
		log.WithFields(logrus.Fields{"receiverId": receiverID, "dropped": len(pending) - len(ids)}).
			Warn("slow connection, deferring part of the unread backlog")
	}
	if len(ids) == 0 {
		return
	}

	if err := d.db.Model(&models.Notification{}).Where("id IN ?", ids).
		Update("is_read", true).Error; err != nil {
		log.WithError(err).Error("failed to mark flushed notifications read")
	}
}
