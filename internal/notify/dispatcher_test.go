package notify

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/ws"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestSendPersistsWithoutConnection(t *testing.T) {
	db := openTestDB(t)
	d := NewDispatcher(db, ws.NewHub())

	receiverID := uuid.NewString()
	d.Send(Input{
		ReceiverID:   receiverID,
		ReceiverRole: models.ReceiverUser,
		Title:        "Application Shortlisted",
		Message:      "Your application was shortlisted.",
	})

	var n models.Notification
	if err := db.Where("receiver_id = ?", receiverID).First(&n).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if n.IsRead {
		t.Fatal("new notification must be unread")
	}
	if n.Title != "Application Shortlisted" {
		t.Fatalf("title = %q", n.Title)
	}
}

func TestFlushUnreadDeliversOldestFirstAndMarksRead(t *testing.T) {
	db := openTestDB(t)
	d := NewDispatcher(db, nil)

	receiverID := uuid.NewString()
	for i := 0; i < 3; i++ {
		d.Send(Input{
			ReceiverID:   receiverID,
			ReceiverRole: models.ReceiverUser,
			Title:        fmt.Sprintf("n%d", i),
			Message:      "m",
		})
	}

	client := &ws.Client{ReceiverID: receiverID, Send: make(chan ws.Event, 8)}
	d.FlushUnread(receiverID, client)

	if got := len(client.Send); got != 3 {
		t.Fatalf("delivered = %d, want 3", got)
	}
	first := <-client.Send
	if n, ok := first.Data.(models.Notification); !ok || n.Title != "n0" {
		t.Fatalf("first event = %+v, want oldest notification", first.Data)
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).Count(&unread).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if unread != 0 {
		t.Fatalf("unread = %d, want 0 after flush", unread)
	}
}

func TestFlushUnreadKeepsOverflowUnread(t *testing.T) {
	db := openTestDB(t)
	d := NewDispatcher(db, nil)

	receiverID := uuid.NewString()
	for i := 0; i < 3; i++ {
		d.Send(Input{
			ReceiverID:   receiverID,
			ReceiverRole: models.ReceiverUser,
			Title:        fmt.Sprintf("n%d", i),
			Message:      "m",
		})
	}

	// room for one event only: the other two must stay unread for the
	// next connect instead of silently vanishing
	client := &ws.Client{ReceiverID: receiverID, Send: make(chan ws.Event, 1)}
	d.FlushUnread(receiverID, client)

	if got := len(client.Send); got != 1 {
		t.Fatalf("delivered = %d, want 1", got)
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).Count(&unread).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if unread != 2 {
		t.Fatalf("unread = %d, want 2 after partial flush", unread)
	}
}

func TestFlushUnreadNoopWhenNothingPending(t *testing.T) {
	db := openTestDB(t)
	d := NewDispatcher(db, nil)

	client := &ws.Client{Send: make(chan ws.Event, 1)}
	d.FlushUnread(uuid.NewString(), client)

	if len(client.Send) != 0 {
		t.Fatal("no events expected")
	}
}
