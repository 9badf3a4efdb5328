package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/ws"
)

type MessageHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Hub *ws.Hub
}

type sendMessageReq struct {
	Content   string `json:"content"`
	MediaURL  string `json:"mediaUrl"`
	MediaType string `json:"mediaType"`
}

// Send stores a message and bumps the counterparty's unread counter
// and the conversation's last message in one transaction, then pushes
// the message to the counterparty's live connections.
func (h *MessageHandler) Send(c *gin.Context) {
	actor := identity.MustActor(c)
	convID := c.Param("id")

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if req.Content == "" && req.MediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must have content or media"})
		return
	}
	switch req.MediaType {
	case "", models.MediaImage, models.MediaVideo, models.MediaPDF:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media type"})
		return
	}

	var conv models.Conversation
	if err := h.DB.Where("id = ?", convID).First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	var senderType, receiverID, unreadCol string
	switch {
	case actor.Kind == identity.KindUser && conv.UserID == actor.ID:
		senderType, receiverID, unreadCol = models.ReceiverUser, conv.InstituteID, "institute_unread_count"
	case actor.Kind == identity.KindInstitute && conv.InstituteID == actor.ID:
		senderType, receiverID, unreadCol = models.ReceiverInstitute, conv.UserID, "user_unread_count"
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	msg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       actor.ID,
		SenderType:     senderType,
		Content:        req.Content,
		MediaURL:       req.MediaURL,
		MediaType:      req.MediaType,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				unreadCol:         gorm.Expr(unreadCol+" + 1"),
				"last_message_id": msg.ID,
				"updated_at":      time.Now(),
			}).Error
	})
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	h.Hub.Push(receiverID, ws.Event{Type: ws.EventNewMessage, Data: msg})
	c.JSON(http.StatusCreated, msg)
}

// List returns a page of a conversation's messages, newest first.
func (h *MessageHandler) List(c *gin.Context) {
	actor := identity.MustActor(c)
	convID := c.Param("id")
	p := paginate(c)

	var conv models.Conversation
	if err := h.DB.Where("id = ?", convID).First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if conv.UserID != actor.ID && conv.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	q := h.DB.Model(&models.Message{}).Where("conversation_id = ?", convID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var messages []models.Message
	if err := q.Order("created_at desc").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&messages).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
		"page":     p.Page,
		"pageSize": p.PageSize,
	})
}

// MarkRead zeroes the caller's unread counter, flags the counterparty's
// messages read, and tells the counterparty's live connections.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor := identity.MustActor(c)
	convID := c.Param("id")

	var conv models.Conversation
	if err := h.DB.Where("id = ?", convID).First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	var senderType, counterpartyID, unreadCol string
	switch {
	case actor.Kind == identity.KindUser && conv.UserID == actor.ID:
		// the user read messages the institute sent
		senderType, counterpartyID, unreadCol = models.ReceiverInstitute, conv.InstituteID, "user_unread_count"
	case actor.Kind == identity.KindInstitute && conv.InstituteID == actor.ID:
		senderType, counterpartyID, unreadCol = models.ReceiverUser, conv.UserID, "institute_unread_count"
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_type = ? AND is_read = ?", convID, senderType, false).
			Update("is_read", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", convID).
			Update(unreadCol, 0).Error
	})
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	h.Hub.Push(counterpartyID, ws.Event{
		Type: ws.EventMessagesRead,
		Data: gin.H{"conversationId": convID, "readerId": actor.ID},
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
