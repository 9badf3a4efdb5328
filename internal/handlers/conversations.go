package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/ws"
)

type ConversationHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Hub *ws.Hub
}

type initiateReq struct {
	ApplicationID string `json:"applicationId" binding:"required"`
}

// Initiate opens the conversation for an application. Only the
// institute that owns the job may start it; the (institute, user) pair
// is unique, so a second initiate returns the existing conversation.
func (h *ConversationHandler) Initiate(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "only institutes may start conversations"})
		return
	}

	var req initiateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	var app models.Application
	if err := h.DB.Preload("Job").Where("id = ?", req.ApplicationID).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if app.Job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var conv models.Conversation
	err := h.DB.Preload("User").Preload("Institute").
		Where("institute_id = ? AND user_id = ?", actor.ID, app.UserID).
		First(&conv).Error
	if err == nil {
		c.JSON(http.StatusOK, conv)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, h.Cfg, err)
		return
	}

	conv = models.Conversation{
		ID:          uuid.NewString(),
		InstituteID: actor.ID,
		UserID:      app.UserID,
	}
	if err := h.DB.Create(&conv).Error; err != nil {
		if isDuplicate(err) {
			// lost a race with a concurrent initiate
			if err2 := h.DB.Preload("User").Preload("Institute").
				Where("institute_id = ? AND user_id = ?", actor.ID, app.UserID).
				First(&conv).Error; err2 == nil {
				c.JSON(http.StatusOK, conv)
				return
			}
		}
		dbError(c, h.Cfg, err)
		return
	}

	if err := h.DB.Preload("User").Preload("Institute").
		Where("id = ?", conv.ID).First(&conv).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	h.Hub.Push(app.UserID, ws.Event{Type: ws.EventNewConversation, Data: conv})
	c.JSON(http.StatusCreated, conv)
}

// List returns the caller's conversations, most recently active first,
// with the counterparty and last message preloaded.
func (h *ConversationHandler) List(c *gin.Context) {
	actor := identity.MustActor(c)

	q := h.DB.Preload("User").Preload("Institute").Preload("LastMessage")
	switch actor.Kind {
	case identity.KindInstitute:
		q = q.Where("institute_id = ?", actor.ID)
	case identity.KindUser:
		q = q.Where("user_id = ?", actor.ID)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var convs []models.Conversation
	if err := q.Order("updated_at desc").Find(&convs).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	actor := identity.MustActor(c)

	var conv models.Conversation
	if err := h.DB.Preload("User").Preload("Institute").Preload("LastMessage").
		Where("id = ?", c.Param("id")).First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if conv.UserID != actor.ID && conv.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// UnreadCount sums the caller's side of the per-conversation counters.
func (h *ConversationHandler) UnreadCount(c *gin.Context) {
	actor := identity.MustActor(c)

	var total int64
	var err error
	switch actor.Kind {
	case identity.KindInstitute:
		err = h.DB.Model(&models.Conversation{}).
			Where("institute_id = ?", actor.ID).
			Select("coalesce(sum(institute_unread_count), 0)").Scan(&total).Error
	case identity.KindUser:
		err = h.DB.Model(&models.Conversation{}).
			Where("user_id = ?", actor.ID).
			Select("coalesce(sum(user_unread_count), 0)").Scan(&total).Error
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total})
}
