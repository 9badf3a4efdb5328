package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
)

type NotificationHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func (h *NotificationHandler) List(c *gin.Context) {
	actor := identity.MustActor(c)
	p := paginate(c)

	q := h.DB.Model(&models.Notification{}).
		Where("receiver_id = ? AND receiver_role = ?", actor.ID, actor.ReceiverRole())

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var notifications []models.Notification
	if err := q.Order("created_at desc").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&notifications).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"page":          p.Page,
		"pageSize":      p.PageSize,
	})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor := identity.MustActor(c)

	var count int64
	err := h.DB.Model(&models.Notification{}).
		Where("receiver_id = ? AND receiver_role = ? AND is_read = ?", actor.ID, actor.ReceiverRole(), false).
		Count(&count).Error
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor := identity.MustActor(c)
	id := c.Param("id")

	var n models.Notification
	if err := h.DB.Where("id = ?", id).First(&n).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if n.ReceiverID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if err := h.DB.Model(&n).Update("is_read", true).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor := identity.MustActor(c)

	err := h.DB.Model(&models.Notification{}).
		Where("receiver_id = ? AND receiver_role = ? AND is_read = ?", actor.ID, actor.ReceiverRole(), false).
		Update("is_read", true).Error
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
