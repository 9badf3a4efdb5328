package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/views"
)

type InstituteHandler struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *views.Tracker
}

// Get returns an institute's public profile. An authenticated job
// seeker viewing it leaves an institute-view record.
func (h *InstituteHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var inst models.Institute
	if err := h.DB.Where("id = ?", id).First(&inst).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Institute not found"})
		return
	}

	if actor, ok := identity.FromContext(c); ok && actor.Kind == identity.KindUser {
		h.Tracker.RecordInstituteView(inst.ID, &actor.ID)
	}

	var jobCount int64
	if err := h.DB.Model(&models.Job{}).
		Where("institute_id = ? AND status = ?", inst.ID, models.JobStatusActive).
		Count(&jobCount).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"institute": inst, "activeJobs": jobCount})
}

type instituteUpdateReq struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	City         *string `json:"city"`
	Country      *string `json:"country"`
	ContactEmail *string `json:"contactEmail"`
	ContactPhone *string `json:"contactPhone"`
	Website      *string `json:"website"`
}

func (h *InstituteHandler) Update(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var req instituteUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		updates["contact_phone"] = *req.ContactPhone
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := h.DB.Model(&models.Institute{}).Where("id = ?", actor.ID).
		Updates(updates).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var inst models.Institute
	if err := h.DB.Where("id = ?", actor.ID).First(&inst).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

func (h *InstituteHandler) List(c *gin.Context) {
	p := paginate(c)

	q := h.DB.Model(&models.Institute{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if city := c.Query("city"); city != "" {
		q = q.Where("lower(city) = lower(?)", city)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var institutes []models.Institute
	if err := q.Order("created_at desc").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&institutes).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"institutes": institutes,
		"total":      total,
		"page":       p.Page,
		"pageSize":   p.PageSize,
	})
}

// Viewers lists the job seekers who viewed the calling institute's
// profile, most recent first.
func (h *InstituteHandler) Viewers(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var viewsList []models.InstituteView
	if err := h.DB.Where("institute_id = ?", actor.ID).
		Order("viewed_at desc").Limit(100).Find(&viewsList).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, viewsList)
}
