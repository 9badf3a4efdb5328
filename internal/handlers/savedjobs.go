package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
)

type SavedJobHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func (h *SavedJobHandler) Save(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	jobID := c.Param("jobId")

	var job models.Job
	if err := h.DB.Where("id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	saved := models.SavedJob{
		ID:     uuid.NewString(),
		UserID: actor.ID,
		JobID:  jobID,
	}
	if err := h.DB.Create(&saved).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Job already saved"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *SavedJobHandler) Unsave(c *gin.Context) {
	actor := identity.MustActor(c)
	jobID := c.Param("jobId")

	res := h.DB.Where("user_id = ? AND job_id = ?", actor.ID, jobID).
		Delete(&models.SavedJob{})
	if res.Error != nil {
		dbError(c, h.Cfg, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Saved job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SavedJobHandler) List(c *gin.Context) {
	actor := identity.MustActor(c)

	var saved []models.SavedJob
	if err := h.DB.Preload("Job").Preload("Job.Institute").
		Where("user_id = ?", actor.ID).
		Order("created_at desc").Find(&saved).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
