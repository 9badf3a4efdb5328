package handlers

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/storage"
)

const maxResumeSize = 10 << 20 // 10 MiB

type ResumeHandler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Store
}

// Upload accepts a PDF resume, validates it, extracts its plain text
// for search and keeps the file in local storage (mirrored to the CDN
// origin when one is configured).
func (h *ResumeHandler) Upload(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	file, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded: " + err.Error()})
		return
	}
	if file.Size > maxResumeSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are supported"})
		return
	}

	id := uuid.NewString()
	key := id + ".pdf"
	dst, err := h.Store.Path(key)
	if err != nil {
		log.WithError(err).Error("failed to prepare resume storage path")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.WithError(err).Error("failed to save resume file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	if err := api.ValidateFile(dst, nil); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or corrupted PDF"})
		return
	}

	text, err := extractText(dst)
	if err != nil {
		// keep the upload; search just won't see its content
		log.WithError(err).WithField("resumeId", id).Warn("failed to extract resume text")
	}

	resume := models.Resume{
		ID:      id,
		UserID:  actor.ID,
		FileURL: h.Store.PublicURL(key),
		Text:    text,
	}
	if err := h.DB.Create(&resume).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	h.Store.Mirrored(key)

	c.JSON(http.StatusCreated, gin.H{
		"resumeId": resume.ID,
		"fileUrl":  resume.FileURL,
	})
}

func extractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	body, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(body); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// List returns the caller's uploaded resumes, newest first.
func (h *ResumeHandler) List(c *gin.Context) {
	actor := identity.MustActor(c)

	var resumes []models.Resume
	if err := h.DB.Where("user_id = ?", actor.ID).
		Order("created_at desc").Find(&resumes).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (h *ResumeHandler) Delete(c *gin.Context) {
	actor := identity.MustActor(c)

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), actor.ID).
		Delete(&models.Resume{})
	if res.Error != nil {
		dbError(c, h.Cfg, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
