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
)

type UserHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func (h *UserHandler) Me(c *gin.Context) {
	actor := identity.MustActor(c)

	var user models.User
	if err := h.DB.Preload("Educations").Preload("Experiences").Preload("Skills").
		Where("id = ?", actor.ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type userUpdateReq struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	Speciality    *string `json:"speciality"`
	SubSpeciality *string `json:"subSpeciality"`
	Experience    *int    `json:"experience"`
	Phone         *string `json:"phone"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
}

func (h *UserHandler) Update(c *gin.Context) {
	actor := identity.MustActor(c)

	var req userUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Speciality != nil {
		updates["speciality"] = *req.Speciality
	}
	if req.SubSpeciality != nil {
		updates["sub_speciality"] = *req.SubSpeciality
	}
	if req.Experience != nil {
		updates["experience"] = *req.Experience
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", actor.ID).
		Updates(updates).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	h.Me(c)
}

type educationReq struct {
	Degree       string `json:"degree" binding:"required"`
	Institution  string `json:"institution"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartYear    int    `json:"startYear"`
	EndYear      *int   `json:"endYear"`
}

func (h *UserHandler) AddEducation(c *gin.Context) {
	actor := identity.MustActor(c)

	var req educationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	edu := models.UserEducation{
		ID:           uuid.NewString(),
		UserID:       actor.ID,
		Degree:       req.Degree,
		Institution:  req.Institution,
		FieldOfStudy: req.FieldOfStudy,
		StartYear:    req.StartYear,
		EndYear:      req.EndYear,
	}
	if err := h.DB.Create(&edu).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, edu)
}

func (h *UserHandler) DeleteEducation(c *gin.Context) {
	actor := identity.MustActor(c)

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), actor.ID).
		Delete(&models.UserEducation{})
	if res.Error != nil {
		dbError(c, h.Cfg, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Education entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type experienceReq struct {
	Title     string     `json:"title" binding:"required"`
	Institute string     `json:"institute"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Current   bool       `json:"current"`
	Summary   string     `json:"summary"`
}

func (h *UserHandler) AddExperience(c *gin.Context) {
	actor := identity.MustActor(c)

	var req experienceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	exp := models.UserExperience{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Title:     req.Title,
		Institute: req.Institute,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Current:   req.Current,
		Summary:   req.Summary,
	}
	if err := h.DB.Create(&exp).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

func (h *UserHandler) DeleteExperience(c *gin.Context) {
	actor := identity.MustActor(c)

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), actor.ID).
		Delete(&models.UserExperience{})
	if res.Error != nil {
		dbError(c, h.Cfg, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Experience entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type skillReq struct {
	Name  string `json:"name" binding:"required"`
	Level string `json:"level"`
}

func (h *UserHandler) AddSkill(c *gin.Context) {
	actor := identity.MustActor(c)

	var req skillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	skill := models.UserSkill{
		ID:     uuid.NewString(),
		UserID: actor.ID,
		Name:   req.Name,
		Level:  req.Level,
	}
	if err := h.DB.Create(&skill).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

func (h *UserHandler) DeleteSkill(c *gin.Context) {
	actor := identity.MustActor(c)

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), actor.ID).
		Delete(&models.UserSkill{})
	if res.Error != nil {
		dbError(c, h.Cfg, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Skill not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
