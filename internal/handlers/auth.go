package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
)

type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type registerUserReq struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req registerUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if identity.Classify(req.Role) != identity.KindUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	u := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
	}
	if err := h.DB.Create(&u).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}

	token, err := identity.IssueToken(h.Cfg.JWTSecret, u.ID, u.Role)
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

type registerInstituteReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

func (h *AuthHandler) RegisterInstitute(c *gin.Context) {
	var req registerInstituteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if identity.Classify(req.Role) != identity.KindInstitute {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institute role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	inst := models.Institute{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		City:         req.City,
		Country:      req.Country,
	}

	// the institute and its (empty) wallet are created together
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inst).Error; err != nil {
			return err
		}
		wallet := models.InstituteCredits{ID: uuid.NewString(), InstituteID: inst.ID, Credits: 0}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}

	token, err := identity.IssueToken(h.Cfg.JWTSecret, inst.ID, inst.Role)
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "institute": inst})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	var u models.User
	if err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&u).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}

	token, err := identity.IssueToken(h.Cfg.JWTSecret, u.ID, u.Role)
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

func (h *AuthHandler) LoginInstitute(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	var inst models.Institute
	if err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&inst).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(inst.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}

	token, err := identity.IssueToken(h.Cfg.JWTSecret, inst.ID, inst.Role)
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "institute": inst})
}

func isDuplicate(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE constraint"))
}
