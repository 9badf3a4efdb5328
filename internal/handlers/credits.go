package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/credits"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
)

type CreditsHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Ledger *credits.Ledger
}

type walletReq struct {
	InstituteID string `json:"instituteId" binding:"required"`
	Credits     int    `json:"credits"`
}

// CreateWallet opens the credits account for an institute. Normally
// registration does this with a zero balance; this endpoint covers
// accounts created before wallets existed.
func (h *CreditsHandler) CreateWallet(c *gin.Context) {
	var req walletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if req.Credits < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credits must not be negative"})
		return
	}

	wallet := models.InstituteCredits{
		ID:          uuid.NewString(),
		InstituteID: req.InstituteID,
		Credits:     req.Credits,
	}
	if err := h.DB.Create(&wallet).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Credits account already exists"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusCreated, wallet)
}

type topUpReq struct {
	Credits int    `json:"credits" binding:"required"`
	Action  string `json:"action"`
}

// TopUp adds credits to a wallet through the ledger, so the grant
// shows up in the history like every other movement.
func (h *CreditsHandler) TopUp(c *gin.Context) {
	id := c.Param("id")

	var req topUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if req.Credits <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credits must be positive"})
		return
	}
	action := req.Action
	if action == "" {
		action = models.CreditActionPurchase
	}

	wallet, err := h.Ledger.WalletByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Credits account not found"})
		return
	}

	var balance int
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		balance, err = h.Ledger.Credit(tx, wallet.InstituteID, req.Credits, action)
		return err
	})
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instituteId": wallet.InstituteID, "credits": balance})
}

// MyWallet returns the calling institute's balance.
func (h *CreditsHandler) MyWallet(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	wallet, err := h.Ledger.WalletByInstitute(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Credits account not found"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (h *CreditsHandler) GetWallet(c *gin.Context) {
	wallet, err := h.Ledger.WalletByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Credits account not found"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (h *CreditsHandler) ListWallets(c *gin.Context) {
	p := paginate(c)

	var total int64
	if err := h.DB.Model(&models.InstituteCredits{}).Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var wallets []models.InstituteCredits
	if err := h.DB.Preload("Institute").Order("created_at desc").
		Offset(p.Offset()).Limit(p.PageSize).Find(&wallets).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallets":  wallets,
		"total":    total,
		"page":     p.Page,
		"pageSize": p.PageSize,
	})
}

func (h *CreditsHandler) GetWalletByInstitute(c *gin.Context) {
	wallet, err := h.Ledger.WalletByInstitute(c.Param("instituteId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Credits account not found"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// History lists the calling institute's ledger entries, newest first.
func (h *CreditsHandler) History(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	p := paginate(c)

	var total int64
	q := h.DB.Model(&models.CreditsHistory{}).Where("institute_id = ?", actor.ID)
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var entries []models.CreditsHistory
	if err := q.Order("created_at desc").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&entries).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history":  entries,
		"total":    total,
		"page":     p.Page,
		"pageSize": p.PageSize,
	})
}

// HistoryByInstitute lists one institute's ledger entries, newest first.
func (h *CreditsHandler) HistoryByInstitute(c *gin.Context) {
	p := paginate(c)

	q := h.DB.Model(&models.CreditsHistory{}).Where("institute_id = ?", c.Param("instituteId"))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var entries []models.CreditsHistory
	if err := q.Order("created_at desc").
		Offset(p.Offset()).Limit(p.PageSize).Find(&entries).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history":  entries,
		"total":    total,
		"page":     p.Page,
		"pageSize": p.PageSize,
	})
}

func (h *CreditsHandler) HistoryEntry(c *gin.Context) {
	var entry models.CreditsHistory
	if err := h.DB.Where("id = ?", c.Param("id")).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Pricing exposes the posting cost table so clients can show prices
// before the post attempt.
func (h *CreditsHandler) Pricing(c *gin.Context) {
	out := gin.H{}
	for _, role := range credits.SupportedRoles() {
		cost, err := credits.PostingCost(role)
		if err != nil {
			continue
		}
		out[role] = cost
	}
	c.JSON(http.StatusOK, out)
}
