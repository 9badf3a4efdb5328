package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/credits"
	"github.com/medhire/medhire-backend/internal/notify"
	"github.com/medhire/medhire-backend/internal/storage"
	"github.com/medhire/medhire-backend/internal/views"
	"github.com/medhire/medhire-backend/internal/ws"
)

var log = logrus.New()

// Deps carries everything the HTTP layer needs; handlers hold only
// what they use.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Hub     *ws.Hub
	Notify  *notify.Dispatcher
	Ledger  *credits.Ledger
	Tracker *views.Tracker
	Store   *storage.Store
}

// dbError reports a datastore failure. Outside development the raw
// error detail stays out of the response body.
func dbError(c *gin.Context, cfg *config.Config, err error) {
	if cfg != nil && cfg.Development() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

type pagination struct {
	Page     int
	PageSize int
}

func (p pagination) Offset() int { return (p.Page - 1) * p.PageSize }

func paginate(c *gin.Context) pagination {
	p := pagination{Page: 1, PageSize: 20}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(c.Query("pageSize")); err == nil && n > 0 && n <= 100 {
		p.PageSize = n
	}
	return p
}
