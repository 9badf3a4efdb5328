package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/notify"
	"github.com/medhire/medhire-backend/internal/storage"
)

const maxDocumentSize = 10 << 20 // 10 MiB

var (
	errDocumentTooLarge = errors.New("document too large")
	errDocumentType     = errors.New("only PDF, PNG and JPEG documents are supported")
)

// requireAdmin gates the verification review surface behind the
// operator key. An unset key keeps the surface closed entirely.
func requireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if cfg.AdminKey == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

type VerificationHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Notify *notify.Dispatcher
	Store  *storage.Store
}

// storeDocument saves one uploaded proof document and returns its
// public URL. A missing field returns "" with no error so callers can
// decide which documents are mandatory.
func (h *VerificationHandler) storeDocument(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if file.Size > maxDocumentSize {
		return "", errDocumentTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg":
	default:
		return "", errDocumentType
	}

	key := uuid.NewString() + ext
	dst, err := h.Store.Path(key)
	if err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	h.Store.Mirrored(key)
	return h.Store.PublicURL(key), nil
}

func parseDate(c *gin.Context, field string) (*time.Time, bool) {
	v := c.PostForm(field)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + ", expected YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

// SubmitUser files a seeker's identity dossier. Government ID and the
// degree certificate are mandatory; one open or approved dossier per
// user at a time.
func (h *VerificationHandler) SubmitUser(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "only job seekers may submit identity verification"})
		return
	}

	var existing models.UserVerification
	err := h.DB.Where("user_id = ? AND status IN ?", actor.ID,
		[]string{models.VerificationPending, models.VerificationApproved}).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a verification is already " + strings.ToLower(existing.Status)})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, h.Cfg, err)
		return
	}

	dob, ok := parseDate(c, "dob")
	if !ok {
		return
	}
	licenseExpiry, ok := parseDate(c, "licenseExpiry")
	if !ok {
		return
	}

	govURL, err := h.storeDocument(c, "governmentId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if govURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "government ID document is required"})
		return
	}
	degreeURL, err := h.storeDocument(c, "degreeCertificate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if degreeURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "degree certificate is required"})
		return
	}
	postgradURL, err := h.storeDocument(c, "postgraduateCertificate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := models.UserVerification{
		ID:                   uuid.NewString(),
		UserID:               actor.ID,
		FirstName:            c.PostForm("firstName"),
		LastName:             c.PostForm("lastName"),
		DOB:                  dob,
		ProfessionalTitle:    c.PostForm("professionalTitle"),
		PrimarySpeciality:    c.PostForm("primarySpeciality"),
		LicenseNumber:        c.PostForm("licenseNumber"),
		LicenseExpiry:        licenseExpiry,
		LicenseSuspended:     c.PostForm("licenseSuspended") == "true",
		SuspensionReason:     c.PostForm("suspensionReason"),
		Degree:               c.PostForm("degree"),
		University:           c.PostForm("university"),
		GovernmentIDURL:      govURL,
		DegreeCertificateURL: degreeURL,
		PostgraduateCertURL:  postgradURL,
		Status:               models.VerificationPending,
	}
	if err := h.DB.Create(&v).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	log.WithFields(logrus.Fields{"verificationId": v.ID, "userId": actor.ID}).Info("user verification submitted")
	c.JSON(http.StatusCreated, v)
}

// MyUserStatus returns the caller's newest dossier.
func (h *VerificationHandler) MyUserStatus(c *gin.Context) {
	actor := identity.MustActor(c)

	var v models.UserVerification
	if err := h.DB.Where("user_id = ?", actor.ID).
		Order("created_at desc").First(&v).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Verification not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VerificationHandler) ListUser(c *gin.Context) {
	p := paginate(c)

	q := h.DB.Model(&models.UserVerification{})
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("userId"); v != "" {
		q = q.Where("user_id = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var out []models.UserVerification
	if err := q.Preload("User").Order("created_at desc").
		Limit(p.PageSize).Offset(p.Offset()).Find(&out).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out, "page": p.Page, "pageSize": p.PageSize, "total": total})
}

func (h *VerificationHandler) GetUser(c *gin.Context) {
	var v models.UserVerification
	if err := h.DB.Preload("User").Where("id = ?", c.Param("id")).First(&v).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Verification not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// reviewUser moves a dossier to the given status, syncs the owner's
// verified flag and tells them the outcome.
func (h *VerificationHandler) reviewUser(c *gin.Context, status, title, message string) {
	var v models.UserVerification
	if err := h.DB.Where("id = ?", c.Param("id")).First(&v).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Verification not found"})
		return
	}

	verified := status == models.VerificationApproved
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&v).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", v.UserID).
			Update("verified", verified).Error
	})
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	h.Notify.Send(notify.Input{
		ReceiverID:   v.UserID,
		ReceiverRole: models.ReceiverUser,
		Title:        title,
		Message:      message,
	})

	log.WithFields(logrus.Fields{"verificationId": v.ID, "userId": v.UserID, "status": status}).
		Info("user verification reviewed")
	c.JSON(http.StatusOK, v)
}

func (h *VerificationHandler) ApproveUser(c *gin.Context) {
	h.reviewUser(c, models.VerificationApproved,
		"Identity Verification Approved",
		"Your identity has been verified. Your profile now carries the verified badge.")
}

func (h *VerificationHandler) RejectUser(c *gin.Context) {
	h.reviewUser(c, models.VerificationRejected,
		"Identity Verification Rejected",
		"Your identity verification was rejected. Please review your documents and submit again.")
}

func (h *VerificationHandler) DeleteUser(c *gin.Context) {
	res := h.DB.Where("id = ?", c.Param("id")).Delete(&models.UserVerification{})
	if res.Error != nil {
		dbError(c, h.Cfg, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Verification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitInstitute files an institute's registration dossier. One per
// institute; the registration certificate is mandatory.
func (h *VerificationHandler) SubmitInstitute(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "only institutes may submit registration verification"})
		return
	}

	certURL, err := h.storeDocument(c, "registrationCertificate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if certURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration certificate is required"})
		return
	}

	v := models.InstituteVerification{
		ID:                         uuid.NewString(),
		InstituteID:                actor.ID,
		Telephone:                  c.PostForm("telephone"),
		Email:                      c.PostForm("email"),
		AdminName:                  c.PostForm("adminName"),
		AdminPhone:                 c.PostForm("adminPhone"),
		RegistrationCertificateURL: certURL,
		Status:                     models.VerificationPending,
	}
	if err := h.DB.Create(&v).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "a verification already exists for this institute"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}

	log.WithFields(logrus.Fields{"verificationId": v.ID, "instituteId": actor.ID}).Info("institute verification submitted")
	c.JSON(http.StatusCreated, v)
}

// InstituteStatus reports the caller's review state. An institute that
// never submitted gets NOT_FOUND rather than an error so clients can
// prompt for a submission.
func (h *VerificationHandler) InstituteStatus(c *gin.Context) {
	actor := identity.MustActor(c)

	var v models.InstituteVerification
	if err := h.DB.Where("institute_id = ?", actor.ID).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"verified": false, "status": "NOT_FOUND"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified": v.Status == models.VerificationApproved,
		"status":   v.Status,
	})
}

func (h *VerificationHandler) ListInstitutes(c *gin.Context) {
	p := paginate(c)

	q := h.DB.Model(&models.InstituteVerification{})
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var out []models.InstituteVerification
	if err := q.Preload("Institute").Order("created_at desc").
		Limit(p.PageSize).Offset(p.Offset()).Find(&out).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out, "page": p.Page, "pageSize": p.PageSize, "total": total})
}

func (h *VerificationHandler) reviewInstitute(c *gin.Context, status, title, message string) {
	instituteID := c.Param("instituteId")

	var v models.InstituteVerification
	if err := h.DB.Where("institute_id = ?", instituteID).First(&v).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Verification not found"})
		return
	}
	if err := h.DB.Model(&v).Update("status", status).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	h.Notify.Send(notify.Input{
		ReceiverID:   instituteID,
		ReceiverRole: models.ReceiverInstitute,
		Title:        title,
		Message:      message,
	})

	log.WithFields(logrus.Fields{"verificationId": v.ID, "instituteId": instituteID, "status": status}).
		Info("institute verification reviewed")
	c.JSON(http.StatusOK, v)
}

func (h *VerificationHandler) ApproveInstitute(c *gin.Context) {
	h.reviewInstitute(c, models.VerificationApproved,
		"Registration Verification Approved",
		"Your institute registration has been verified.")
}

func (h *VerificationHandler) RejectInstitute(c *gin.Context) {
	h.reviewInstitute(c, models.VerificationRejected,
		"Registration Verification Rejected",
		"Your institute registration could not be verified. Please review your documents and submit again.")
}
