package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/credits"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/notify"
	"github.com/medhire/medhire-backend/internal/views"
)

const renewalWindow = 30 * 24 * time.Hour

// errJobNotExpired aborts a renewal whose job was renewed or
// reactivated after the pre-transaction status check.
var errJobNotExpired = errors.New("job is not expired")

type JobHandler struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Ledger  *credits.Ledger
	Notify  *notify.Dispatcher
	Tracker *views.Tracker
}

type jobReq struct {
	Title               string     `json:"title" binding:"required"`
	ShortDescription    string     `json:"shortDescription"`
	FullDescription     string     `json:"fullDescription" binding:"required"`
	Role                string     `json:"role" binding:"required"`
	JobType             string     `json:"jobType"`
	Skills              []string   `json:"skills"`
	WorkLocation        string     `json:"workLocation" binding:"required"`
	City                *string    `json:"city"`
	Country             *string    `json:"country"`
	ExperienceLevel     string     `json:"experienceLevel"`
	Requirements        string     `json:"requirements"`
	Speciality          string     `json:"speciality"`
	SubSpeciality       string     `json:"subSpeciality"`
	SalaryMin           *int       `json:"salaryMin"`
	SalaryMax           *int       `json:"salaryMax"`
	SalaryCurrency      string     `json:"salaryCurrency"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	ContactEmail        string     `json:"contactEmail"`
	ContactPhone        string     `json:"contactPhone"`
	ContactPerson       string     `json:"contactPerson"`
	AdditionalInfo      string     `json:"additionalInfo"`
}

// needsLocation reports whether the work-location mode requires a
// physical city/country.
func needsLocation(mode string) bool {
	return mode == models.WorkLocationOnSite || mode == models.WorkLocationHybrid
}

func (r *jobReq) validateLocation(c *gin.Context) bool {
	if needsLocation(r.WorkLocation) {
		if r.City == nil || *r.City == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "City is required for On-site or Hybrid jobs"})
			return false
		}
		if r.Country == nil || *r.Country == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Country is required for On-site or Hybrid jobs"})
			return false
		}
	}
	return true
}

func (h *JobHandler) Create(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "only institutes may create jobs"})
		return
	}

	var req jobReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if !req.validateLocation(c) {
		return
	}

	cost, err := credits.PostingCost(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := models.Job{
		ID:                  uuid.NewString(),
		InstituteID:         actor.ID,
		Title:               req.Title,
		ShortDescription:    req.ShortDescription,
		FullDescription:     req.FullDescription,
		Role:                req.Role,
		JobType:             req.JobType,
		Skills:              pq.StringArray(req.Skills),
		WorkLocation:        req.WorkLocation,
		ExperienceLevel:     req.ExperienceLevel,
		Requirements:        req.Requirements,
		Speciality:          req.Speciality,
		SubSpeciality:       req.SubSpeciality,
		SalaryMin:           req.SalaryMin,
		SalaryMax:           req.SalaryMax,
		SalaryCurrency:      req.SalaryCurrency,
		ApplicationDeadline: req.ApplicationDeadline,
		ContactEmail:        req.ContactEmail,
		ContactPhone:        req.ContactPhone,
		ContactPerson:       req.ContactPerson,
		AdditionalInfo:      req.AdditionalInfo,
		Status:              models.JobStatusActive,
	}
	if needsLocation(req.WorkLocation) {
		job.City = req.City
		job.Country = req.Country
	}

	// debit and insert are one unit: a debit is never charged for a
	// job that fails to persist
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&job).Error; err != nil {
			return err
		}
		_, err := h.Ledger.Debit(tx, actor.ID, cost, models.CreditActionJobPost, &job.ID)
		return err
	})
	if err != nil {
		var insufficient credits.ErrInsufficientCredits
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient credits",
				"details": gin.H{
					"required":  insufficient.Required,
					"available": insufficient.Available,
				},
			})
			return
		}
		if errors.Is(err, credits.ErrNoWallet) {
			c.JSON(http.StatusBadRequest, gin.H{"error": credits.ErrNoWallet.Error()})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}

	log.WithFields(logrus.Fields{"instituteId": actor.ID, "jobId": job.ID, "cost": cost}).Info("job created")
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Renew(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "only institutes may renew jobs"})
		return
	}
	id := c.Param("id")

	var job models.Job
	if err := h.DB.Where("id = ?", id).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot renew another institute's job"})
		return
	}
	if job.Status != models.JobStatusExpired {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job is not expired"})
		return
	}

	cost := credits.RenewalCost(job.Role)

	// extend from the previous deadline; fall back to now when the
	// extended deadline would still be in the past
	now := time.Now()
	var newDeadline time.Time
	if job.ApplicationDeadline != nil {
		newDeadline = job.ApplicationDeadline.Add(renewalWindow)
	} else {
		newDeadline = now.Add(renewalWindow)
	}
	if newDeadline.Before(now) {
		newDeadline = now.Add(renewalWindow)
	}

	// the status guard repeats inside the transaction as a conditional
	// update so two racing renewals cannot both debit
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", job.ID, models.JobStatusExpired).
			Updates(map[string]interface{}{
				"status":               models.JobStatusActive,
				"application_deadline": newDeadline,
				"renewed_at":           now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errJobNotExpired
		}
		_, err := h.Ledger.Debit(tx, actor.ID, cost, models.CreditActionJobRenew, &job.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, errJobNotExpired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Job is not expired"})
			return
		}
		var insufficient credits.ErrInsufficientCredits
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient credits",
				"details": gin.H{
					"required":  insufficient.Required,
					"available": insufficient.Available,
				},
			})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}

	if err := h.DB.Where("id = ?", id).First(&job).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	log.WithFields(logrus.Fields{"instituteId": actor.ID, "jobId": job.ID, "cost": cost}).Info("job renewed")
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "only institutes may update jobs"})
		return
	}
	id := c.Param("id")

	var req jobReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if !req.validateLocation(c) {
		return
	}

	var job models.Job
	if err := h.DB.Where("id = ?", id).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot update another institute's job"})
		return
	}

	job.Title = req.Title
	job.ShortDescription = req.ShortDescription
	job.FullDescription = req.FullDescription
	job.Role = req.Role
	job.JobType = req.JobType
	job.Skills = pq.StringArray(req.Skills)
	job.WorkLocation = req.WorkLocation
	job.ExperienceLevel = req.ExperienceLevel
	job.Requirements = req.Requirements
	job.Speciality = req.Speciality
	job.SubSpeciality = req.SubSpeciality
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	job.SalaryCurrency = req.SalaryCurrency
	job.ApplicationDeadline = req.ApplicationDeadline
	job.ContactEmail = req.ContactEmail
	job.ContactPhone = req.ContactPhone
	job.ContactPerson = req.ContactPerson
	job.AdditionalInfo = req.AdditionalInfo
	if needsLocation(req.WorkLocation) {
		job.City = req.City
		job.Country = req.Country
	} else {
		job.City = nil
		job.Country = nil
	}

	if err := h.DB.Save(&job).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindInstitute {
		c.JSON(http.StatusForbidden, gin.H{"error": "only institutes may delete jobs"})
		return
	}
	id := c.Param("id")

	var job models.Job
	if err := h.DB.Where("id = ?", id).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete another institute's job"})
		return
	}

	if err := h.DB.Delete(&job).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) ToggleStatus(c *gin.Context) {
	actor := identity.MustActor(c)
	id := c.Param("id")

	var job models.Job
	if err := h.DB.Where("id = ?", id).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot toggle another institute's job"})
		return
	}

	next := models.JobStatusActive
	if job.Status == models.JobStatusActive {
		next = models.JobStatusInactive
	}
	if err := h.DB.Model(&job).Update("status", next).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) List(c *gin.Context) {
	p := paginate(c)

	q := h.DB.Model(&models.Job{})
	if v := c.Query("jobType"); v != "" {
		q = q.Where("job_type = ?", v)
	}
	if v := c.Query("location"); v != "" {
		q = q.Where("lower(work_location) = lower(?)", v)
	}
	if v := c.Query("experienceLevel"); v != "" {
		q = q.Where("experience_level = ?", v)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var jobs []models.Job
	if err := q.Preload("Institute").Order("created_at desc").
		Limit(p.PageSize).Offset(p.Offset()).Find(&jobs).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "page": p.Page, "pageSize": p.PageSize, "total": total})
}

func (h *JobHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var job models.Job
	if err := h.DB.Preload("Institute").Where("id = ?", id).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	var matchingScore *int
	var viewerID *string
	if actor, ok := identity.FromContext(c); ok {
		viewerID = &actor.ID
		if actor.Kind == identity.KindUser {
			var user models.User
			if err := h.DB.Where("id = ?", actor.ID).First(&user).Error; err == nil {
				score := matchScore(&user, &job)
				matchingScore = &score
			}
		}
	}

	// advisory only; must never block the request
	h.Tracker.RecordJobView(job.ID, viewerID)

	c.JSON(http.StatusOK, gin.H{"job": job, "matchingScore": matchingScore})
}

func (h *JobHandler) ListByInstitute(c *gin.Context) {
	instituteID := c.Param("instituteId")
	p := paginate(c)

	q := h.DB.Model(&models.Job{}).Where("institute_id = ?", instituteID)
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var jobs []models.Job
	if err := q.Order("created_at desc").Limit(p.PageSize).Offset(p.Offset()).Find(&jobs).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	type jobWithCount struct {
		models.Job
		ApplicationsCount int64 `json:"applicationsCount"`
	}
	out := make([]jobWithCount, 0, len(jobs))
	for _, job := range jobs {
		var count int64
		h.DB.Model(&models.Application{}).Where("job_id = ?", job.ID).Count(&count)
		out = append(out, jobWithCount{Job: job, ApplicationsCount: count})
	}

	c.JSON(http.StatusOK, gin.H{"jobs": out, "page": p.Page, "pageSize": p.PageSize, "total": total})
}

func (h *JobHandler) Search(c *gin.Context) {
	p := paginate(c)

	q := h.DB.Model(&models.Job{})
	if term := c.Query("q"); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"lower(title) LIKE ? OR lower(full_description) LIKE ? OR lower(requirements) LIKE ? OR lower(role) LIKE ?",
			like, like, like, like)
	}
	if v := c.Query("location"); v != "" {
		q = q.Where("lower(work_location) = lower(?)", v)
	}
	if v := c.Query("jobType"); v != "" {
		q = q.Where("job_type = ?", v)
	}
	if v := c.Query("experienceLevel"); v != "" {
		q = q.Where("experience_level = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	var jobs []models.Job
	if err := q.Preload("Institute").Order("created_at desc").
		Limit(p.PageSize).Offset(p.Offset()).Find(&jobs).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "page": p.Page, "pageSize": p.PageSize, "total": total})
}

// Recommended lists active jobs for a seeker ranked by profile match.
func (h *JobHandler) Recommended(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "only job seekers can view recommended jobs"})
		return
	}
	p := paginate(c)

	var user models.User
	if err := h.DB.Where("id = ?", actor.ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User profile not found"})
		return
	}

	var jobs []models.Job
	if err := h.DB.Preload("Institute").Where("status = ?", models.JobStatusActive).
		Order("created_at desc").Find(&jobs).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	type scored struct {
		models.Job
		MatchScore int `json:"matchScore"`
	}
	ranked := make([]scored, 0, len(jobs))
	for _, job := range jobs {
		ranked = append(ranked, scored{Job: job, MatchScore: matchScore(&user, &job)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	total := len(ranked)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{"jobs": ranked[start:end], "page": p.Page, "pageSize": p.PageSize, "total": total})
}

// matchScore grades how well a seeker profile fits a job: role 20,
// speciality 30, sub-speciality 25, experience band 25.
func matchScore(user *models.User, job *models.Job) int {
	score := 0
	if user.Role != "" && job.Role != "" && strings.EqualFold(strings.TrimSpace(user.Role), strings.TrimSpace(job.Role)) {
		score += 20
	}
	if user.Speciality != "" && job.Speciality != "" && strings.EqualFold(user.Speciality, job.Speciality) {
		score += 30
	}
	if user.SubSpeciality != "" && job.SubSpeciality != "" && strings.EqualFold(user.SubSpeciality, job.SubSpeciality) {
		score += 25
	}
	score += experienceScore(user.Experience, job.ExperienceLevel)
	return score
}

func experienceScore(years int, level string) int {
	l := strings.ToLower(strings.TrimSpace(level))
	switch {
	case strings.Contains(l, "fresher") && years >= 0 && years <= 1:
		return 25
	case strings.Contains(l, "intermediate") && years >= 2 && years <= 4:
		return 25
	case strings.Contains(l, "experienced") && years >= 5:
		return 25
	}
	return 0
}
