package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/lifecycle"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/notify"
)

type ApplicationHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Notify *notify.Dispatcher
}

type applyReq struct {
	JobID             string         `json:"jobId" binding:"required"`
	ResumeURL         string         `json:"resumeUrl" binding:"required"`
	CoverLetter       string         `json:"coverLetter"`
	ExperienceYears   *int           `json:"experienceYears"`
	CurrentPosition   string         `json:"currentPosition"`
	CurrentInstitute  string         `json:"currentInstitute"`
	AdditionalDetails datatypes.JSON `json:"additionalDetails"`
}

// Apply creates the application in its initial state. The applicant's
// profile must be complete first: education, skills and a speciality
// for everyone, plus experience unless the seeker is a student.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	actor := identity.MustActor(c)
	if actor.Kind != identity.KindUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "only job seekers may apply"})
		return
	}

	var req applyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Preload("Educations").Preload("Experiences").Preload("Skills").
		Where("id = ?", actor.ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if len(user.Educations) == 0 || len(user.Skills) == 0 || user.Speciality == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Profile incomplete. Please complete your education, skills, and speciality before applying.",
		})
		return
	}
	if user.Role != models.UserRoleStudent && len(user.Experiences) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Profile incomplete. Please add your experience details before applying.",
		})
		return
	}

	var job models.Job
	if err := h.DB.Where("id = ?", req.JobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	var existing models.Application
	err := h.DB.Where("job_id = ? AND user_id = ?", req.JobID, actor.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already applied"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, h.Cfg, err)
		return
	}

	app := models.Application{
		ID:                uuid.NewString(),
		UserID:            actor.ID,
		JobID:             req.JobID,
		Status:            models.StatusApplied,
		ResumeURL:         req.ResumeURL,
		CoverLetter:       req.CoverLetter,
		ExperienceYears:   req.ExperienceYears,
		CurrentPosition:   req.CurrentPosition,
		CurrentInstitute:  req.CurrentInstitute,
		AdditionalDetails: req.AdditionalDetails,
	}
	if err := h.DB.Create(&app).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already applied"})
			return
		}
		dbError(c, h.Cfg, err)
		return
	}

	h.Notify.Send(notify.Input{
		ReceiverID:           job.InstituteID,
		ReceiverRole:         models.ReceiverInstitute,
		Title:                "New Job Application",
		Message:              fmt.Sprintf("%s %s applied for %s", user.FirstName, user.LastName, job.Title),
		RelatedJobID:         &job.ID,
		RelatedApplicationID: &app.ID,
	})

	app.User = user
	app.Job = job
	c.JSON(http.StatusCreated, app)
}

// transition is the shared guarded status change: load, check actor
// and ownership, check the graph, write, notify the counterparty.
func (h *ApplicationHandler) transition(c *gin.Context, to string, extra map[string]interface{}, notice func(app *models.Application) (receiverID, receiverRole, title, message string)) {
	actor := identity.MustActor(c)
	id := c.Param("id")

	var app models.Application
	if err := h.DB.Preload("Job").Preload("User").Where("id = ?", id).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	switch actor.Kind {
	case identity.KindInstitute:
		if app.Job.InstituteID != actor.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
	case identity.KindUser:
		if app.UserID != actor.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if err := lifecycle.Check(app.Status, to, actor.Kind); err != nil {
		if errors.Is(err, lifecycle.ErrWrongActor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	if err := h.DB.Model(&app).Updates(updates).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	receiverID, receiverRole, title, message := notice(&app)
	h.Notify.Send(notify.Input{
		ReceiverID:           receiverID,
		ReceiverRole:         receiverRole,
		Title:                title,
		Message:              message,
		RelatedJobID:         &app.JobID,
		RelatedApplicationID: &app.ID,
	})

	log.WithFields(logrus.Fields{"applicationId": app.ID, "status": to}).Info("application status changed")
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Shortlist(c *gin.Context) {
	h.transition(c, models.StatusShortlisted, nil, func(app *models.Application) (string, string, string, string) {
		return app.UserID, models.ReceiverUser, "Application Shortlisted",
			fmt.Sprintf("Your application for %s was shortlisted.", app.Job.Title)
	})
}

func (h *ApplicationHandler) RequestNextRound(c *gin.Context) {
	h.transition(c, models.StatusNextRoundRequested, nil, func(app *models.Application) (string, string, string, string) {
		return app.UserID, models.ReceiverUser, "Next Round Requested",
			fmt.Sprintf("The institute has requested a next round for your application to %s", app.Job.Title)
	})
}

type respondReq struct {
	Status string `json:"status" binding:"required"` // accept | reject
}

func (h *ApplicationHandler) RespondNextRound(c *gin.Context) {
	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	var to, outcome string
	switch req.Status {
	case "accept":
		to, outcome = models.StatusNextRoundAccepted, "Accepted"
	case "reject":
		to, outcome = models.StatusNextRoundRejected, "Rejected"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	h.transition(c, to, nil, func(app *models.Application) (string, string, string, string) {
		return app.Job.InstituteID, models.ReceiverInstitute, "Next Round " + outcome,
			fmt.Sprintf("%s %s has %sed the next round request for %s",
				app.User.FirstName, app.User.LastName, req.Status, app.Job.Title)
	})
}

type scheduleInterviewReq struct {
	InterviewType string     `json:"interviewType"`
	InterviewDate *time.Time `json:"interviewDate" binding:"required"`
	InterviewTime string     `json:"interviewTime" binding:"required"`
	InterviewLink string     `json:"interviewLink"`
}

func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	var req scheduleInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	extra := map[string]interface{}{
		"interview_type": req.InterviewType,
		"interview_date": req.InterviewDate,
		"interview_time": req.InterviewTime,
		"interview_link": req.InterviewLink,
	}

	h.transition(c, models.StatusInterviewScheduled, extra, func(app *models.Application) (string, string, string, string) {
		msg := fmt.Sprintf("Your interview has been scheduled for %s on %s at %s.",
			app.Job.Title, req.InterviewDate.Format("2006-01-02"), req.InterviewTime)
		if req.InterviewLink != "" {
			msg += " Join using this link: " + req.InterviewLink
		}
		return app.UserID, models.ReceiverUser, "Interview Scheduled", msg
	})
}

type decisionReq struct {
	Decision string `json:"decision" binding:"required"` // accept | reject
}

func (h *ApplicationHandler) InterviewDecision(c *gin.Context) {
	var req decisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	var to, outcome string
	switch req.Decision {
	case "accept":
		to, outcome = models.StatusInterviewAccepted, "Accepted"
	case "reject":
		to, outcome = models.StatusRejected, "Rejected"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid decision"})
		return
	}

	h.transition(c, to, nil, func(app *models.Application) (string, string, string, string) {
		return app.Job.InstituteID, models.ReceiverInstitute, "Interview Result: " + outcome,
			fmt.Sprintf("%s %s has %sed the interview for %s.",
				app.User.FirstName, app.User.LastName, req.Decision, app.Job.Title)
	})
}

func (h *ApplicationHandler) Hire(c *gin.Context) {
	h.transition(c, models.StatusHired, nil, func(app *models.Application) (string, string, string, string) {
		return app.UserID, models.ReceiverUser, "Congratulations! You are Hired",
			fmt.Sprintf("You have been hired for %s!", app.Job.Title)
	})
}

func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.transition(c, models.StatusRejected, nil, func(app *models.Application) (string, string, string, string) {
		return app.UserID, models.ReceiverUser, "Application Rejected",
			fmt.Sprintf("Your application for %s was rejected.", app.Job.Title)
	})
}

func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	actor := identity.MustActor(c)
	jobID := c.Param("jobId")

	var job models.Job
	if err := h.DB.Where("id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if actor.Kind != identity.KindInstitute || job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var apps []models.Application
	if err := h.DB.Preload("User").Preload("Job").Where("job_id = ?", jobID).
		Order("created_at desc").Find(&apps).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actor := identity.MustActor(c)

	var apps []models.Application
	if err := h.DB.Preload("Job").Where("user_id = ?", actor.ID).
		Order("created_at desc").Find(&apps).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	actor := identity.MustActor(c)
	id := c.Param("id")

	var app models.Application
	if err := h.DB.Preload("Job").Preload("User").Where("id = ?", id).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if app.UserID != actor.ID && app.Job.InstituteID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, app)
}

// GetForJob returns the caller's own application for a given job.
func (h *ApplicationHandler) GetForJob(c *gin.Context) {
	actor := identity.MustActor(c)
	jobID := c.Param("jobId")

	var app models.Application
	if err := h.DB.Preload("Job").Where("user_id = ? AND job_id = ?", actor.ID, jobID).
		First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	actor := identity.MustActor(c)
	id := c.Param("id")

	var app models.Application
	if err := h.DB.Where("id = ?", id).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if app.UserID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if err := h.DB.Delete(&app).Error; err != nil {
		dbError(c, h.Cfg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats counts the caller's applications in the statuses the profile
// dashboard shows.
func (h *ApplicationHandler) Stats(c *gin.Context) {
	actor := identity.MustActor(c)

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := h.DB.Model(&models.Application{}).
		Select("status, count(*) as count").
		Where("user_id = ?", actor.ID).
		Group("status").Scan(&rows).Error
	if err != nil {
		dbError(c, h.Cfg, err)
		return
	}

	out := gin.H{"applied": int64(0), "interviewScheduled": int64(0), "rejected": int64(0)}
	for _, r := range rows {
		switch r.Status {
		case models.StatusApplied:
			out["applied"] = r.Count
		case models.StatusInterviewScheduled:
			out["interviewScheduled"] = r.Count
		case models.StatusRejected:
			out["rejected"] = r.Count
		}
	}
	c.JSON(http.StatusOK, out)
}
