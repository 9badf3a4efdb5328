package sweep

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/models"
)

var log = logrus.WithField("service", "sweep")

// reminderOffsets are the days-before-expiry marks reminders go out at.
var reminderOffsets = []int{1, 7}

// Sweeper is the daily pass that warns institutes about upcoming job
// deadlines and expires jobs whose deadline passed. It is scheduled
// once per day and assumed non-overlapping.
type Sweeper struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{db: db}
}

// Start schedules the sweep daily at midnight.
func (s *Sweeper) Start() {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		s.Run(time.Now())
	})
	if err != nil {
		log.WithError(err).Error("failed to schedule daily sweep")
		return
	}
	s.cron.Start()
	log.Info("daily job expiry sweep scheduled (00:00)")
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Run executes one sweep pass: reminders first, then expiry.
func (s *Sweeper) Run(now time.Time) {
	s.sendReminders(now)
	s.expireOverdue(now)
}

func (s *Sweeper) sendReminders(now time.Time) {
	for _, days := range reminderOffsets {
		target := now.AddDate(0, 0, days)
		dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		var jobs []models.Job
		err := s.db.Where("status = ? AND application_deadline >= ? AND application_deadline < ?",
			models.JobStatusActive, dayStart, dayEnd).Find(&jobs).Error
		if err != nil {
			log.WithError(err).WithField("daysBefore", days).Error("failed to load jobs for reminders")
			continue
		}
		if len(jobs) == 0 {
			continue
		}

		plural := ""
		if days > 1 {
			plural = "s"
		}
		title := fmt.Sprintf("Job Expiry Reminder: %d Day%s Left", days, plural)
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var toCreate []models.Notification
		for _, job := range jobs {
			// de-duplicate per calendar day so a repeated sweep run does
			// not resend the same reminder
			var count int64
			err := s.db.Model(&models.Notification{}).
				Where("related_job_id = ? AND title = ? AND created_at >= ?", job.ID, title, todayStart).
				Count(&count).Error
			if err != nil {
				log.WithError(err).WithField("jobId", job.ID).Error("failed to check existing reminder")
				continue
			}
			if count > 0 {
				continue
			}

			jobID := job.ID
			toCreate = append(toCreate, models.Notification{
				ID:           uuid.NewString(),
				ReceiverID:   job.InstituteID,
				ReceiverRole: models.ReceiverInstitute,
				Title:        title,
				Message: fmt.Sprintf("Your job posting %q will expire in %d day%s. Please renew it if you wish to keep it active.",
					job.Title, days, plural),
				RelatedJobID: &jobID,
			})
		}

		if len(toCreate) > 0 {
			if err := s.db.Create(&toCreate).Error; err != nil {
				log.WithError(err).Error("failed to create expiry reminders")
				continue
			}
			log.WithFields(logrus.Fields{"count": len(toCreate), "daysBefore": days}).Info("sent expiry reminders")
		}
	}
}

func (s *Sweeper) expireOverdue(now time.Time) {
	res := s.db.Model(&models.Job{}).
		Where("application_deadline < ? AND status <> ?", now, models.JobStatusExpired).
		Update("status", models.JobStatusExpired)
	if res.Error != nil {
		log.WithError(res.Error).Error("failed to expire overdue jobs")
		return
	}
	if res.RowsAffected > 0 {
		log.WithField("count", res.RowsAffected).Info("expired overdue jobs")
	}
}
