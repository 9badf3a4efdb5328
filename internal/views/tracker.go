package views

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medhire/medhire-backend/internal/models"
)

var log = logrus.WithField("service", "views")

// dedupWindow is the trailing window within which repeat views from
// the same authenticated viewer are not recorded again.
const dedupWindow = 10 * time.Minute

// Tracker records job and institute profile views for analytics. It is
// advisory only: every error is logged and swallowed so tracking can
// never block the request that triggered it.
type Tracker struct {
	db *gorm.DB
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// RecordJobView stores one view row unless the same authenticated
// viewer already viewed this job within the dedup window. Anonymous
// viewers (nil userID) are always recorded and never deduplicated
// against each other.
func (t *Tracker) RecordJobView(jobID string, userID *string) {
	if jobID == "" {
		return
	}

	if userID != nil {
		var recent models.JobView
		err := t.db.Where("job_id = ? AND user_id = ? AND viewed_at >= ?",
			jobID, *userID, time.Now().Add(-dedupWindow)).First(&recent).Error
		if err == nil {
			return
		}
		if err != gorm.ErrRecordNotFound {
			log.WithError(err).WithField("jobId", jobID).Error("failed to check recent job view")
			return
		}
	}

	view := models.JobView{
		ID:       uuid.NewString(),
		JobID:    jobID,
		UserID:   userID,
		ViewedAt: time.Now(),
	}
	if err := t.db.Create(&view).Error; err != nil {
		log.WithError(err).WithField("jobId", jobID).Error("failed to record job view")
	}
}

// RecordInstituteView keeps one row per (institute, viewer) and
// refreshes its timestamp on repeat views. Anonymous views are skipped.
func (t *Tracker) RecordInstituteView(instituteID string, userID *string) {
	if instituteID == "" || userID == nil {
		return
	}

	view := models.InstituteView{
		ID:          uuid.NewString(),
		InstituteID: instituteID,
		UserID:      *userID,
		ViewedAt:    time.Now(),
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "institute_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"viewed_at": time.Now()}),
	}).Create(&view).Error
	if err != nil {
		log.WithError(err).WithField("instituteId", instituteID).Error("failed to record institute view")
	}
}
