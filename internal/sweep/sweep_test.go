package sweep

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medhire/medhire-backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Institute{}, &models.Job{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedJob(t *testing.T, db *gorm.DB, status string, deadline time.Time) models.Job {
	t.Helper()
	inst := models.Institute{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         "Lakeside Clinic",
		Role:         models.InstituteRoleClinic,
	}
	if err := db.Create(&inst).Error; err != nil {
		t.Fatalf("seed institute: %v", err)
	}
	job := models.Job{
		ID:                  uuid.NewString(),
		InstituteID:         inst.ID,
		Title:               "Staff Nurse",
		Role:                models.JobRoleOther,
		WorkLocation:        models.WorkLocationOnSite,
		Status:              status,
		ApplicationDeadline: &deadline,
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestRunExpiresOverdueJobs(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	overdue := seedJob(t, db, models.JobStatusActive, now.Add(-time.Hour))
	current := seedJob(t, db, models.JobStatusActive, now.Add(30*24*time.Hour))

	NewSweeper(db).Run(now)

	var got models.Job
	if err := db.Where("id = ?", overdue.ID).First(&got).Error; err != nil {
		t.Fatalf("reload overdue: %v", err)
	}
	if got.Status != models.JobStatusExpired {
		t.Fatalf("overdue status = %s, want expired", got.Status)
	}

	var gotCurrent models.Job
	if err := db.Where("id = ?", current.ID).First(&gotCurrent).Error; err != nil {
		t.Fatalf("reload current: %v", err)
	}
	if gotCurrent.Status != models.JobStatusActive {
		t.Fatalf("current status = %s, want active", gotCurrent.Status)
	}
}

func TestRunSendsOneDayReminder(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	job := seedJob(t, db, models.JobStatusActive, now.Add(24*time.Hour))

	NewSweeper(db).Run(now)

	var notifications []models.Notification
	if err := db.Where("related_job_id = ?", job.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Title != "Job Expiry Reminder: 1 Day Left" {
		t.Fatalf("title = %q", n.Title)
	}
	if n.ReceiverID != job.InstituteID || n.ReceiverRole != models.ReceiverInstitute {
		t.Fatalf("receiver = %s/%s", n.ReceiverID, n.ReceiverRole)
	}
}

func TestRepeatedRunDoesNotDuplicateReminders(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	job := seedJob(t, db, models.JobStatusActive, now.Add(7*24*time.Hour))

	sweeper := NewSweeper(db)
	sweeper.Run(now)
	sweeper.Run(now.Add(time.Minute))

	var count int64
	if err := db.Model(&models.Notification{}).
		Where("related_job_id = ?", job.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("notifications = %d, want 1 (same-day dedup)", count)
	}
}

func TestInactiveJobsGetNoReminder(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	job := seedJob(t, db, models.JobStatusInactive, now.Add(24*time.Hour))

	NewSweeper(db).Run(now)

	var count int64
	if err := db.Model(&models.Notification{}).
		Where("related_job_id = ?", job.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("notifications = %d, want 0", count)
	}
}
