package models

import (
	"time"

	"github.com/lib/pq"
)

// Job statuses.
const (
	JobStatusActive   = "active"
	JobStatusInactive = "inactive"
	JobStatusExpired  = "expired"
)

// Work location modes. City and country are required iff the mode
// involves a physical location.
const (
	WorkLocationOnSite = "On-site"
	WorkLocationHybrid = "Hybrid"
	WorkLocationRemote = "Remote"
)

// Job role categories; these drive the posting credit cost.
const (
	JobRoleDoctor  = "Doctor"
	JobRoleOther   = "Other"
	JobRoleStudent = "Student"
)

type Job struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	InstituteID string    `gorm:"type:uuid;index;not null" json:"instituteId"`
	Institute   Institute `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`

	Title            string         `gorm:"size:255;not null" json:"title"`
	ShortDescription string         `gorm:"size:500" json:"shortDescription"`
	FullDescription  string         `gorm:"type:text" json:"fullDescription"`
	Role             string         `gorm:"size:40;not null" json:"role"`
	JobType          string         `gorm:"size:40" json:"jobType"` // Full-time, Part-time, ...
	Skills           pq.StringArray `gorm:"type:text[]" json:"skills"`
	WorkLocation     string         `gorm:"size:40;not null" json:"workLocation"`
	City             *string        `gorm:"size:120" json:"city,omitempty"`
	Country          *string        `gorm:"size:120" json:"country,omitempty"`
	ExperienceLevel  string         `gorm:"size:60" json:"experienceLevel"`
	Requirements     string         `gorm:"type:text" json:"requirements"`
	Speciality       string         `gorm:"size:190" json:"speciality"`
	SubSpeciality    string         `gorm:"size:190" json:"subSpeciality"`
	SalaryMin        *int           `json:"salaryMin,omitempty"`
	SalaryMax        *int           `json:"salaryMax,omitempty"`
	SalaryCurrency   string         `gorm:"size:10" json:"salaryCurrency"`
	ContactEmail     string         `gorm:"size:190" json:"contactEmail"`
	ContactPhone     string         `gorm:"size:40" json:"contactPhone"`
	ContactPerson    string         `gorm:"size:190" json:"contactPerson"`
	AdditionalInfo   string         `gorm:"type:text" json:"additionalInfo"`

	Status              string     `gorm:"size:20;index;not null;default:active" json:"status"`
	ApplicationDeadline *time.Time `gorm:"index" json:"applicationDeadline,omitempty"`
	RenewedAt           *time.Time `json:"renewedAt,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobView records one profile view of a job. Authenticated viewers are
// deduplicated within a trailing window; anonymous views keep a null
// viewer and are never deduplicated.
type JobView struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	JobID    string    `gorm:"type:uuid;index;not null" json:"jobId"`
	UserID   *string   `gorm:"type:uuid;index" json:"userId,omitempty"`
	ViewedAt time.Time `gorm:"index;not null" json:"viewedAt"`
}

// InstituteView keeps at most one row per (institute, user); repeat
// views refresh ViewedAt.
type InstituteView struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	InstituteID string    `gorm:"type:uuid;not null;uniqueIndex:idx_institute_viewer" json:"instituteId"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_institute_viewer" json:"userId"`
	ViewedAt    time.Time `gorm:"not null" json:"viewedAt"`
}

type SavedJob struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_job" json:"userId"`
	JobID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_job" json:"jobId"`
	Job       Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
