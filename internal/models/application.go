package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application statuses. APPLIED is the sole initial state; HIRED,
// REJECTED and NEXT_ROUND_REJECTED are terminal. The allowed transition
// graph lives in the lifecycle package.
const (
	StatusApplied            = "APPLIED"
	StatusShortlisted        = "SHORTLISTED"
	StatusNextRoundRequested = "NEXT_ROUND_REQUESTED"
	StatusNextRoundAccepted  = "NEXT_ROUND_ACCEPTED"
	StatusNextRoundRejected  = "NEXT_ROUND_REJECTED"
	StatusInterviewScheduled = "INTERVIEW_SCHEDULED"
	StatusInterviewAccepted  = "INTERVIEW_ACCEPTED"
	StatusHired              = "HIRED"
	StatusRejected           = "REJECTED"
)

type Application struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_app_user_job" json:"userId"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JobID  string `gorm:"type:uuid;not null;uniqueIndex:idx_app_user_job" json:"jobId"`
	Job    Job    `gorm:"foreignKey:JobID" json:"job,omitempty"`

	Status           string         `gorm:"size:40;index;not null;default:APPLIED" json:"status"`
	ResumeURL        string         `gorm:"size:500;not null" json:"resumeUrl"`
	CoverLetter      string         `gorm:"type:text" json:"coverLetter"`
	ExperienceYears  *int           `json:"experienceYears,omitempty"`
	CurrentPosition  string         `gorm:"size:190" json:"currentPosition"`
	CurrentInstitute string         `gorm:"size:190" json:"currentInstitute"`
	AdditionalDetails datatypes.JSON `json:"additionalDetails,omitempty"`

	InterviewType string     `gorm:"size:40" json:"interviewType"`
	InterviewDate *time.Time `json:"interviewDate,omitempty"`
	InterviewTime string     `gorm:"size:40" json:"interviewTime"`
	InterviewLink string     `gorm:"size:500" json:"interviewLink"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Resume is a stored upload with its extracted plain text.
type Resume struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	FileURL   string    `gorm:"size:500;not null" json:"fileUrl"`
	Text      string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
