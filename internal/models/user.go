package models

import (
	"time"
)

// Job seeker roles. STUDENT relaxes the profile completeness gate
// (no experience required before applying).
const (
	UserRoleDoctor  = "DOCTOR"
	UserRoleNurse   = "NURSE"
	UserRoleStudent = "STUDENT"
	UserRoleOther   = "OTHER"
)

type User struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string `gorm:"size:190;uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"`
	FirstName     string `gorm:"size:120" json:"firstName"`
	LastName      string `gorm:"size:120" json:"lastName"`
	Role          string `gorm:"size:40" json:"role"`
	Speciality    string `gorm:"size:190" json:"speciality"`
	SubSpeciality string `gorm:"size:190" json:"subSpeciality"`
	Experience    int    `json:"experience"` // years
	Phone         string `gorm:"size:40" json:"phone"`
	City          string `gorm:"size:120" json:"city"`
	Country       string `gorm:"size:120" json:"country"`

	// set by an approved identity verification, cleared by a rejection
	Verified bool `gorm:"not null;default:false" json:"verified"`

	Educations  []UserEducation  `gorm:"foreignKey:UserID" json:"educations,omitempty"`
	Experiences []UserExperience `gorm:"foreignKey:UserID" json:"experiences,omitempty"`
	Skills      []UserSkill      `gorm:"foreignKey:UserID" json:"skills,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserEducation struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;index;not null" json:"userId"`
	Degree       string    `gorm:"size:190;not null" json:"degree"`
	Institution  string    `gorm:"size:190" json:"institution"`
	FieldOfStudy string    `gorm:"size:190" json:"fieldOfStudy"`
	StartYear    int       `json:"startYear"`
	EndYear      *int      `json:"endYear,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserExperience struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"userId"`
	Title     string     `gorm:"size:190;not null" json:"title"`
	Institute string     `gorm:"size:190" json:"institute"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Current   bool       `json:"current"`
	Summary   string     `gorm:"type:text" json:"summary"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type UserSkill struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"userId"`
	Name      string    `gorm:"size:190;not null" json:"name"`
	Level     string    `gorm:"size:40" json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}
