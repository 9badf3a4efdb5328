package models

import "time"

// Institute roles. Any of these may post jobs and spend credits.
const (
	InstituteRoleHospital = "HOSPITAL"
	InstituteRoleClinic   = "CLINIC"
	InstituteRoleLab      = "LAB"
	InstituteRolePharmacy = "PHARMACY"
)

var InstituteRoles = []string{
	InstituteRoleHospital,
	InstituteRoleClinic,
	InstituteRoleLab,
	InstituteRolePharmacy,
}

type Institute struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string `gorm:"size:190;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Name         string `gorm:"size:190;not null" json:"name"`
	Role         string `gorm:"size:40;not null" json:"role"`
	Description  string `gorm:"type:text" json:"description"`
	City         string `gorm:"size:120" json:"city"`
	Country      string `gorm:"size:120" json:"country"`
	ContactEmail string `gorm:"size:190" json:"contactEmail"`
	ContactPhone string `gorm:"size:40" json:"contactPhone"`
	Website      string `gorm:"size:255" json:"website"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
