package models

import "time"

// Verification review states. A submission starts PENDING and is moved
// by a reviewer; APPROVED flips the owner's verified flag.
const (
	VerificationPending  = "PENDING"
	VerificationApproved = "APPROVED"
	VerificationRejected = "REJECTED"
)

// UserVerification is a seeker's identity dossier: personal details,
// licensing and the uploaded proof documents. A user may resubmit
// after a rejection, so rows are not unique per user; the newest one
// is authoritative.
type UserVerification struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	FirstName string     `gorm:"size:120" json:"firstName"`
	LastName  string     `gorm:"size:120" json:"lastName"`
	DOB       *time.Time `json:"dob,omitempty"`

	ProfessionalTitle string     `gorm:"size:190" json:"professionalTitle"`
	PrimarySpeciality string     `gorm:"size:190" json:"primarySpeciality"`
	LicenseNumber     string     `gorm:"size:190" json:"licenseNumber"`
	LicenseExpiry     *time.Time `json:"licenseExpiry,omitempty"`
	LicenseSuspended  bool       `gorm:"not null;default:false" json:"licenseSuspended"`
	SuspensionReason  string     `gorm:"type:text" json:"suspensionReason,omitempty"`

	Degree     string `gorm:"size:190" json:"degree"`
	University string `gorm:"size:190" json:"university"`

	GovernmentIDURL      string `gorm:"size:255;not null" json:"governmentIdUrl"`
	DegreeCertificateURL string `gorm:"size:255;not null" json:"degreeCertificateUrl"`
	PostgraduateCertURL  string `gorm:"size:255" json:"postgraduateCertUrl,omitempty"`

	Status    string    `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InstituteVerification holds one registration dossier per institute.
type InstituteVerification struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	InstituteID string     `gorm:"type:uuid;uniqueIndex;not null" json:"instituteId"`
	Institute   *Institute `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`

	Telephone  string `gorm:"size:40" json:"telephone"`
	Email      string `gorm:"size:190" json:"email"`
	AdminName  string `gorm:"size:190" json:"adminName"`
	AdminPhone string `gorm:"size:40" json:"adminPhone"`

	RegistrationCertificateURL string `gorm:"size:255;not null" json:"registrationCertificateUrl"`

	Status    string    `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
