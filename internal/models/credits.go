package models

import "time"

// Credit history action kinds.
const (
	CreditActionJobPost  = "JOB_POST"
	CreditActionJobRenew = "JOB_RENEW"
	CreditActionPurchase = "PURCHASE"
	CreditActionAdjust   = "ADJUST"
)

// InstituteCredits is the spendable balance for one institute.
// Exactly one row per institute; the balance never goes negative.
type InstituteCredits struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	InstituteID string    `gorm:"type:uuid;uniqueIndex;not null" json:"instituteId"`
	Institute   Institute `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	Credits     int       `gorm:"not null;default:0" json:"credits"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreditsHistory is append-only; rows are never updated or deleted
// by business logic.
type CreditsHistory struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	InstituteID  string    `gorm:"type:uuid;index;not null" json:"instituteId"`
	Institute    Institute `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	JobID        *string   `gorm:"type:uuid;index" json:"jobId,omitempty"`
	Action       string    `gorm:"size:40;not null" json:"action"`
	Amount       int       `gorm:"not null" json:"amount"`
	BalanceAfter int       `gorm:"not null" json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}
