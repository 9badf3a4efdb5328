package credits

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/medhire/medhire-backend/internal/models"
)

var log = logrus.WithField("service", "credits")

var ErrNoWallet = errors.New("no credits account found for this institute")

// ErrInsufficientCredits carries the amounts the API reports back.
type ErrInsufficientCredits struct {
	Required  int
	Available int
}

func (e ErrInsufficientCredits) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

// Ledger mutates institute balances. Every balance change appends a
// history entry inside the same transaction, so a partial write can
// never survive.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WalletByID looks a wallet up by its own primary key.
func (l *Ledger) WalletByID(id string) (*models.InstituteCredits, error) {
	var w models.InstituteCredits
	if err := l.db.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// WalletByInstitute looks a wallet up by the owning institute.
func (l *Ledger) WalletByInstitute(instituteID string) (*models.InstituteCredits, error) {
	var w models.InstituteCredits
	if err := l.db.Where("institute_id = ?", instituteID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Debit withdraws amount from the institute's balance, failing closed
// when the balance cannot cover it. The decrement is a conditional
// update so two concurrent debits can never both succeed against a
// balance that only covers one. Runs inside tx; pass l.db for a
// standalone debit.
func (l *Ledger) Debit(tx *gorm.DB, instituteID string, amount int, action string, jobID *string) (int, error) {
	if tx == nil {
		tx = l.db
	}

	var wallet models.InstituteCredits
	if err := tx.Where("institute_id = ?", instituteID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoWallet
		}
		return 0, err
	}

	res := tx.Model(&models.InstituteCredits{}).
		Where("id = ? AND credits >= ?", wallet.ID, amount).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientCredits{Required: amount, Available: wallet.Credits}
	}

	// Re-read inside the transaction for an exact balance-after value.
	if err := tx.Where("id = ?", wallet.ID).First(&wallet).Error; err != nil {
		return 0, err
	}
	newBalance := wallet.Credits
	entry := models.CreditsHistory{
		ID:           uuid.NewString(),
		InstituteID:  instituteID,
		JobID:        jobID,
		Action:       action,
		Amount:       amount,
		BalanceAfter: newBalance,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}

	log.WithFields(logrus.Fields{"instituteId": instituteID, "action": action, "amount": amount, "balance": newBalance}).Info("credits debited")
	return newBalance, nil
}

// Credit adds amount to the institute's balance.
func (l *Ledger) Credit(tx *gorm.DB, instituteID string, amount int, action string) (int, error) {
	if tx == nil {
		tx = l.db
	}

	var wallet models.InstituteCredits
	if err := tx.Where("institute_id = ?", instituteID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoWallet
		}
		return 0, err
	}

	if err := tx.Model(&models.InstituteCredits{}).
		Where("id = ?", wallet.ID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount)).Error; err != nil {
		return 0, err
	}

	if err := tx.Where("id = ?", wallet.ID).First(&wallet).Error; err != nil {
		return 0, err
	}
	newBalance := wallet.Credits
	entry := models.CreditsHistory{
		ID:           uuid.NewString(),
		InstituteID:  instituteID,
		Action:       action,
		Amount:       amount,
		BalanceAfter: newBalance,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}

	log.WithFields(logrus.Fields{"instituteId": instituteID, "action": action, "amount": amount, "balance": newBalance}).Info("credits added")
	return newBalance, nil
}
