package credits

import (
	"errors"
	"fmt"
	"sync"
	"testing"

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
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// sqlite locks the whole db per writer
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(&models.Institute{}, &models.InstituteCredits{}, &models.CreditsHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedWallet(t *testing.T, db *gorm.DB, balance int) string {
	t.Helper()
	inst := models.Institute{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         "City Hospital",
		Role:         models.InstituteRoleHospital,
	}
	if err := db.Create(&inst).Error; err != nil {
		t.Fatalf("seed institute: %v", err)
	}
	wallet := models.InstituteCredits{
		ID:          uuid.NewString(),
		InstituteID: inst.ID,
		Credits:     balance,
	}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return inst.ID
}

func TestDebitReducesBalanceAndAppendsHistory(t *testing.T) {
	db := openTestDB(t)
	instID := seedWallet(t, db, 100)
	ledger := NewLedger(db)

	balance, err := ledger.Debit(nil, instID, 50, models.CreditActionJobPost, nil)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if balance != 50 {
		t.Fatalf("balance = %d, want 50", balance)
	}

	var history []models.CreditsHistory
	if err := db.Where("institute_id = ?", instID).Find(&history).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	if history[0].Action != models.CreditActionJobPost || history[0].Amount != 50 || history[0].BalanceAfter != 50 {
		t.Fatalf("history = %+v", history[0])
	}
}

func TestDebitInsufficientLeavesStateUntouched(t *testing.T) {
	db := openTestDB(t)
	instID := seedWallet(t, db, 40)
	ledger := NewLedger(db)

	_, err := ledger.Debit(nil, instID, 50, models.CreditActionJobPost, nil)
	var insufficient ErrInsufficientCredits
	if !errors.As(err, &insufficient) {
		t.Fatalf("want ErrInsufficientCredits, got %v", err)
	}
	if insufficient.Required != 50 || insufficient.Available != 40 {
		t.Fatalf("error amounts = %+v", insufficient)
	}

	wallet, err := ledger.WalletByInstitute(instID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if wallet.Credits != 40 {
		t.Fatalf("balance = %d, want 40 (unchanged)", wallet.Credits)
	}

	var count int64
	if err := db.Model(&models.CreditsHistory{}).Where("institute_id = ?", instID).Count(&count).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if count != 0 {
		t.Fatalf("history rows = %d, want 0", count)
	}
}

func TestDebitMissingWallet(t *testing.T) {
	db := openTestDB(t)
	ledger := NewLedger(db)

	_, err := ledger.Debit(nil, uuid.NewString(), 10, models.CreditActionJobPost, nil)
	if !errors.Is(err, ErrNoWallet) {
		t.Fatalf("want ErrNoWallet, got %v", err)
	}
}

func TestCreditAddsBalance(t *testing.T) {
	db := openTestDB(t)
	instID := seedWallet(t, db, 10)
	ledger := NewLedger(db)

	balance, err := ledger.Credit(nil, instID, 25, models.CreditActionPurchase)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 35 {
		t.Fatalf("balance = %d, want 35", balance)
	}

	var entry models.CreditsHistory
	if err := db.Where("institute_id = ?", instID).First(&entry).Error; err != nil {
		t.Fatalf("history: %v", err)
	}
	if entry.BalanceAfter != 35 {
		t.Fatalf("balanceAfter = %d, want 35", entry.BalanceAfter)
	}
}

// Two debits racing for a balance that only covers one: exactly one
// may win.
func TestConcurrentDebitsNeverOverspend(t *testing.T) {
	db := openTestDB(t)
	instID := seedWallet(t, db, 50)
	ledger := NewLedger(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Debit(nil, instID, 50, models.CreditActionJobPost, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient ErrInsufficientCredits
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	wallet, err := ledger.WalletByInstitute(instID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if wallet.Credits != 0 {
		t.Fatalf("balance = %d, want 0", wallet.Credits)
	}
}

func TestPricingTable(t *testing.T) {
	cases := map[string]int{
		"Doctor":  50,
		"Other":   30,
		"Student": 10,
	}
	for role, want := range cases {
		got, err := PostingCost(role)
		if err != nil {
			t.Errorf("PostingCost(%s): %v", role, err)
			continue
		}
		if got != want {
			t.Errorf("PostingCost(%s) = %d, want %d", role, got, want)
		}
	}
	if _, err := PostingCost("Janitor"); err == nil {
		t.Error("PostingCost(Janitor): want error for unsupported role")
	}

	if got := RenewalCost("Student"); got != 5 {
		t.Errorf("RenewalCost(Student) = %d, want 5", got)
	}
	if got := RenewalCost("Doctor"); got != 10 {
		t.Errorf("RenewalCost(Doctor) = %d, want 10", got)
	}
}
