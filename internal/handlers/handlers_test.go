package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/credits"
	"github.com/medhire/medhire-backend/internal/db"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
	"github.com/medhire/medhire-backend/internal/notify"
	"github.com/medhire/medhire-backend/internal/storage"
	"github.com/medhire/medhire-backend/internal/views"
	"github.com/medhire/medhire-backend/internal/ws"
)

const (
	testSecret   = "test-secret"
	testAdminKey = "test-admin-key"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: testSecret,
		UploadDir: t.TempDir(),
		AdminKey:  testAdminKey,
		Env:       "production", // keep raw db errors out of responses
	}

	hub := ws.NewHub()
	r := gin.New()
	Register(r, Deps{
		DB:      conn,
		Cfg:     cfg,
		Hub:     hub,
		Notify:  notify.NewDispatcher(conn, hub),
		Ledger:  credits.NewLedger(conn),
		Tracker: views.NewTracker(conn),
		Store:   storage.New(cfg.UploadDir, ""),
	})

	return &testEnv{db: conn, router: r}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// seedInstitute creates an institute with a funded wallet and returns
// its id and a bearer token.
func (e *testEnv) seedInstitute(t *testing.T, balance int) (string, string) {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	inst := models.Institute{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@hospital.example",
		PasswordHash: string(hash),
		Name:         "General Hospital",
		Role:         models.InstituteRoleHospital,
	}
	if err := e.db.Create(&inst).Error; err != nil {
		t.Fatalf("seed institute: %v", err)
	}
	wallet := models.InstituteCredits{ID: uuid.NewString(), InstituteID: inst.ID, Credits: balance}
	if err := e.db.Create(&wallet).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}

	token, err := identity.IssueToken(testSecret, inst.ID, inst.Role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return inst.ID, token
}

// seedUser creates a job seeker with a complete profile.
func (e *testEnv) seedUser(t *testing.T, role string) (string, string) {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	user := models.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@seeker.example",
		PasswordHash: string(hash),
		FirstName:    "Asha",
		LastName:     "Verma",
		Role:         role,
		Speciality:   "Cardiology",
		Experience:   3,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	edu := models.UserEducation{ID: uuid.NewString(), UserID: user.ID, Degree: "MBBS", StartYear: 2012}
	skill := models.UserSkill{ID: uuid.NewString(), UserID: user.ID, Name: "Echocardiography"}
	if err := e.db.Create(&edu).Error; err != nil {
		t.Fatalf("seed education: %v", err)
	}
	if err := e.db.Create(&skill).Error; err != nil {
		t.Fatalf("seed skill: %v", err)
	}
	if role != models.UserRoleStudent {
		exp := models.UserExperience{ID: uuid.NewString(), UserID: user.ID, Title: "Resident"}
		if err := e.db.Create(&exp).Error; err != nil {
			t.Fatalf("seed experience: %v", err)
		}
	}

	token, err := identity.IssueToken(testSecret, user.ID, user.Role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user.ID, token
}

func (e *testEnv) seedJob(t *testing.T, instituteID, role string) models.Job {
	t.Helper()
	job := models.Job{
		ID:              uuid.NewString(),
		InstituteID:     instituteID,
		Title:           "Consultant Cardiologist",
		FullDescription: "Full-time consultant position.",
		Role:            role,
		WorkLocation:    models.WorkLocationRemote,
		Status:          models.JobStatusActive,
	}
	if err := e.db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func (e *testEnv) balance(t *testing.T, instituteID string) int {
	t.Helper()
	var wallet models.InstituteCredits
	if err := e.db.Where("institute_id = ?", instituteID).First(&wallet).Error; err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return wallet.Credits
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
