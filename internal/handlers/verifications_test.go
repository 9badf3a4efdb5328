package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medhire/medhire-backend/internal/models"
)

// doMultipart posts a form with the given fields and files; every file
// carries a tiny PDF-ish payload, which is enough for the document
// store (no content validation happens on verification documents).
func (e *testEnv) doMultipart(t *testing.T, path, token string, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, filename := range files {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("%PDF-1.4 test document")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doAdmin sends a request carrying the review key instead of a bearer
// token.
func (e *testEnv) doAdmin(t *testing.T, method, path, key string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func userVerificationDocs() map[string]string {
	return map[string]string{
		"governmentId":      "passport.pdf",
		"degreeCertificate": "degree.png",
	}
}

func TestUserVerificationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.seedUser(t, models.UserRoleDoctor)

	fields := map[string]string{
		"firstName":         "Asha",
		"lastName":          "Verma",
		"dob":               "1989-04-12",
		"professionalTitle": "Cardiologist",
		"licenseNumber":     "MCI-12345",
		"licenseExpiry":     "2030-01-01",
		"degree":            "MBBS",
		"university":        "AIIMS",
	}

	w := env.doMultipart(t, "/api/verifications/user", token, fields, userVerificationDocs())
	mustStatus(t, w, http.StatusCreated)

	var created models.UserVerification
	decode(t, w, &created)
	if created.Status != models.VerificationPending {
		t.Fatalf("status = %s, want PENDING", created.Status)
	}
	if created.GovernmentIDURL == "" || created.DegreeCertificateURL == "" {
		t.Fatal("document URLs must be recorded")
	}

	// one open dossier at a time
	w = env.doMultipart(t, "/api/verifications/user", token, fields, userVerificationDocs())
	mustStatus(t, w, http.StatusConflict)

	w = env.doAdmin(t, http.MethodPatch, "/api/verifications/user/"+created.ID+"/approve", testAdminKey)
	mustStatus(t, w, http.StatusOK)

	var user models.User
	if err := env.db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !user.Verified {
		t.Fatal("approval must mark the user verified")
	}

	var n models.Notification
	if err := env.db.Where("receiver_id = ? AND title = ?", userID, "Identity Verification Approved").
		First(&n).Error; err != nil {
		t.Fatalf("approval notification missing: %v", err)
	}

	w = env.do(t, http.MethodGet, "/api/verifications/user/me", token, nil)
	mustStatus(t, w, http.StatusOK)
	var mine models.UserVerification
	decode(t, w, &mine)
	if mine.Status != models.VerificationApproved {
		t.Fatalf("status = %s, want APPROVED", mine.Status)
	}
}

func TestUserVerificationRejectClearsVerifiedAndAllowsResubmit(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.seedUser(t, models.UserRoleNurse)

	w := env.doMultipart(t, "/api/verifications/user", token, map[string]string{"firstName": "Asha"}, userVerificationDocs())
	mustStatus(t, w, http.StatusCreated)
	var v models.UserVerification
	decode(t, w, &v)

	mustStatus(t, env.doAdmin(t, http.MethodPatch, "/api/verifications/user/"+v.ID+"/approve", testAdminKey), http.StatusOK)
	mustStatus(t, env.doAdmin(t, http.MethodPatch, "/api/verifications/user/"+v.ID+"/reject", testAdminKey), http.StatusOK)

	var user models.User
	if err := env.db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.Verified {
		t.Fatal("rejection must clear the verified flag")
	}

	// a rejected dossier does not block a fresh submission
	w = env.doMultipart(t, "/api/verifications/user", token, nil, userVerificationDocs())
	mustStatus(t, w, http.StatusCreated)
}

func TestUserVerificationRequiresDocuments(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, models.UserRoleDoctor)

	w := env.doMultipart(t, "/api/verifications/user", token, nil,
		map[string]string{"governmentId": "passport.pdf"})
	mustStatus(t, w, http.StatusBadRequest)

	w = env.doMultipart(t, "/api/verifications/user", token, nil,
		map[string]string{"degreeCertificate": "degree.pdf"})
	mustStatus(t, w, http.StatusBadRequest)

	w = env.doMultipart(t, "/api/verifications/user", token, nil, map[string]string{
		"governmentId":      "malware.exe",
		"degreeCertificate": "degree.pdf",
	})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestVerificationReviewRequiresAdminKey(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, models.UserRoleDoctor)

	mustStatus(t, env.doAdmin(t, http.MethodGet, "/api/verifications/user", ""), http.StatusForbidden)
	mustStatus(t, env.doAdmin(t, http.MethodGet, "/api/verifications/user", "wrong-key"), http.StatusForbidden)
	mustStatus(t, env.doAdmin(t, http.MethodGet, "/api/verifications/user", testAdminKey), http.StatusOK)

	// a regular bearer token is not a review credential
	mustStatus(t, env.do(t, http.MethodGet, "/api/verifications/user", token, nil), http.StatusForbidden)
}

func TestInstituteVerificationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	instID, token := env.seedInstitute(t, 0)

	w := env.do(t, http.MethodGet, "/api/verifications/institute/me", token, nil)
	mustStatus(t, w, http.StatusOK)
	var status struct {
		Verified bool   `json:"verified"`
		Status   string `json:"status"`
	}
	decode(t, w, &status)
	if status.Verified || status.Status != "NOT_FOUND" {
		t.Fatalf("pre-submission status = %+v", status)
	}

	fields := map[string]string{
		"telephone": "+91-11-2658",
		"email":     "admin@hospital.example",
		"adminName": "R. Iyer",
	}
	docs := map[string]string{"registrationCertificate": "registration.pdf"}

	mustStatus(t, env.doMultipart(t, "/api/verifications/institute", token, fields, docs), http.StatusCreated)
	mustStatus(t, env.doMultipart(t, "/api/verifications/institute", token, fields, docs), http.StatusConflict)

	mustStatus(t, env.doAdmin(t, http.MethodPatch, "/api/verifications/institute/"+instID+"/approve", testAdminKey), http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/verifications/institute/me", token, nil)
	mustStatus(t, w, http.StatusOK)
	decode(t, w, &status)
	if !status.Verified || status.Status != models.VerificationApproved {
		t.Fatalf("post-approval status = %+v", status)
	}

	var n models.Notification
	if err := env.db.Where("receiver_id = ? AND title = ?", instID, "Registration Verification Approved").
		First(&n).Error; err != nil {
		t.Fatalf("approval notification missing: %v", err)
	}
}
