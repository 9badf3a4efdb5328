package handlers

import (
	"net/http"
	"testing"

	"github.com/medhire/medhire-backend/internal/models"
)

func TestEducationAddAndDelete(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, models.UserRoleDoctor)

	w := env.do(t, http.MethodPost, "/api/users/me/educations", token, map[string]interface{}{
		"degree":    "MD",
		"startYear": 2016,
	})
	mustStatus(t, w, http.StatusCreated)
	var edu models.UserEducation
	decode(t, w, &edu)

	// the row must be gone, not soft-deleted out of sight
	mustStatus(t, env.do(t, http.MethodDelete, "/api/users/me/educations/"+edu.ID, token, nil), http.StatusOK)

	var count int64
	if err := env.db.Model(&models.UserEducation{}).Where("id = ?", edu.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("education rows = %d, want 0 after delete", count)
	}

	// deleting again is a plain 404
	mustStatus(t, env.do(t, http.MethodDelete, "/api/users/me/educations/"+edu.ID, token, nil), http.StatusNotFound)

	// the seeded entry from another user's scope is untouchable
	otherID, _ := env.seedUser(t, models.UserRoleNurse)
	var theirs models.UserEducation
	if err := env.db.Where("user_id = ?", otherID).First(&theirs).Error; err != nil {
		t.Fatalf("load other education: %v", err)
	}
	mustStatus(t, env.do(t, http.MethodDelete, "/api/users/me/educations/"+theirs.ID, token, nil), http.StatusNotFound)
}
