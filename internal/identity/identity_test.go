package identity

import (
	"testing"

	"github.com/medhire/medhire-backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("s3cret", "user-1", models.UserRoleDoctor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	actor, err := ParseToken("s3cret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.ID != "user-1" || actor.Role != models.UserRoleDoctor || actor.Kind != KindUser {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("s3cret", "user-1", models.UserRoleDoctor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken("other", token); err == nil {
		t.Fatal("want error for wrong secret")
	}
}

func TestClassify(t *testing.T) {
	users := []string{models.UserRoleDoctor, models.UserRoleNurse, models.UserRoleStudent, models.UserRoleOther}
	for _, r := range users {
		if Classify(r) != KindUser {
			t.Errorf("Classify(%s) != KindUser", r)
		}
	}
	for _, r := range models.InstituteRoles {
		if Classify(r) != KindInstitute {
			t.Errorf("Classify(%s) != KindInstitute", r)
		}
	}
	if Classify("ADMIN") != KindUnknown {
		t.Error("Classify(ADMIN) != KindUnknown")
	}
}
