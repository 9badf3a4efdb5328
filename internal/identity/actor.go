package identity

import "github.com/medhire/medhire-backend/internal/models"

// Kind is the capability classification of an authenticated identity.
// Every authorization check consumes this instead of comparing raw
// role strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindUser
	KindInstitute
)

type Actor struct {
	ID   string
	Role string
	Kind Kind
}

// Classify maps a role string to its actor kind.
func Classify(role string) Kind {
	switch role {
	case models.InstituteRoleHospital, models.InstituteRoleClinic,
		models.InstituteRoleLab, models.InstituteRolePharmacy,
		models.ReceiverInstitute:
		return KindInstitute
	case models.UserRoleDoctor, models.UserRoleNurse,
		models.UserRoleStudent, models.UserRoleOther,
		models.ReceiverUser:
		return KindUser
	}
	return KindUnknown
}

// ReceiverRole is the notification addressing role for this actor.
func (a Actor) ReceiverRole() string {
	if a.Kind == KindInstitute {
		return models.ReceiverInstitute
	}
	return models.ReceiverUser
}
