package lifecycle

import (
	"errors"
	"fmt"

	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrWrongActor        = errors.New("actor may not perform this transition")
)

// transitions is the only path between application statuses. Anything
// not listed here is rejected before any write.
var transitions = map[string][]string{
	models.StatusApplied: {
		models.StatusShortlisted,
		models.StatusNextRoundRequested,
		models.StatusInterviewScheduled,
		models.StatusRejected,
	},
	models.StatusShortlisted: {
		models.StatusNextRoundRequested,
		models.StatusInterviewScheduled,
		models.StatusRejected,
	},
	models.StatusNextRoundRequested: {
		models.StatusNextRoundAccepted,
		models.StatusNextRoundRejected,
	},
	models.StatusNextRoundAccepted: {
		models.StatusInterviewScheduled,
		models.StatusRejected,
	},
	models.StatusNextRoundRejected: {},
	models.StatusInterviewScheduled: {
		models.StatusInterviewAccepted,
		models.StatusRejected,
	},
	models.StatusInterviewAccepted: {
		models.StatusHired,
		models.StatusRejected,
	},
	models.StatusHired:    {},
	models.StatusRejected: {},
}

// actorFor names which side of the application drives each target
// status: the institute moves candidates forward, the user answers
// next-round requests and interview outcomes.
var actorFor = map[string]identity.Kind{
	models.StatusShortlisted:        identity.KindInstitute,
	models.StatusNextRoundRequested: identity.KindInstitute,
	models.StatusNextRoundAccepted:  identity.KindUser,
	models.StatusNextRoundRejected:  identity.KindUser,
	models.StatusInterviewScheduled: identity.KindInstitute,
	models.StatusInterviewAccepted:  identity.KindUser,
	models.StatusHired:              identity.KindInstitute,
	models.StatusRejected:           identity.KindInstitute,
}

// CanTransition reports whether the graph allows from → to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func Terminal(status string) bool {
	return len(transitions[status]) == 0
}

// Check validates a requested transition against the graph and the
// acting side. REJECTED is reachable by the institute from any
// non-terminal review state; the user reaches it only through
// INTERVIEW_SCHEDULED (an interview decision).
func Check(from, to string, actor identity.Kind) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	required, ok := actorFor[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, to)
	}
	if to == models.StatusRejected && from == models.StatusInterviewScheduled {
		// either side may reject at the interview stage: the user by
		// declining the offer, the institute by turning the candidate down
		if actor == identity.KindUser || actor == identity.KindInstitute {
			return nil
		}
	}
	if actor != required {
		return ErrWrongActor
	}
	return nil
}
