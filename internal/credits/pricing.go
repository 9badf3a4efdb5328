package credits

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medhire/medhire-backend/internal/models"
)

// Posting cost by job role category.
var postingCosts = map[string]int{
	models.JobRoleDoctor:  50,
	models.JobRoleOther:   30,
	models.JobRoleStudent: 10,
}

// PostingCost resolves the credit cost of creating a job with the
// given role category.
func PostingCost(role string) (int, error) {
	cost, ok := postingCosts[role]
	if !ok {
		return 0, fmt.Errorf("unsupported job role: %s (supported: %s)", role, strings.Join(SupportedRoles(), ", "))
	}
	return cost, nil
}

// RenewalCost is cheaper than posting. Student postings renew for 5,
// everything else for 10. The substring match on the free-text role
// field is intentional and mirrors existing billing behavior.
func RenewalCost(role string) int {
	if strings.Contains(strings.ToLower(role), "student") {
		return 5
	}
	return 10
}

func SupportedRoles() []string {
	roles := make([]string, 0, len(postingCosts))
	for r := range postingCosts {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}
