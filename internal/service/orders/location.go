package orders

import (
	"github.com/hostline/hostbot/internal/domain"
)

// EligibleLocations filters active locations whose allowed set contains the
// plan. Inactive rows never reach this point but are rechecked anyway since
// the allowed set and active flag are edited by hand.
func EligibleLocations(locations []domain.Location, planID int64) []domain.Location {
	var out []domain.Location
	for _, loc := range locations {
		if !loc.Active {
			continue
		}
		if loc.Hosts(planID) {
			out = append(out, loc)
		}
	}
	return out
}
