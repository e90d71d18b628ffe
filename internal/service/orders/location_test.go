package orders

import (
	"testing"

	"github.com/hostline/hostbot/internal/domain"
)

func TestEligibleLocations(t *testing.T) {
	locations := []domain.Location{
		{ID: 1, Name: "Moscow-1", AllowedPlans: "1 2 3", Active: true},
		{ID: 2, Name: "Frankfurt-1", AllowedPlans: "3 5 7", Active: true},
		{ID: 3, Name: "Old-DC", AllowedPlans: "1 2 3", Active: false},
		{ID: 4, Name: "Riga-1", AllowedPlans: "5", Active: true},
	}

	got := EligibleLocations(locations, 3)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("ids = %d,%d, want 1,2", got[0].ID, got[1].ID)
	}
}

func TestEligibleLocationsNone(t *testing.T) {
	locations := []domain.Location{
		{ID: 1, AllowedPlans: "1 2", Active: true},
	}
	if got := EligibleLocations(locations, 9); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
