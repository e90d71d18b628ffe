package domain

import "testing"

func TestLocationHosts(t *testing.T) {
	loc := Location{AllowedPlans: "1 2 12"}
	if !loc.Hosts(2) {
		t.Error("Hosts(2) = false")
	}
	if !loc.Hosts(12) {
		t.Error("Hosts(12) = false")
	}
	// "1" and "2" must not match plan 12 by substring.
	if loc.Hosts(21) {
		t.Error("Hosts(21) = true")
	}
	if (Location{}).Hosts(1) {
		t.Error("empty allowed set hosts plan 1")
	}
}

func TestRatePlanPriceAndRange(t *testing.T) {
	p := RatePlan{MinSlots: 4, MaxSlots: 32, PricePerSlot: 10}
	if got := p.Price(16); got != 160 {
		t.Errorf("Price(16) = %d, want 160", got)
	}
	if !p.SlotsInRange(4) || !p.SlotsInRange(32) {
		t.Error("range bounds rejected")
	}
	if p.SlotsInRange(3) || p.SlotsInRange(33) {
		t.Error("out-of-range slots accepted")
	}
}

func TestOrderStatusHuman(t *testing.T) {
	if got := StatusProvisioning.Human(); got != "Installing" {
		t.Errorf("provisioning label = %q", got)
	}
	if got := OrderStatus("archived").Human(); got != "archived" {
		t.Errorf("unknown status label = %q", got)
	}
}

func TestOrderAddress(t *testing.T) {
	o := OrderWithLocation{
		Order:      Order{Port: 27015},
		LocationIP: "10.0.0.1",
	}
	if got := o.Address(); got != "10.0.0.1:27015" {
		t.Errorf("Address = %q", got)
	}
}
