package bot

import "testing"

func TestParseBuyPlan(t *testing.T) {
	cases := []struct {
		raw    string
		planID int64
		ok     bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"3|extra", 0, false},
	}
	for _, tc := range cases {
		p, err := ParseBuyPlan(tc.raw)
		if tc.ok != (err == nil) {
			t.Errorf("ParseBuyPlan(%q) err = %v, want ok=%v", tc.raw, err, tc.ok)
			continue
		}
		if tc.ok && p.PlanID != tc.planID {
			t.Errorf("ParseBuyPlan(%q) = %d, want %d", tc.raw, p.PlanID, tc.planID)
		}
	}
}

func TestParseTopUp(t *testing.T) {
	p, err := ParseTopUp("")
	if err != nil {
		t.Fatalf("ParseTopUp(empty): %v", err)
	}
	if p.Preset {
		t.Error("empty payload must not be a preset")
	}

	p, err = ParseTopUp("500")
	if err != nil {
		t.Fatalf("ParseTopUp(500): %v", err)
	}
	if !p.Preset || p.Amount != 500 {
		t.Errorf("ParseTopUp(500) = %+v", p)
	}

	if _, err := ParseTopUp("lots"); err == nil {
		t.Error("ParseTopUp(lots) accepted garbage")
	}
}

func TestParseCancel(t *testing.T) {
	if !ParseCancel("menu").ShowMenu {
		t.Error("ParseCancel(menu).ShowMenu = false")
	}
	if ParseCancel("").ShowMenu {
		t.Error("ParseCancel(empty).ShowMenu = true")
	}
	if ParseCancel("something").ShowMenu {
		t.Error("ParseCancel(something).ShowMenu = true")
	}
}

func TestParseManage(t *testing.T) {
	p, err := ParseManage("17")
	if err != nil {
		t.Fatalf("ParseManage(17): %v", err)
	}
	if p.OrderID != 17 {
		t.Errorf("order id = %d, want 17", p.OrderID)
	}
	for _, raw := range []string{"", "0", "-5", "nope"} {
		if _, err := ParseManage(raw); err == nil {
			t.Errorf("ParseManage(%q) accepted invalid payload", raw)
		}
	}
}
