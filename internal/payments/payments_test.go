package payments

import (
	"context"
	"testing"
)

func TestValidAmount(t *testing.T) {
	cases := []struct {
		amount int64
		want   bool
	}{
		{0, true},
		{1, true},
		{MaxTopUpAmount, true},
		{MaxTopUpAmount + 1, false},
		{-1, false},
	}
	for _, tc := range cases {
		if got := ValidAmount(tc.amount); got != tc.want {
			t.Errorf("ValidAmount(%d) = %v, want %v", tc.amount, got, tc.want)
		}
	}
}

func TestReferenceGeneratorUniqueReferences(t *testing.T) {
	gen := ReferenceGenerator{}
	ctx := context.Background()

	a, err := gen.NewForm(ctx, 7, 500)
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}
	b, err := gen.NewForm(ctx, 7, 500)
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}
	if a.Reference == "" || a.Reference == b.Reference {
		t.Errorf("references not unique: %q vs %q", a.Reference, b.Reference)
	}
	if a.UserID != 7 || a.Amount != 500 {
		t.Errorf("form = %+v", a)
	}
}
