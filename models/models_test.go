package models

import (
	"testing"
)

func TestWeekSelection_TacticIDsRoundTrip(t *testing.T) {
	sel := &WeekSelection{UserID: 1, WeekStart: "2026-01-05"}

	if err := sel.EncodeTacticIDs([]uint{3, 5, 8}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	ids, err := sel.DecodeTacticIDs()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 5 || ids[2] != 8 {
		t.Errorf("ids = %v, want [3 5 8]", ids)
	}
}

func TestWeekSelection_EmptySetIsExplicit(t *testing.T) {
	// An empty selection must encode to a real empty list: a row holding []
	// means "nothing counts this week", which is different from no row at all.
	sel := &WeekSelection{UserID: 1, WeekStart: "2026-01-05"}

	if err := sel.EncodeTacticIDs(nil); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if sel.TacticIDs != "[]" {
		t.Errorf("stored payload = %q, want %q", sel.TacticIDs, "[]")
	}

	ids, err := sel.DecodeTacticIDs()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("ids = %v, want non-nil empty slice", ids)
	}
}

func TestValidTacticType(t *testing.T) {
	for _, typ := range []string{TypeDailyCheck, TypeDailyNumber, TypeDailyTime, TypeWeeklyCount, TypeWeeklyNumber} {
		if !ValidTacticType(typ) {
			t.Errorf("ValidTacticType(%q) = false", typ)
		}
	}
	if ValidTacticType("monthly_check") {
		t.Error(`ValidTacticType("monthly_check") = true`)
	}
}
