package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusSubmitted, StatusInProgress, true},
		{StatusInProgress, StatusResolved, true},
		{StatusSubmitted, StatusResolved, false},
		{StatusInProgress, StatusSubmitted, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusSubmitted, false},
		{StatusSubmitted, StatusSubmitted, false},
		{StatusResolved, StatusResolved, false},
		{"", StatusInProgress, false},
		{StatusSubmitted, "unknown", false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, ожидалось %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidStatusesCoverLifecycle(t *testing.T) {
	for _, status := range []string{StatusSubmitted, StatusInProgress, StatusResolved} {
		if _, ok := ValidStatuses[status]; !ok {
			t.Errorf("статус %q должен быть валидным", status)
		}
	}
	if _, ok := ValidStatuses["pending"]; ok {
		t.Errorf("статус pending не должен быть валидным")
	}
}
