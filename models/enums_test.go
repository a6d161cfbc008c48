package models

import "testing"

func TestImportStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to ImportStatus
	}{
		{ImportStatusPending, ImportStatusRunning},
		{ImportStatusPending, ImportStatusFailed},
		{ImportStatusRunning, ImportStatusStaged},
		{ImportStatusRunning, ImportStatusCompleted},
		{ImportStatusRunning, ImportStatusFailed},
		{ImportStatusStaged, ImportStatusCompleted},
		{ImportStatusStaged, ImportStatusFailed},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to ImportStatus
	}{
		{ImportStatusCompleted, ImportStatusRunning},
		{ImportStatusCompleted, ImportStatusFailed},
		{ImportStatusFailed, ImportStatusRunning},
		{ImportStatusStaged, ImportStatusRunning},
		{ImportStatusRunning, ImportStatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestParseImportMode(t *testing.T) {
	for _, in := range []string{"full", "FULL", " Full "} {
		mode, err := ParseImportMode(in)
		if err != nil || mode != ImportModeFull {
			t.Errorf("ParseImportMode(%q) = %s, %v", in, mode, err)
		}
	}
	if _, err := ParseImportMode("partial"); err == nil {
		t.Error("unknown mode must be rejected")
	}
}
