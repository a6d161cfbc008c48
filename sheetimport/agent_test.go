package sheetimport

import (
	"testing"

	"bitbucket.org/digitalshadow/shadow_backend/models"
)

func mandarinRules() []models.AgentRangeRule {
	return []models.AgentRangeRule{
		{ID: 1, Bar: "MANDARIN", AgentId: 5, RangeStart: 500, RangeEnd: 599},
		{ID: 2, Bar: "MANDARIN", AgentId: 6, RangeStart: 600, RangeEnd: 699},
		{ID: 3, Bar: "SIAM", AgentId: 9, RangeStart: 500, RangeEnd: 599},
	}
}

func TestDeriveAgentMismatch(t *testing.T) {
	label := "AGENT #7"
	d := DeriveAgent(mandarinRules(), "MANDARIN", "512-JOY", &label)

	if d.StaffNumPrefix == nil || *d.StaffNumPrefix != 512 {
		t.Errorf("StaffNumPrefix = %v, want 512", fmtIntPtr(d.StaffNumPrefix))
	}
	if d.LabelAgentId == nil || *d.LabelAgentId != 7 {
		t.Errorf("LabelAgentId = %v, want 7", fmtIntPtr(d.LabelAgentId))
	}
	if d.AgentIdDerived == nil || *d.AgentIdDerived != 5 {
		t.Errorf("AgentIdDerived = %v, want 5", fmtIntPtr(d.AgentIdDerived))
	}
	if !d.AgentMismatch {
		t.Error("label 7 vs derived 5 must be a mismatch")
	}
}

func TestDeriveAgentAgreement(t *testing.T) {
	label := "#5"
	d := DeriveAgent(mandarinRules(), "MANDARIN", "550-MAY", &label)
	if d.AgentMismatch {
		t.Error("matching label and derivation must not be a mismatch")
	}
	if d.AgentIdDerived == nil || *d.AgentIdDerived != 5 {
		t.Errorf("AgentIdDerived = %v, want 5", fmtIntPtr(d.AgentIdDerived))
	}
}

func TestDeriveAgentScopedToBar(t *testing.T) {
	d := DeriveAgent(mandarinRules(), "SIAM", "512-JOY", nil)
	if d.AgentIdDerived == nil || *d.AgentIdDerived != 9 {
		t.Errorf("AgentIdDerived = %v, want 9 (SIAM rule)", fmtIntPtr(d.AgentIdDerived))
	}
}

func TestDeriveAgentNoRuleNoMismatch(t *testing.T) {
	label := "AGENT #7"
	d := DeriveAgent(mandarinRules(), "MANDARIN", "900-ANN", &label)
	if d.AgentIdDerived != nil {
		t.Errorf("AgentIdDerived = %v, want nil (no covering range)", fmtIntPtr(d.AgentIdDerived))
	}
	if d.AgentMismatch {
		t.Error("mismatch requires both sources to resolve")
	}
}

func TestDeriveAgentNoPrefix(t *testing.T) {
	label := "AGENT #7"
	d := DeriveAgent(mandarinRules(), "MANDARIN", "JOY", &label)
	if d.StaffNumPrefix != nil {
		t.Errorf("StaffNumPrefix = %v, want nil", fmtIntPtr(d.StaffNumPrefix))
	}
	if d.AgentIdDerived != nil {
		t.Error("no prefix means no range derivation")
	}
	if d.AgentMismatch {
		t.Error("no derivation means no mismatch")
	}
}

func TestDeriveAgentDeterministicRuleOrder(t *testing.T) {
	// Overlap is rejected at configuration time; if it ever slips in, the
	// lowest range start (then lowest id) wins.
	rules := []models.AgentRangeRule{
		{ID: 2, Bar: "MANDARIN", AgentId: 8, RangeStart: 500, RangeEnd: 599},
		{ID: 1, Bar: "MANDARIN", AgentId: 5, RangeStart: 500, RangeEnd: 599},
		{ID: 3, Bar: "MANDARIN", AgentId: 4, RangeStart: 400, RangeEnd: 550},
	}
	d := DeriveAgent(rules, "MANDARIN", "512-JOY", nil)
	if d.AgentIdDerived == nil || *d.AgentIdDerived != 4 {
		t.Errorf("AgentIdDerived = %v, want 4", fmtIntPtr(d.AgentIdDerived))
	}
}

func TestRuleRangesOverlap(t *testing.T) {
	a := models.AgentRangeRule{Bar: "MANDARIN", RangeStart: 500, RangeEnd: 599}

	cases := []struct {
		b    models.AgentRangeRule
		want bool
	}{
		{models.AgentRangeRule{Bar: "MANDARIN", RangeStart: 550, RangeEnd: 650}, true},
		{models.AgentRangeRule{Bar: "MANDARIN", RangeStart: 599, RangeEnd: 700}, true},
		{models.AgentRangeRule{Bar: "MANDARIN", RangeStart: 600, RangeEnd: 700}, false},
		{models.AgentRangeRule{Bar: "MANDARIN", RangeStart: 400, RangeEnd: 499}, false},
		{models.AgentRangeRule{Bar: "SIAM", RangeStart: 500, RangeEnd: 599}, false},
	}
	for i, tc := range cases {
		if got := RuleRangesOverlap(a, tc.b); got != tc.want {
			t.Errorf("case %d: RuleRangesOverlap = %v, want %v", i, got, tc.want)
		}
	}
}
