package sheetimport

import (
	"sort"

	"bitbucket.org/digitalshadow/shadow_backend/models"
)

// AgentDerivation carries everything the agent step computes for one row.
type AgentDerivation struct {
	StaffNumPrefix *int
	LabelAgentId   *int
	AgentIdDerived *int
	AgentMismatch  bool
}

// DeriveAgent resolves the agent for a row two ways: from the free-form
// agent cell and from the configured prefix ranges for the row's bar. The
// two sources are recorded independently; AgentMismatch is set only when
// both resolved and disagree. A row matching no rule is not a mismatch.
//
// Rules are evaluated ordered by range start then id, first match wins, so
// derivation stays deterministic even if overlapping ranges ever reach the
// database.
func DeriveAgent(rules []models.AgentRangeRule, bar, staffId string, agentLabel *string) AgentDerivation {
	d := AgentDerivation{
		StaffNumPrefix: ExtractStaffNumPrefix(staffId),
	}
	if agentLabel != nil {
		d.LabelAgentId = ParseAgentLabel(*agentLabel)
	}

	if d.StaffNumPrefix != nil {
		ordered := make([]models.AgentRangeRule, len(rules))
		copy(ordered, rules)
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].RangeStart != ordered[j].RangeStart {
				return ordered[i].RangeStart < ordered[j].RangeStart
			}
			return ordered[i].ID < ordered[j].ID
		})

		prefix := *d.StaffNumPrefix
		for _, rule := range ordered {
			if rule.Bar != bar {
				continue
			}
			if prefix >= rule.RangeStart && prefix <= rule.RangeEnd {
				agentId := rule.AgentId
				d.AgentIdDerived = &agentId
				break
			}
		}
	}

	if d.LabelAgentId != nil && d.AgentIdDerived != nil && *d.LabelAgentId != *d.AgentIdDerived {
		d.AgentMismatch = true
	}

	return d
}

// RuleRangesOverlap reports whether two rules for the same bar cover any
// common prefix. Rules for different bars never conflict.
func RuleRangesOverlap(a, b models.AgentRangeRule) bool {
	if a.Bar != b.Bar {
		return false
	}
	return a.RangeStart <= b.RangeEnd && b.RangeStart <= a.RangeEnd
}
