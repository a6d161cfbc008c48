package sheetimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// serialEpoch is the spreadsheet day-zero (the Lotus 1900 system with its
// leap-year quirk folded in, which is why it is Dec 30 and not Dec 31).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a cell into a calendar date. Explicit layouts are tried
// in order, day-first before month-first, so an ambiguous value like
// "03/04/2024" resolves as day-first. Values that look like spreadsheet
// serial numbers are accepted only inside the plausibility window
// (40000, 50000), which covers roughly 2009 through 2036.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial > 40000 && serial < 50000 {
			t := serialEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseNumeric parses a money cell into a decimal. Cells carry currency
// markers ("THB"), narrow no-break spaces, thousands dots and comma decimal
// separators; all are stripped before parsing. Returns nil for absent or
// unparseable values and never errors: the validator decides whether an
// unparseable value is reportable.
func ParseNumeric(raw string) *decimal.Decimal {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	negative := strings.HasPrefix(value, "-") ||
		strings.Contains(value, "THB  -") ||
		strings.Contains(value, "THB -")

	value = strings.ReplaceAll(value, "THB", "")
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, "\u202f", "")
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, ".", "")
	value = strings.ReplaceAll(value, ",", ".")

	if value == "" {
		return nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	if negative {
		d = d.Neg()
	}
	return &d
}

var (
	staffPrefixDashRe = regexp.MustCompile(`^(\d+)\s*-`)
	staffPrefixBareRe = regexp.MustCompile(`^(\d+)`)
	agentLabelRe      = regexp.MustCompile(`#?\s*(\d+)`)
)

// ExtractStaffNumPrefix pulls the leading numeric prefix out of a staff
// identifier like "512-JOY" or "512 JOY". Returns nil when the identifier
// does not start with digits.
func ExtractStaffNumPrefix(staffId string) *int {
	value := strings.TrimSpace(staffId)
	m := staffPrefixDashRe.FindStringSubmatch(value)
	if m == nil {
		m = staffPrefixBareRe.FindStringSubmatch(value)
	}
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// ParseAgentLabel extracts the numeric agent id out of a free-form agent
// cell such as "AGENT #7" or "#12". Returns nil when no number appears.
func ParseAgentLabel(label string) *int {
	m := agentLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
