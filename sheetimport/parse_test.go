package sheetimport

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		// Day-first wins when both readings are possible.
		{"03/04/2024", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
		// Month-first is the fallback when day-first cannot parse.
		{"04/13/2024", time.Date(2024, 4, 13, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDateSerial(t *testing.T) {
	got, err := ParseDate("45000")
	if err != nil {
		t.Fatalf("ParseDate(45000): %v", err)
	}
	want := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(45000) = %v, want %v", got, want)
	}

	// Fractional serials carry a time-of-day component that is dropped.
	got, err = ParseDate("45000.75")
	if err != nil {
		t.Fatalf("ParseDate(45000.75): %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("ParseDate(45000.75) = %v, want %v", got, want)
	}
}

func TestParseDateRejectsOutOfWindowSerials(t *testing.T) {
	for _, in := range []string{"40000", "50000", "123", "99999", "0"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", in)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-40", "15.03.2024"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", in)
		}
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"500", "500"},
		{"1.234,56", "1234.56"},
		{"THB 1.500", "1500"},
		{"THB  - 250", "-250"},
		{"THB -250", "-250"},
		{"-75,5", "-75.5"},
		{"  1.000.000  ", "1000000"},
	}
	for _, tc := range cases {
		got := ParseNumeric(tc.in)
		if got == nil {
			t.Fatalf("ParseNumeric(%q) = nil, want %s", tc.in, tc.want)
		}
		if got.String() != tc.want {
			t.Errorf("ParseNumeric(%q) = %s, want %s", tc.in, got.String(), tc.want)
		}
	}
}

func TestParseNumericNilCases(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1,2,3", "THB", "-"} {
		if got := ParseNumeric(in); got != nil {
			t.Errorf("ParseNumeric(%q) = %s, want nil", in, got.String())
		}
	}
}

func TestExtractStaffNumPrefix(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"512-JOY", intPtr(512)},
		{"512 - JOY", intPtr(512)},
		{"512JOY", intPtr(512)},
		{"7", intPtr(7)},
		{"JOY", nil},
		{"", nil},
		{"-512", nil},
	}
	for _, tc := range cases {
		got := ExtractStaffNumPrefix(tc.in)
		if !intPtrEqual(got, tc.want) {
			t.Errorf("ExtractStaffNumPrefix(%q) = %v, want %v", tc.in, fmtIntPtr(got), fmtIntPtr(tc.want))
		}
	}
}

func TestParseAgentLabel(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"AGENT #7", intPtr(7)},
		{"#12", intPtr(12)},
		{"agent 3", intPtr(3)},
		{"7", intPtr(7)},
		{"none", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := ParseAgentLabel(tc.in)
		if !intPtrEqual(got, tc.want) {
			t.Errorf("ParseAgentLabel(%q) = %v, want %v", tc.in, fmtIntPtr(got), fmtIntPtr(tc.want))
		}
	}
}

func intPtr(v int) *int { return &v }

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtIntPtr(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
