package sheetimport

import (
	"testing"
)

func TestRowHashStableAndSensitive(t *testing.T) {
	cells := []string{"MANDARIN", "2024-03-15", "AGENT #7", "512-JOY", "dancer", "15.000"}

	a := RowHash(Normalize(cells))
	b := RowHash(Normalize(cells))
	if a != b {
		t.Error("same cells must produce the same row hash")
	}
	if len(a) != 64 {
		t.Errorf("row hash length = %d, want 64 hex chars", len(a))
	}

	changed := make([]string, len(cells))
	copy(changed, cells)
	changed[5] = "16.000"
	if RowHash(Normalize(changed)) == a {
		t.Error("changing a cell must change the row hash")
	}
}

func TestRowHashIgnoresSurroundingWhitespace(t *testing.T) {
	a := RowHash(Normalize([]string{"MANDARIN", "2024-03-15"}))
	b := RowHash(Normalize([]string{"  MANDARIN  ", " 2024-03-15 "}))
	if a != b {
		t.Error("trimming must happen before hashing")
	}
}

func TestRowHashDistinguishesShiftedColumns(t *testing.T) {
	// The same value in a different column is a different row.
	a := RowHash(Normalize([]string{"X", ""}))
	b := RowHash(Normalize([]string{"", "X"}))
	if a == b {
		t.Error("column position must contribute to the row hash")
	}
}

func TestBusinessKeyStable(t *testing.T) {
	a := BusinessKey("MANDARIN", "2024-03-15", "512-JOY", 7)
	b := BusinessKey("MANDARIN", "2024-03-15", "512-JOY", 7)
	if a != b {
		t.Error("business key must be deterministic")
	}
	if BusinessKey("MANDARIN", "2024-03-15", "512-JOY", 8) == a {
		t.Error("sheet row number must contribute to the business key")
	}
	if BusinessKey("SIAM", "2024-03-15", "512-JOY", 7) == a {
		t.Error("bar must contribute to the business key")
	}
}

func TestChecksumOrderIndependent(t *testing.T) {
	hashes := []string{"ccc", "aaa", "bbb"}
	reversed := []string{"bbb", "aaa", "ccc"}

	if Checksum(hashes) != Checksum(reversed) {
		t.Error("checksum must not depend on row order")
	}
	if Checksum(hashes) == Checksum([]string{"aaa", "bbb"}) {
		t.Error("checksum must depend on the full hash set")
	}

	// Input slice is left untouched.
	if hashes[0] != "ccc" {
		t.Error("Checksum must not mutate its input")
	}
}
