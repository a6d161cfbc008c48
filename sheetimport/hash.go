package sheetimport

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// RowHash fingerprints the full content of a normalized row. Columns are
// folded in declaration order with absent values contributing the empty
// string, so two rows hash equal iff every cell matches.
func RowHash(row NormalizedRow) string {
	parts := make([]string, 0, len(ColumnNames))
	for _, name := range ColumnNames {
		v, _ := row.Get(name)
		parts = append(parts, fmt.Sprintf("%s:%s", name, v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// BusinessKey is the permanent identity of a fact row: bar, raw date cell,
// staff id and the sheet row number. The raw date string is used rather
// than the parsed date so that identity never depends on parser behavior.
func BusinessKey(bar, dateRaw, staffId string, sheetRowNumber int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", bar, dateRaw, staffId, sheetRowNumber)))
	return hex.EncodeToString(sum[:])
}

// Checksum condenses a whole fetch into one digest. Row hashes are sorted
// before joining so the result is order-independent.
func Checksum(rowHashes []string) string {
	sorted := make([]string, len(rowHashes))
	copy(sorted, rowHashes)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}
