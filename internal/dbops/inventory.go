// Where: cli/internal/dbops/inventory.go
// What: Table set and row count snapshot of one database.
// Why: Compare a cloned database with its origin after create or restore.
package dbops

import (
	"fmt"
	"sort"
)

// Inventory maps schema-qualified table names to exact row counts.
type Inventory struct {
	Tables map[string]int64
}

// TableNames returns the sorted table set.
func (i Inventory) TableNames() []string {
	names := make([]string, 0, len(i.Tables))
	for name := range i.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Diff lists human-readable differences between want and got.
// An empty result means both hold the same tables with the same row counts.
func Diff(want, got Inventory) []string {
	var out []string
	for _, name := range want.TableNames() {
		gotRows, ok := got.Tables[name]
		if !ok {
			out = append(out, fmt.Sprintf("missing table %s", name))
			continue
		}
		if wantRows := want.Tables[name]; wantRows != gotRows {
			out = append(out, fmt.Sprintf("table %s: expected %d rows, got %d", name, wantRows, gotRows))
		}
	}
	for _, name := range got.TableNames() {
		if _, ok := want.Tables[name]; !ok {
			out = append(out, fmt.Sprintf("unexpected table %s", name))
		}
	}
	return out
}
