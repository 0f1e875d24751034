package sheet

import "github.com/rodamidia/roda-campaign-services-backend/internal/normalize"

// RowValues projects a column-keyed canonical row onto an arbitrary header.
// Lookup is by exact column name first, then by folded key, defaulting to the
// empty string. This is what lets one driver record serialize consistently
// against admin-authored and import-inferred headers alike.
func RowValues(headers []string, row map[string]string) []string {
	folded := make(map[string]string, len(row))
	for k, v := range row {
		key := normalize.Fold(k)
		if _, ok := folded[key]; !ok {
			folded[key] = v
		}
	}

	values := make([]string, len(headers))
	for i, h := range headers {
		if v, ok := row[h]; ok {
			values[i] = v
			continue
		}
		if v, ok := folded[normalize.Fold(h)]; ok {
			values[i] = v
		}
	}
	return values
}
