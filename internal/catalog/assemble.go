package catalog

import (
	"sort"

	"github.com/zaqqye/app_catalog/internal/models"
)

// Assemble merges records with a display order. Ids listed in order come first
// in that order; records never mentioned follow in their original order.
// Unknown ids in order are skipped and duplicate record ids keep the first
// occurrence, so every id appears exactly once.
func Assemble(records []models.AppRecord, order []string) []models.AppRecord {
	unique := dedupe(records)
	byID := make(map[string]models.AppRecord, len(unique))
	for _, r := range unique {
		byID[r.ID] = r
	}

	out := make([]models.AppRecord, 0, len(unique))
	for _, id := range order {
		r, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, r)
		delete(byID, id)
	}
	for _, r := range unique {
		if _, ok := byID[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// DerivedOrder is the fallback order used when no order list has been
// persisted: legacy order field ascending (missing counts as 0), then id.
func DerivedOrder(records []models.AppRecord) []string {
	unique := dedupe(records)
	sorted := make([]models.AppRecord, len(unique))
	copy(sorted, unique)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := legacyOrder(sorted[i]), legacyOrder(sorted[j])
		if oi != oj {
			return oi < oj
		}
		return sorted[i].ID < sorted[j].ID
	})
	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.ID
	}
	return ids
}

func legacyOrder(r models.AppRecord) int {
	if r.Order == nil {
		return 0
	}
	return *r.Order
}

func dedupe(records []models.AppRecord) []models.AppRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.AppRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
