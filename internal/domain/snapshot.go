package domain

import "sort"

// LatestDate returns the maximum date in obs, or the zero Date when obs is empty.
func LatestDate(obs []Observation) Date {
	var latest Date
	for _, o := range obs {
		if latest.IsZero() || latest.Before(o.Date) {
			latest = o.Date
		}
	}
	return latest
}

// groupKey is the (code, country, display-name) grouping of the snapshot.
// matched distinguishes a nil code from an empty one.
type groupKey struct {
	matched bool
	code    string
	country string
	display string
}

// LatestSnapshot selects the confirmed observations of the latest date,
// left-joins them to codes by Country/Region, sums confirmed per
// (code, country, display name) and ranks the result by confirmed,
// descending. Ties keep first-seen order.
//
// Countries missing from codes are kept with nil Code and DisplayName.
func LatestSnapshot(confirmed []Observation, codes CountryCodes) []SnapshotRow {
	latest := LatestDate(confirmed)
	if latest.IsZero() {
		return nil
	}

	idx := make(map[groupKey]int)
	var rows []SnapshotRow
	for _, o := range confirmed {
		if o.Date != latest {
			continue
		}
		ref, ok := codes.Lookup(o.Country)
		k := groupKey{matched: ok, country: o.Country}
		if ok {
			k.code = ref.Code
			k.display = ref.DisplayName
		}
		i, seen := idx[k]
		if !seen {
			i = len(rows)
			idx[k] = i
			row := SnapshotRow{Country: o.Country}
			if ok {
				code, display := ref.Code, ref.DisplayName
				row.Code = &code
				row.DisplayName = &display
			}
			rows = append(rows, row)
		}
		rows[i].Confirmed += o.Count
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Confirmed > rows[j].Confirmed
	})
	return rows
}

// DuplicateLatestRows counts the extra observations on the latest date that
// share a (province, country) key with an earlier one. LatestSnapshot sums
// such duplicates, which is only correct when they are additive.
func DuplicateLatestRows(confirmed []Observation) int {
	latest := LatestDate(confirmed)
	seen := make(map[locationKey]bool)
	dups := 0
	for _, o := range confirmed {
		if o.Date != latest {
			continue
		}
		k := locationKey{province: o.Province, country: o.Country}
		if seen[k] {
			dups++
			continue
		}
		seen[k] = true
	}
	return dups
}
