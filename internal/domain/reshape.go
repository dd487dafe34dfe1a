package domain

import "sort"

// locationKey identifies one upstream row.
type locationKey struct {
	province string
	country  string
}

// joinKey is the shared key of the three long tables.
type joinKey struct {
	province string
	country  string
	date     Date
}

// Melt unpivots a wide table into long form, one observation per (row, date).
// Observations are emitted date-major in header order, rows in table order
// within each date. Lat and Long are dropped.
func Melt(wide WideTimeSeries) []Observation {
	out := make([]Observation, 0, len(wide.Dates)*len(wide.Rows))
	for _, d := range wide.Dates {
		for _, row := range wide.Rows {
			out = append(out, Observation{
				Province: row.Province,
				Country:  row.Country,
				Date:     d,
				Category: wide.Category,
				Count:    row.Counts[d],
			})
		}
	}
	return out
}

// Pivot rebuilds a wide table from long observations of one category.
// Rows and dates appear in first-seen order; repeated (location, date) pairs
// overwrite. Lat and Long are not recoverable and stay empty.
func Pivot(obs []Observation, category Category) WideTimeSeries {
	wide := WideTimeSeries{Category: category}
	rowIdx := make(map[locationKey]int)
	seenDate := make(map[Date]bool)

	for _, o := range obs {
		if !seenDate[o.Date] {
			seenDate[o.Date] = true
			wide.Dates = append(wide.Dates, o.Date)
		}
		k := locationKey{province: o.Province, country: o.Country}
		i, ok := rowIdx[k]
		if !ok {
			i = len(wide.Rows)
			rowIdx[k] = i
			wide.Rows = append(wide.Rows, WideRow{
				Province: o.Province,
				Country:  o.Country,
				Counts:   make(map[Date]int64),
			})
		}
		wide.Rows[i].Counts[o.Date] = o.Count
	}
	return wide
}

// DailyTotals inner-joins the three long tables on (province, country, date),
// sums each category per date and unpivots the result.
//
// A location/date survives only when all three tables carry it, so a date
// absent from any one table disappears from all three categories. Rows are
// ordered category-major (Confirmed, Deaths, Recovered) and by ascending
// date within a category.
func DailyTotals(confirmed, deaths, recovered []Observation) []DailyTotal {
	deathsByKey := indexCounts(deaths)
	recoveredByKey := indexCounts(recovered)

	type sums struct {
		confirmed, deaths, recovered int64
	}
	byDate := make(map[Date]*sums)

	for _, c := range confirmed {
		k := joinKey{province: c.Province, country: c.Country, date: c.Date}
		ds, ok := deathsByKey[k]
		if !ok {
			continue
		}
		rs, ok := recoveredByKey[k]
		if !ok {
			continue
		}
		s := byDate[c.Date]
		if s == nil {
			s = &sums{}
			byDate[c.Date] = s
		}
		// Duplicate keys fan out like a relational join: every combination
		// of matching rows contributes once.
		for _, d := range ds {
			for _, r := range rs {
				s.confirmed += c.Count
				s.deaths += d
				s.recovered += r
			}
		}
	}

	dates := make([]Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]DailyTotal, 0, len(dates)*len(Categories))
	for _, cat := range Categories {
		for _, d := range dates {
			s := byDate[d]
			var v int64
			switch cat {
			case Confirmed:
				v = s.confirmed
			case Deaths:
				v = s.deaths
			case Recovered:
				v = s.recovered
			}
			out = append(out, DailyTotal{Date: d, Category: cat, Cases: v})
		}
	}
	return out
}

func indexCounts(obs []Observation) map[joinKey][]int64 {
	idx := make(map[joinKey][]int64, len(obs))
	for _, o := range obs {
		k := joinKey{province: o.Province, country: o.Country, date: o.Date}
		idx[k] = append(idx[k], o.Count)
	}
	return idx
}
