// Package domain models the Johns Hopkins CSSE COVID-19 time-series data and
// the dashboard values derived from it.
//
// # Data Source
//
// The three global time-series files are published in the CSSEGISandData
// COVID-19 repository under csse_covid_19_data/csse_covid_19_time_series/:
//
//	time_series_covid19_confirmed_global.csv
//	time_series_covid19_deaths_global.csv
//	time_series_covid19_recovered_global.csv
//
// Each file is a wide table: one row per (Province/State, Country/Region),
// four identifying columns followed by one cumulative count column per day.
//
//	Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,...
//	,Afghanistan,33.93911,67.709953,0,0,...
//	Australian Capital Territory,Australia,-35.4735,149.0124,0,0,...
//
// The three files are maintained independently. Their date columns and
// location rows are not guaranteed to line up (recoveries stopped being
// reported per province for several countries, for example).
//
// # Conventions
//
// Dates:
//
//	Headers use US M/D/YY notation ("3/9/21"). ISO YYYY-MM-DD headers are
//	also accepted. Dates carry no time of day and are modeled as [Date].
//
// Province/State:
//
//	Empty for countries reported as a single row. Several countries (France,
//	United Kingdom, Netherlands, Denmark) report overseas territories as
//	extra rows under the same Country/Region; China, Australia and Canada
//	report per province.
//
// Lat/Long:
//
//	Parsed as opaque strings and never used downstream.
//
// Counts:
//
//	Cumulative non-negative integers. Empty cells are read as zero. All
//	arithmetic is int64.
//
// # Country Codes
//
// The country-code reference is a small local CSV with three columns:
//
//	Codes,COVID-19,Names
//	FRA,France,France
//	KOR,"Korea, South",South Korea
//
// Codes is the ISO 3166-1 alpha-3 code used by the choropleth, COVID-19 is
// the Country/Region spelling exactly as it appears upstream, and Names is the
// human-readable display name. The join between the two is plain string
// equality on the upstream spelling; a miss leaves code and display name nil
// rather than failing (see [LatestSnapshot]).
//
// # Derived Values
//
// All derived values are computed once by [NewDashboard] and never mutated:
//
//	DailyTotals     inner join of the three categories, summed per day
//	LatestSnapshot  latest confirmed day, joined to codes, grouped, ranked
//	SummaryFacts    last update date and total confirmed
//	SummaryTable    (country, confirmed) projection of the snapshot
//	Choropleth      code-keyed log10 feed for the map
package domain
