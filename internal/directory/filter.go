// Package directory normalizes directory filter state into the query
// parameters the artist listing endpoint accepts. It is the server-side twin
// of the frontend's filter store, so both sides agree on the wire format.
package directory

import (
	"strconv"
	"strings"
)

// SearchTable is the column the free-text search runs against.
const SearchTable = "Author_Main.Author"

// AllSentinel is the filter value meaning "no filter".
const AllSentinel = "全部"

// dayLabels maps the exhibition-day labels to their query values. Anything
// not in the table (including the all-sentinel) normalizes to empty.
var dayLabels = map[string]string{
	"第一天": "day1",
	"第二天": "day2",
	"第三天": "day3",
}

// FilterState is the raw directory filter selection.
type FilterState struct {
	Day    string
	Search string
	Sort   string
	Tag    string
	Page   int
}

// FetchParams are the normalized query parameters. Empty string means the
// parameter is absent.
type FetchParams struct {
	Page        string
	Sort        string
	Search      string
	Tag         string
	Day         string
	SearchTable string
}

// Normalize maps a filter state to fetch parameters:
// page is stringified, sort passes through, empty search is dropped, the tag
// list is parsed and re-joined, and day goes through the fixed label table.
func Normalize(f FilterState) FetchParams {
	params := FetchParams{
		Page:        strconv.Itoa(f.Page),
		Sort:        f.Sort,
		Search:      f.Search,
		SearchTable: SearchTable,
	}

	if tags := ParseTagList(f.Tag); len(tags) > 0 {
		params.Tag = strings.Join(tags, ",")
	}

	params.Day = dayLabels[f.Day]

	return params
}

// ParseTagList splits a comma-separated tag selection, trimming each entry
// and dropping empties and the all-sentinel.
func ParseTagList(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == AllSentinel {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}
