package profiling

import (
	"fmt"
	"strings"
	"time"

	"goeda/domain/core"
	"goeda/domain/dataset"
)

// timestampLayouts are tried in order when parsing datetime cells
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ParseTimestamp parses a cell with the first matching known layout
func ParseTimestamp(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ProfileDatetime finds the earliest and latest timestamps of a column. Unparseable
// cells are listed; a column with no parseable cell carries core.ErrInsufficientData.
func ProfileDatetime(ds *dataset.Dataset, column string) (DatetimeProfile, error) {
	cells, err := ds.Column(column)
	if err != nil {
		return DatetimeProfile{}, err
	}

	profile := DatetimeProfile{Column: column}
	seenInvalid := make(map[string]bool)
	for _, cell := range cells {
		if dataset.IsMissing(cell) {
			continue
		}
		t, ok := ParseTimestamp(cell)
		if !ok {
			if !seenInvalid[cell] {
				seenInvalid[cell] = true
				profile.Invalid = append(profile.Invalid, cell)
			}
			continue
		}
		if profile.Parsed == 0 || t.Before(profile.Earliest) {
			profile.Earliest = t
		}
		if profile.Parsed == 0 || t.After(profile.Latest) {
			profile.Latest = t
		}
		profile.Parsed++
	}

	if profile.Parsed == 0 {
		profile.Err = fmt.Errorf("%w: column %q has no parseable timestamps", core.ErrInsufficientData, column)
		return profile, nil
	}
	profile.Range = profile.Latest.Sub(profile.Earliest)
	return profile, nil
}
