package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// GainLossFilter restricts the table to gainers or losers by latest
// relative variation.
type GainLossFilter string

const (
	FilterAll     GainLossFilter = "all"
	FilterGainers GainLossFilter = "gainers"
	FilterLosers  GainLossFilter = "losers"
)

// SortDirection orders a sorted column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DateRange is an inclusive calendar-day window. A nil bound means
// unbounded on that side.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Normalized returns the range with swapped bounds when start > end.
func (dr DateRange) Normalized() DateRange {
	if dr.Start != nil && dr.End != nil && dr.Start.After(*dr.End) {
		return DateRange{Start: dr.End, End: dr.Start}
	}
	return dr
}

// SelectionState is the transient, user-driven view state. It is owned by
// the controller and never persisted as a system of record.
type SelectionState struct {
	SelectedSymbols map[string]struct{}
	Range           DateRange
	SortColumn      string
	SortDirection   SortDirection
	Filter          GainLossFilter
	SearchTerm      string
}

// NewSelectionState returns the default state: nothing selected, no range,
// no sort, all rows.
func NewSelectionState() SelectionState {
	return SelectionState{
		SelectedSymbols: make(map[string]struct{}),
		Filter:          FilterAll,
		SortDirection:   SortAsc,
	}
}

// Hash produces a deterministic key for caching derived views.
func (s SelectionState) Hash() string {
	syms := make([]string, 0, len(s.SelectedSymbols))
	for sym := range s.SelectedSymbols {
		syms = append(syms, sym)
	}
	sort.Strings(syms)

	var from, to string
	if s.Range.Start != nil {
		from = s.Range.Start.Format("2006-01-02")
	}
	if s.Range.End != nil {
		to = s.Range.End.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s..%s|%s:%s|%s|%s",
		strings.Join(syms, ","), from, to,
		s.SortColumn, s.SortDirection, s.Filter, s.SearchTerm)
}

// Mode derives the view mode from the current selection: none selected is
// All, one is Single, more is Multiple.
func (s SelectionState) Mode() ViewMode {
	switch len(s.SelectedSymbols) {
	case 0:
		return AllMode{}
	case 1:
		for sym := range s.SelectedSymbols {
			return SingleMode{Symbol: sym}
		}
	}
	syms := make([]string, 0, len(s.SelectedSymbols))
	for sym := range s.SelectedSymbols {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return MultiMode{Symbols: syms}
}

// ViewMode is a closed variant over the three table/chart presentation
// modes. Aggregation rules differ per mode (notably price extrema), so each
// gets its own path instead of scattered conditionals.
type ViewMode interface {
	viewMode()
}

// AllMode shows every instrument.
type AllMode struct{}

// MultiMode shows an explicit multi-symbol selection.
type MultiMode struct {
	Symbols []string
}

// SingleMode focuses one instrument.
type SingleMode struct {
	Symbol string
}

func (AllMode) viewMode()    {}
func (MultiMode) viewMode()  {}
func (SingleMode) viewMode() {}

// TableRow is one rendered row of the dashboard table: the instrument plus
// its latest record.
type TableRow struct {
	Symbol      string        `json:"symbol"`
	Description string        `json:"description"`
	Last        HistoryRecord `json:"last"`
}

// TableView is the derived, filtered and sorted table.
type TableView struct {
	Rows  []TableRow `json:"rows"`
	Total int        `json:"total"`
}
