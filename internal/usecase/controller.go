package usecase

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"MarketBoard/internal/domain/models"
	svccache "MarketBoard/internal/service/cache"
	"MarketBoard/internal/services/analytics"
	pkgcache "MarketBoard/pkg/cache"
)

// Table columns accepted by SortBy.
const (
	ColumnSymbol      = "symbol"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnVolume      = "volume"
	ColumnVariation   = "variation"
	ColumnAmount      = "amount"
)

// ViewController owns the transient selection state and derives table views
// from the current instrument set. State lives in memory only; a restart
// resets it to the default view.
type ViewController struct {
	mu          sync.RWMutex
	state       models.SelectionState
	instruments []models.Instrument
	version     uint64
	loc         *time.Location
	views       *svccache.TTLCache
	viewTTL     time.Duration
}

// NewViewController creates a controller with the default selection state.
// loc is the exchange location used for calendar-day comparisons.
func NewViewController(loc *time.Location, viewTTL time.Duration) *ViewController {
	if loc == nil {
		loc = time.UTC
	}
	return &ViewController{
		state:   models.NewSelectionState(),
		loc:     loc,
		views:   svccache.NewTTLCache(),
		viewTTL: viewTTL,
	}
}

// SetInstruments replaces the dataset. Derived views are invalidated; the
// selection state is kept so a refresh does not reset the user's view.
func (c *ViewController) SetInstruments(instruments []models.Instrument) {
	c.mu.Lock()
	c.instruments = instruments
	c.version++
	c.mu.Unlock()
	c.views.Purge()
}

// Search sets the search term. Matching is case-insensitive on symbol and
// description.
func (c *ViewController) Search(term string) {
	c.mu.Lock()
	c.state.SearchTerm = strings.TrimSpace(term)
	c.mu.Unlock()
}

// SetFilter restricts the table to gainers or losers. Unknown values fall
// back to showing everything.
func (c *ViewController) SetFilter(f models.GainLossFilter) {
	switch f {
	case models.FilterGainers, models.FilterLosers:
	default:
		f = models.FilterAll
	}
	c.mu.Lock()
	c.state.Filter = f
	c.mu.Unlock()
}

// SortBy sorts on a column. Sorting the already-active column flips the
// direction; a new column starts ascending.
func (c *ViewController) SortBy(column string) {
	switch column {
	case ColumnSymbol, ColumnDescription, ColumnPrice, ColumnVolume, ColumnVariation, ColumnAmount:
	default:
		return
	}
	c.mu.Lock()
	if c.state.SortColumn == column {
		if c.state.SortDirection == models.SortAsc {
			c.state.SortDirection = models.SortDesc
		} else {
			c.state.SortDirection = models.SortAsc
		}
	} else {
		c.state.SortColumn = column
		c.state.SortDirection = models.SortAsc
	}
	c.mu.Unlock()
}

// SelectSymbol toggles a symbol in the selection.
func (c *ViewController) SelectSymbol(symbol string) {
	c.mu.Lock()
	if _, ok := c.state.SelectedSymbols[symbol]; ok {
		delete(c.state.SelectedSymbols, symbol)
	} else {
		c.state.SelectedSymbols[symbol] = struct{}{}
	}
	c.mu.Unlock()
}

// SelectSymbols replaces the selection wholesale.
func (c *ViewController) SelectSymbols(symbols []string) {
	sel := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if s != "" {
			sel[s] = struct{}{}
		}
	}
	c.mu.Lock()
	c.state.SelectedSymbols = sel
	c.mu.Unlock()
}

// ClearSelection returns to the all-instruments view.
func (c *ViewController) ClearSelection() {
	c.mu.Lock()
	c.state.SelectedSymbols = make(map[string]struct{})
	c.mu.Unlock()
}

// SetDateRange sets the inclusive day window. Reversed bounds are swapped
// rather than rejected.
func (c *ViewController) SetDateRange(r models.DateRange) {
	c.mu.Lock()
	c.state.Range = r.Normalized()
	c.mu.Unlock()
}

// ClearDateRange removes the day window.
func (c *ViewController) ClearDateRange() {
	c.mu.Lock()
	c.state.Range = models.DateRange{}
	c.mu.Unlock()
}

// State returns a copy of the current selection state.
func (c *ViewController) State() models.SelectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := c.state
	sel := make(map[string]struct{}, len(st.SelectedSymbols))
	for k := range st.SelectedSymbols {
		sel[k] = struct{}{}
	}
	st.SelectedSymbols = sel
	return st
}

// Mode returns the presentation mode derived from the selection.
func (c *ViewController) Mode() models.ViewMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Mode()
}

// Instruments returns the full current dataset.
func (c *ViewController) Instruments() []models.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instruments
}

// SelectedInstruments returns the instruments in scope for the current
// mode, with histories narrowed to the active date range. Instruments
// whose history ends up empty are dropped.
func (c *ViewController) SelectedInstruments() []models.Instrument {
	c.mu.RLock()
	state := c.state
	instruments := c.instruments
	loc := c.loc
	c.mu.RUnlock()
	return ScopeInstruments(state, instruments, loc)
}

// View computes the table for the current state, serving from the view
// cache when the state and dataset are unchanged.
func (c *ViewController) View() models.TableView {
	c.mu.RLock()
	state := c.state
	instruments := c.instruments
	version := c.version
	loc := c.loc
	c.mu.RUnlock()

	key := pkgcache.GenerateKey("view", pkgcache.HashKey(strconv.FormatUint(version, 10)+"|"+state.Hash()))
	if v, ok := c.views.Get(key); ok {
		if tv, ok := v.(models.TableView); ok {
			return tv
		}
	}

	tv := ComputeView(state, instruments, loc)
	c.views.Set(key, tv, c.viewTTL)
	return tv
}

// ScopeInstruments applies selection and date range to the dataset.
func ScopeInstruments(state models.SelectionState, instruments []models.Instrument, loc *time.Location) []models.Instrument {
	var selected []models.Instrument
	switch mode := state.Mode().(type) {
	case models.SingleMode:
		for _, m := range instruments {
			if m.Symbol == mode.Symbol {
				selected = append(selected, m)
			}
		}
	case models.MultiMode:
		want := make(map[string]struct{}, len(mode.Symbols))
		for _, s := range mode.Symbols {
			want[s] = struct{}{}
		}
		for _, m := range instruments {
			if _, ok := want[m.Symbol]; ok {
				selected = append(selected, m)
			}
		}
	default:
		selected = instruments
	}

	out := make([]models.Instrument, 0, len(selected))
	for _, m := range selected {
		hist := analytics.FilterRange(m.History, state.Range, loc)
		if len(hist) == 0 {
			continue
		}
		m.History = hist
		out = append(out, m)
	}
	return out
}

// ComputeView derives the table rows for a selection state: scope the
// instruments, take each latest record, then apply search, gain/loss
// filter and sort. The function is pure so views can be cached by
// state hash.
func ComputeView(state models.SelectionState, instruments []models.Instrument, loc *time.Location) models.TableView {
	scoped := ScopeInstruments(state, instruments, loc)

	rows := make([]models.TableRow, 0, len(scoped))
	term := strings.ToLower(state.SearchTerm)
	for _, m := range scoped {
		last, ok := m.LastRecord()
		if !ok {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(m.Symbol), term) &&
			!strings.Contains(strings.ToLower(m.Description), term) {
			continue
		}
		switch state.Filter {
		case models.FilterGainers:
			if last.RelativeVariation <= 0 {
				continue
			}
		case models.FilterLosers:
			if last.RelativeVariation >= 0 {
				continue
			}
		}
		rows = append(rows, models.TableRow{
			Symbol:      m.Symbol,
			Description: m.Description,
			Last:        last,
		})
	}

	sortRows(rows, state.SortColumn, state.SortDirection)
	return models.TableView{Rows: rows, Total: len(rows)}
}

func sortRows(rows []models.TableRow, column string, dir models.SortDirection) {
	if column == "" {
		return
	}
	less := func(a, b models.TableRow) bool {
		switch column {
		case ColumnDescription:
			return a.Description < b.Description
		case ColumnPrice:
			return a.Last.Price < b.Last.Price
		case ColumnVolume:
			return a.Last.Volume < b.Last.Volume
		case ColumnVariation:
			return a.Last.RelativeVariation < b.Last.RelativeVariation
		case ColumnAmount:
			return a.Last.EffectiveAmount < b.Last.EffectiveAmount
		default:
			return a.Symbol < b.Symbol
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == models.SortDesc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
