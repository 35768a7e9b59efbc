package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func testInstrument(symbol, desc string, price, relVar float64, volume int64) models.Instrument {
	return models.Instrument{
		Symbol:      symbol,
		Description: desc,
		History: []models.HistoryRecord{{
			Price:             price,
			RelativeVariation: relVar,
			Volume:            volume,
			EffectiveAmount:   price * float64(volume),
			MarketTime:        "10:00",
			Timestamp:         time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
		}},
	}
}

func testDataset() []models.Instrument {
	return []models.Instrument{
		testInstrument("BNC", "Banco Nacional", 120, 1.5, 5000),
		testInstrument("TDV", "Telefonos CA", 80, -2.1, 12000),
		testInstrument("MVZ", "Manufacturas del Valle", 45, 0.8, 300),
		testInstrument("FNC", "Fondo Nacional", 200, 0, 900),
	}
}

func newController(t *testing.T) *ViewController {
	t.Helper()
	c := NewViewController(time.UTC, time.Minute)
	c.SetInstruments(testDataset())
	return c
}

func symbols(tv models.TableView) []string {
	out := make([]string, 0, len(tv.Rows))
	for _, r := range tv.Rows {
		out = append(out, r.Symbol)
	}
	return out
}

func TestDefaultViewShowsEverything(t *testing.T) {
	c := newController(t)
	tv := c.View()
	assert.Equal(t, 4, tv.Total)
	assert.Equal(t, []string{"BNC", "TDV", "MVZ", "FNC"}, symbols(tv))
}

func TestSearchMatchesSymbolAndDescription(t *testing.T) {
	c := newController(t)

	c.Search("tdv")
	assert.Equal(t, []string{"TDV"}, symbols(c.View()))

	c.Search("nacional")
	assert.Equal(t, []string{"BNC", "FNC"}, symbols(c.View()))

	c.Search("")
	assert.Equal(t, 4, c.View().Total)
}

func TestGainLossFilter(t *testing.T) {
	c := newController(t)

	c.SetFilter(models.FilterGainers)
	assert.Equal(t, []string{"BNC", "MVZ"}, symbols(c.View()))

	c.SetFilter(models.FilterLosers)
	assert.Equal(t, []string{"TDV"}, symbols(c.View()))

	// Zero variation belongs to neither bucket.
	c.SetFilter(models.FilterAll)
	assert.Equal(t, 4, c.View().Total)

	// Unknown filter values do not wedge the table.
	c.SetFilter(models.GainLossFilter("sideways"))
	assert.Equal(t, 4, c.View().Total)
}

func TestSortToggles(t *testing.T) {
	c := newController(t)

	c.SortBy(ColumnPrice)
	assert.Equal(t, []string{"MVZ", "TDV", "BNC", "FNC"}, symbols(c.View()))

	c.SortBy(ColumnPrice)
	assert.Equal(t, []string{"FNC", "BNC", "TDV", "MVZ"}, symbols(c.View()))

	c.SortBy(ColumnVolume)
	st := c.State()
	assert.Equal(t, ColumnVolume, st.SortColumn)
	assert.Equal(t, models.SortAsc, st.SortDirection)
	assert.Equal(t, []string{"MVZ", "FNC", "BNC", "TDV"}, symbols(c.View()))

	// Unknown columns are ignored.
	c.SortBy("sparkline")
	assert.Equal(t, ColumnVolume, c.State().SortColumn)
}

func TestSelectionTogglesAndModes(t *testing.T) {
	c := newController(t)
	require.IsType(t, models.AllMode{}, c.Mode())

	c.SelectSymbol("BNC")
	require.IsType(t, models.SingleMode{}, c.Mode())
	assert.Equal(t, []string{"BNC"}, symbols(c.View()))

	c.SelectSymbol("TDV")
	require.IsType(t, models.MultiMode{}, c.Mode())
	assert.Equal(t, []string{"BNC", "TDV"}, symbols(c.View()))

	// Toggling an already-selected symbol removes it.
	c.SelectSymbol("BNC")
	assert.Equal(t, []string{"TDV"}, symbols(c.View()))

	c.ClearSelection()
	require.IsType(t, models.AllMode{}, c.Mode())
	assert.Equal(t, 4, c.View().Total)
}

func TestDateRangeSwapsReversedBounds(t *testing.T) {
	c := NewViewController(time.UTC, time.Minute)

	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	m := models.Instrument{Symbol: "BNC", Description: "Banco Nacional"}
	for d := 9; d <= 12; d++ {
		m.History = append(m.History, models.HistoryRecord{
			Price:     float64(100 + d),
			Timestamp: day(d).Add(10 * time.Hour).Format(time.RFC3339),
		})
	}
	c.SetInstruments([]models.Instrument{m})

	start, end := day(11), day(10)
	c.SetDateRange(models.DateRange{Start: &start, End: &end})

	tv := c.View()
	require.Equal(t, 1, tv.Total)
	assert.Equal(t, float64(111), tv.Rows[0].Last.Price)

	scoped := c.SelectedInstruments()
	require.Len(t, scoped, 1)
	assert.Len(t, scoped[0].History, 2)

	// A window with no matching days hides the instrument entirely.
	start, end = day(1), day(2)
	c.SetDateRange(models.DateRange{Start: &start, End: &end})
	assert.Equal(t, 0, c.View().Total)

	c.ClearDateRange()
	assert.Equal(t, 1, c.View().Total)
}

func TestEmptyHistoryExcludedSilently(t *testing.T) {
	c := NewViewController(time.UTC, time.Minute)
	data := testDataset()
	data = append(data, models.Instrument{Symbol: "NIL", Description: "Sin datos"})
	c.SetInstruments(data)

	tv := c.View()
	assert.Equal(t, 4, tv.Total)
	assert.NotContains(t, symbols(tv), "NIL")
}

func TestViewCacheInvalidatedOnNewData(t *testing.T) {
	c := newController(t)
	assert.Equal(t, 4, c.View().Total)

	c.SetInstruments(testDataset()[:2])
	assert.Equal(t, 2, c.View().Total)
}

func TestStateReturnsCopy(t *testing.T) {
	c := newController(t)
	c.SelectSymbol("BNC")

	st := c.State()
	st.SelectedSymbols["TDV"] = struct{}{}

	require.IsType(t, models.SingleMode{}, c.Mode())
}

func TestComputeViewIsPure(t *testing.T) {
	data := testDataset()
	state := models.NewSelectionState()
	state.SortColumn = ColumnSymbol

	first := ComputeView(state, data, time.UTC)
	second := ComputeView(state, data, time.UTC)
	assert.Equal(t, fmt.Sprint(first), fmt.Sprint(second))
	assert.Equal(t, []string{"BNC", "FNC", "MVZ", "TDV"}, symbols(first))
}
