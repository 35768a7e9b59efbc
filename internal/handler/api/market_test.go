package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
	svci18n "MarketBoard/internal/service/i18n"
	"MarketBoard/internal/usecase"
	pkgcache "MarketBoard/pkg/cache"
	"MarketBoard/pkg/format"
	"MarketBoard/pkg/logger"
)

type staticFeed struct {
	snap *models.Snapshot
}

func (f *staticFeed) Fetch(ctx context.Context) (*models.Snapshot, error) {
	return f.snap, nil
}

type nilStore struct{}

func (nilStore) Save(ctx context.Context, snap *models.Snapshot) error { return nil }
func (nilStore) Load(ctx context.Context) (*models.Snapshot, error)   { return nil, nil }
func (nilStore) Invalidate(ctx context.Context) error                 { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordRefresh(string)            {}
func (nopMetrics) RecordFetchLatency(float64)      {}
func (nopMetrics) RecordInstrumentCount(int)       {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordCacheEvent(string)         {}
func (nopMetrics) RecordTickEvent(string)          {}

func record(price, relVar float64, volume int64) models.HistoryRecord {
	return models.HistoryRecord{
		Price:             price,
		RelativeVariation: relVar,
		Volume:            volume,
		EffectiveAmount:   price * float64(volume),
		MarketTime:        "10:00",
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	snap := &models.Snapshot{
		Data: []models.Instrument{
			{Symbol: "BNC", Description: "Banco Nacional", History: []models.HistoryRecord{record(120, 1.5, 5000)}},
			{Symbol: "TDV", Description: "Telefonos CA", History: []models.HistoryRecord{record(80, -2.1, 12000)}},
		},
		Count:     2,
		FetchedAt: time.Now(),
	}
	return newTestServerWith(t, snap)
}

func newTestServerWith(t *testing.T, snap *models.Snapshot) *echo.Echo {
	t.Helper()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	ctrl := usecase.NewViewController(time.UTC, time.Minute)
	refresher := usecase.NewRefresher(&staticFeed{snap: snap}, nilStore{}, nil, nil, nopMetrics{}, ctrl, log, time.Minute, 10*time.Millisecond)
	refresher.Refresh(context.Background())

	trans, err := svci18n.New("es", pkgcache.NewMemoryCache())
	require.NoError(t, err)

	formatter, err := format.New("es-CO", "COP")
	require.NoError(t, err)

	h := NewMarketHandler(log, ctrl, refresher, nil, nil, trans, formatter, time.UTC)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestTableEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec, env := doRequest(t, e, http.MethodGet, "/api/market", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, false, data["stale"])
}

func TestTableFilterAndSort(t *testing.T) {
	e := newTestServer(t)

	_, env := doRequest(t, e, http.MethodGet, "/api/market?filter=losers", "")
	data := env["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["total"])

	rows := data["rows"].([]interface{})
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "TDV", row["symbol"])
}

func TestTableRejectsBadFilter(t *testing.T) {
	e := newTestServer(t)

	// The envelope always carries HTTP 200; the payload status reports 400.
	rec, env := doRequest(t, e, http.MethodGet, "/api/market?filter=sideways", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(http.StatusBadRequest), env["status"])
}

func TestDetailNotFound(t *testing.T) {
	e := newTestServer(t)

	_, env := doRequest(t, e, http.MethodGet, "/api/market/NOPE", "")
	assert.Equal(t, float64(http.StatusNotFound), env["status"])
}

func TestDetailVolatilityUsesCondensedHistory(t *testing.T) {
	// Two intraday points on a past day condense to one record, so the
	// day's intraday swings must not inflate the estimate.
	past := func(relVar float64, hhmm string) models.HistoryRecord {
		day := time.Now().UTC().AddDate(0, 0, -2)
		return models.HistoryRecord{
			Price:             100,
			RelativeVariation: relVar,
			Volume:            10,
			MarketTime:        hhmm,
			Timestamp:         day.Format("2006-01-02T") + hhmm + ":00Z",
		}
	}
	snap := &models.Snapshot{
		Data: []models.Instrument{
			{Symbol: "AAA", Description: "Aceros Andinos", History: []models.HistoryRecord{past(0, "09:00"), past(100, "15:00")}},
		},
		Count:     1,
		FetchedAt: time.Now(),
	}
	e := newTestServerWith(t, snap)

	_, env := doRequest(t, e, http.MethodGet, "/api/market/AAA", "")
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["volatility"])

	_, env = doRequest(t, e, http.MethodGet, "/api/correlation", "")
	data = env["data"].(map[string]interface{})
	vols := data["volatility"].([]interface{})
	require.Len(t, vols, 1)
	assert.Equal(t, float64(0), vols[0])
}

func TestSummaryIsLocaleFormatted(t *testing.T) {
	e := newTestServer(t)

	_, env := doRequest(t, e, http.MethodGet, "/api/summary", "")
	data := env["data"].(map[string]interface{})

	assert.Equal(t, float64(17000), data["total_volume"])
	// es-CO groups thousands with a period.
	assert.Equal(t, "17.000", data["total_volume_display"])
	require.NotNil(t, data["top"])
	top := data["top"].(map[string]interface{})
	assert.Equal(t, "BNC", top["symbol"])
}

func TestI18nBundleAndPreference(t *testing.T) {
	e := newTestServer(t)

	_, env := doRequest(t, e, http.MethodGet, "/api/i18n/en", "")
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Stock market", data["market.title"])

	_, env = doRequest(t, e, http.MethodPut, "/api/i18n", `{"lang":"en"}`)
	assert.Equal(t, float64(http.StatusOK), env["status"])

	_, env = doRequest(t, e, http.MethodGet, "/api/i18n", "")
	data = env["data"].(map[string]interface{})
	assert.Equal(t, "en", data["current"])
}

func TestViewStateRoundTrip(t *testing.T) {
	e := newTestServer(t)

	_, env := doRequest(t, e, http.MethodPut, "/api/view", `{"toggle":"BNC","sort":"price"}`)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, "price", data["sort"])

	_, env = doRequest(t, e, http.MethodPut, "/api/view", `{"clear":true}`)
	data = env["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)

	rec, env := doRequest(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, false, data["stale"])
}
