package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"
	"MarketBoard/internal/service/i18n"
	"MarketBoard/internal/service/metrics"
	"MarketBoard/internal/service/ratelimit"
	"MarketBoard/internal/services/analytics"
	"MarketBoard/internal/usecase"
	"MarketBoard/pkg/format"
	xhttp "MarketBoard/pkg/http"
	xlogger "MarketBoard/pkg/logger"
	"MarketBoard/pkg/util"
)

// MarketHandler exposes the dashboard API over Echo.
type MarketHandler struct {
	logger    *xlogger.Logger
	ctrl      *usecase.ViewController
	refresher *usecase.Refresher
	collector *usecase.TickCollector
	archive   drepo.Archive
	i18n      *i18n.Service
	fmt       *format.Formatter
	loc       *time.Location
	limiter   *ratelimit.Limiter
}

func NewMarketHandler(
	logger *xlogger.Logger,
	ctrl *usecase.ViewController,
	refresher *usecase.Refresher,
	collector *usecase.TickCollector,
	archive drepo.Archive,
	trans *i18n.Service,
	formatter *format.Formatter,
	loc *time.Location,
) *MarketHandler {
	return &MarketHandler{
		logger:    logger,
		ctrl:      ctrl,
		refresher: refresher,
		collector: collector,
		archive:   archive,
		i18n:      trans,
		fmt:       formatter,
		loc:       loc,
		limiter:   ratelimit.New(),
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	metrics.Register()
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.observe, h.rateLimit)
	g.GET("/market", h.Table)
	g.GET("/market/:symbol", h.Detail)
	g.GET("/series", h.Series)
	g.GET("/ohlc/:symbol", h.OHLC)
	g.GET("/summary", h.Summary)
	g.GET("/correlation", h.Correlation)
	g.GET("/archive/:symbol", h.ArchiveQuery)
	g.GET("/view", h.ViewState)
	g.PUT("/view", h.UpdateViewState)
	g.GET("/i18n", h.Languages)
	g.GET("/i18n/:lang", h.Bundle)
	g.PUT("/i18n", h.SavePreference)
}

// observe records per-endpoint latency and error counts.
func (h *MarketHandler) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		endpoint := c.Path()
		metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil || c.Response().Status >= 500 {
			metrics.APIErrors.WithLabelValues(endpoint).Inc()
		}
		return err
	}
}

// rateLimit throttles mutating requests per client IP.
func (h *MarketHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Method == http.MethodPut {
			if !h.limiter.Allow(c.RealIP(), 10, 5) {
				return xhttp.DataResponse(c, http.StatusTooManyRequests, "too many requests")
			}
		}
		return next(c)
	}
}

// TableResponse is the rendered table plus refresh status.
type TableResponse struct {
	Rows      []models.TableRow `json:"rows"`
	Total     int               `json:"total"`
	Stale     bool              `json:"stale"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
}

func (h *MarketHandler) Table(c echo.Context) error {
	req := &models.TableRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	state := h.stateFromRequest(req)
	view := usecase.ComputeView(state, h.ctrl.Instruments(), h.loc)

	resp := &TableResponse{
		Rows:  view.Rows,
		Total: view.Total,
		Stale: h.refresher.LastError() != nil,
	}
	if snap := h.refresher.Snapshot(); snap != nil && !snap.FetchedAt.IsZero() {
		t := snap.FetchedAt
		resp.FetchedAt = &t
	}
	return xhttp.SuccessResponse(c, resp)
}

// DetailResponse is one instrument with its condensed history.
type DetailResponse struct {
	Symbol      string                 `json:"symbol"`
	Description string                 `json:"description"`
	History     []models.HistoryRecord `json:"history"`
	Volatility  float64                `json:"volatility"`
}

func (h *MarketHandler) Detail(c echo.Context) error {
	symbol := c.Param("symbol")
	for _, m := range h.ctrl.Instruments() {
		if m.Symbol != symbol {
			continue
		}
		hist := analytics.CondenseDaily(m.History, time.Now(), h.loc)
		return xhttp.SuccessResponse(c, &DetailResponse{
			Symbol:      m.Symbol,
			Description: m.Description,
			History:     hist,
			Volatility:  analytics.Volatility(hist),
		})
	}
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("symbol %q not found", symbol))
}

func (h *MarketHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	state := models.NewSelectionState()
	applySymbols(&state, req.Symbols)
	state.Range = h.parseRange(req.From, req.To)

	scoped := usecase.ScopeInstruments(state, h.ctrl.Instruments(), h.loc)
	scoped = analytics.CondenseInstruments(scoped, time.Now(), h.loc)
	aligned := analytics.AlignSeries(scoped, models.Metric(req.Metric))
	return xhttp.SuccessResponse(c, aligned)
}

func (h *MarketHandler) OHLC(c echo.Context) error {
	req := &models.OHLCRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rng := h.parseRange(req.From, req.To)
	for _, m := range h.ctrl.Instruments() {
		if m.Symbol != req.Symbol {
			continue
		}
		hist := analytics.FilterRange(m.History, rng, h.loc)
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"symbol":  m.Symbol,
			"candles": analytics.SynthesizeOHLC(hist),
		})
	}
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("symbol %q not found", req.Symbol))
}

// SummaryResponse carries the aggregate figures both raw and formatted for
// the dashboard's locale.
type SummaryResponse struct {
	TotalVolume        int64          `json:"total_volume"`
	TotalVolumeDisplay string         `json:"total_volume_display"`
	TotalAmount        float64        `json:"total_amount"`
	TotalAmountDisplay string         `json:"total_amount_display"`
	PriceMin           float64        `json:"price_min"`
	PriceMax           float64        `json:"price_max"`
	PriceRangeDisplay  string         `json:"price_range_display"`
	HasPriceRange      bool           `json:"has_price_range"`
	Top                *PerformerView `json:"top,omitempty"`
	Worst              *PerformerView `json:"worst,omitempty"`
	TopYesterday       *PerformerView `json:"top_yesterday,omitempty"`
	WorstYesterday     *PerformerView `json:"worst_yesterday,omitempty"`
}

// PerformerView is a performer with its locale-formatted variation.
type PerformerView struct {
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Variation   float64 `json:"variation"`
	Display     string  `json:"display"`
}

func (h *MarketHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	state := models.NewSelectionState()
	applySymbols(&state, req.Symbols)
	scoped := usecase.ScopeInstruments(state, h.ctrl.Instruments(), h.loc)

	resp := &SummaryResponse{
		TotalVolume: analytics.TotalVolume(scoped),
		TotalAmount: analytics.TotalAmount(scoped),
	}
	resp.TotalVolumeDisplay = h.fmt.Volume(resp.TotalVolume)
	resp.TotalAmountDisplay = h.fmt.Currency(resp.TotalAmount)

	if min, max, ok := analytics.PriceRange(scoped, state.Mode()); ok {
		resp.PriceMin, resp.PriceMax = min, max
		resp.HasPriceRange = true
		resp.PriceRangeDisplay = h.fmt.Currency(min) + " / " + h.fmt.Currency(max)
	}

	today := util.FloorDay(time.Now().In(h.loc), h.loc)
	if p, ok := analytics.TopPerformer(scoped, today, h.loc); ok {
		resp.Top = h.performerView(p)
	}
	if p, ok := analytics.WorstPerformer(scoped, today, h.loc); ok {
		resp.Worst = h.performerView(p)
	}
	yesterday := today.AddDate(0, 0, -1)
	if p, ok := analytics.TopPerformer(scoped, yesterday, h.loc); ok {
		resp.TopYesterday = h.performerView(p)
	}
	if p, ok := analytics.WorstPerformer(scoped, yesterday, h.loc); ok {
		resp.WorstYesterday = h.performerView(p)
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *MarketHandler) performerView(p analytics.Performer) *PerformerView {
	return &PerformerView{
		Symbol:      p.Symbol,
		Description: p.Description,
		Price:       p.Record.Price,
		Variation:   p.Record.RelativeVariation,
		Display:     h.fmt.Percent(p.Record.RelativeVariation),
	}
}

// CorrelationResponse is a symmetric matrix in symbol order plus each
// symbol's volatility.
type CorrelationResponse struct {
	Symbols    []string    `json:"symbols"`
	Matrix     [][]float64 `json:"matrix"`
	Volatility []float64   `json:"volatility"`
}

func (h *MarketHandler) Correlation(c echo.Context) error {
	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	state := models.NewSelectionState()
	applySymbols(&state, req.Symbols)
	scoped := usecase.ScopeInstruments(state, h.ctrl.Instruments(), h.loc)
	scoped = analytics.CondenseInstruments(scoped, time.Now(), h.loc)

	resp := &CorrelationResponse{
		Symbols:    make([]string, 0, len(scoped)),
		Matrix:     analytics.CorrelationMatrix(scoped),
		Volatility: make([]float64, 0, len(scoped)),
	}
	for _, m := range scoped {
		resp.Symbols = append(resp.Symbols, m.Symbol)
		resp.Volatility = append(resp.Volatility, analytics.Volatility(m.History))
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *MarketHandler) ArchiveQuery(c echo.Context) error {
	req := &models.ArchiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("archive is not enabled"))
	}

	from := time.Time{}
	to := time.Now()
	if t, ok := util.ParseDay(req.From, h.loc); ok {
		from = t
	}
	if t, ok := util.ParseDay(req.To, h.loc); ok {
		to = t.AddDate(0, 0, 1)
	}

	records, err := h.archive.Query(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("archive query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("archive query failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":  req.Symbol,
		"count":   len(records),
		"records": records,
	})
}

// ViewState returns the controller-owned table: the stateful counterpart of
// GET /api/market.
func (h *MarketHandler) ViewState(c echo.Context) error {
	view := h.ctrl.View()
	st := h.ctrl.State()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"rows":   view.Rows,
		"total":  view.Total,
		"search": st.SearchTerm,
		"filter": st.Filter,
		"sort":   st.SortColumn,
		"dir":    st.SortDirection,
	})
}

func (h *MarketHandler) UpdateViewState(c echo.Context) error {
	req := &models.ViewStateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Clear {
		h.ctrl.ClearSelection()
		h.ctrl.ClearDateRange()
	}
	if req.Search != nil {
		h.ctrl.Search(*req.Search)
	}
	if req.Filter != nil {
		h.ctrl.SetFilter(models.GainLossFilter(*req.Filter))
	}
	if req.Sort != nil {
		h.ctrl.SortBy(*req.Sort)
	}
	if req.Toggle != nil {
		h.ctrl.SelectSymbol(*req.Toggle)
	}
	if req.Symbols != nil {
		h.ctrl.SelectSymbols(req.Symbols)
	}
	if req.From != nil || req.To != nil {
		var from, to string
		if req.From != nil {
			from = *req.From
		}
		if req.To != nil {
			to = *req.To
		}
		h.ctrl.SetDateRange(h.parseRange(from, to))
	}
	return h.ViewState(c)
}

func (h *MarketHandler) Languages(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"languages": h.i18n.Languages(),
		"current":   h.i18n.Preference(c.Request().Context()),
	})
}

func (h *MarketHandler) Bundle(c echo.Context) error {
	req := &models.LanguageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	bundle, ok := h.i18n.Bundle(req.Lang)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("language %q not found", req.Lang))
	}
	return xhttp.SuccessResponse(c, bundle)
}

func (h *MarketHandler) SavePreference(c echo.Context) error {
	req := &models.PreferenceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.i18n.SavePreference(c.Request().Context(), req.Lang); err != nil {
		h.logger.Error("save language preference failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not save preference").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"lang": req.Lang})
}

func (h *MarketHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status": "ok",
		"stale":  h.refresher.LastError() != nil,
		"stream": h.collector != nil && h.collector.IsConnected(),
	}
	if snap := h.refresher.Snapshot(); snap != nil {
		status["instruments"] = len(snap.Data)
		status["fetched_at"] = snap.FetchedAt
	}
	if h.archive != nil {
		if err := h.archive.Health(c.Request().Context()); err != nil {
			status["archive"] = "down"
		} else {
			status["archive"] = "up"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *MarketHandler) stateFromRequest(req *models.TableRequest) models.SelectionState {
	state := models.NewSelectionState()
	state.SearchTerm = req.Search
	state.Filter = models.GainLossFilter(req.Filter)
	state.SortColumn = req.Sort
	state.SortDirection = models.SortDirection(req.Dir)
	applySymbols(&state, req.Symbols)
	state.Range = h.parseRange(req.From, req.To)
	return state
}

func (h *MarketHandler) parseRange(from, to string) models.DateRange {
	var r models.DateRange
	if t, ok := util.ParseDay(from, h.loc); ok {
		r.Start = &t
	}
	if t, ok := util.ParseDay(to, h.loc); ok {
		r.End = &t
	}
	return r.Normalized()
}

func applySymbols(state *models.SelectionState, csv string) {
	if csv == "" {
		return
	}
	for _, s := range strings.Split(csv, ",") {
		if s = strings.TrimSpace(s); s != "" {
			state.SelectedSymbols[s] = struct{}{}
		}
	}
}
