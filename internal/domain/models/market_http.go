package models

// Requests for market HTTP endpoints. Defined in domain for consistency and reuse.

type TableRequest struct {
	Search  string `query:"search" json:"search"`
	Filter  string `query:"filter" json:"filter" default:"all" validate:"oneof=all gainers losers"`
	Sort    string `query:"sort" json:"sort" validate:"omitempty,oneof=symbol description price volume variation amount"`
	Dir     string `query:"dir" json:"dir" default:"asc" validate:"oneof=asc desc"`
	Symbols string `query:"symbols" json:"symbols"` // comma-separated selection
	From    string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type SeriesRequest struct {
	Symbols string `query:"symbols" json:"symbols"`
	Metric  string `query:"metric" json:"metric" default:"price" validate:"oneof=price volume relative_variation effective_amount"`
	From    string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type OHLCRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type SummaryRequest struct {
	Symbols string `query:"symbols" json:"symbols"`
}

type CorrelationRequest struct {
	Symbols string `query:"symbols" json:"symbols"`
}

type ArchiveRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}

type ViewStateRequest struct {
	Search  *string  `json:"search,omitempty"`
	Filter  *string  `json:"filter,omitempty" validate:"omitempty,oneof=all gainers losers"`
	Sort    *string  `json:"sort,omitempty" validate:"omitempty,oneof=symbol description price volume variation amount"`
	Toggle  *string  `json:"toggle,omitempty"` // symbol to toggle in the selection
	Symbols []string `json:"symbols,omitempty"`
	Clear   bool     `json:"clear,omitempty"`
	From    *string  `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To      *string  `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type LanguageRequest struct {
	Lang string `param:"lang" json:"lang" validate:"required,oneof=es en"`
}

type PreferenceRequest struct {
	Lang string `json:"lang" validate:"required,oneof=es en"`
}
