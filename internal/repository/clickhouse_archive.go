package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MarketBoard/internal/domain/models"
	"MarketBoard/internal/domain/repository"
	"MarketBoard/pkg/util"
)

// ClickHouseArchive implements Archive over a MergeTree table. The archive
// is append-only history: every refreshed record lands here once, and the
// archive API reads ranges back out. The in-memory snapshot remains the
// system of record for the live views.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchive creates ClickHouse-backed archive storage.
func NewClickHouseArchive(db *sql.DB, table string) repository.Archive {
	return &ClickHouseArchive{db: db, table: table}
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

// StoreSnapshot appends every record of every instrument in the snapshot.
// Records with malformed timestamps are skipped. The event id derived from
// symbol+timestamp keeps repeated snapshots idempotent under
// ReplacingMergeTree.
func (a *ClickHouseArchive) StoreSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil || len(snap.Data) == 0 {
		return nil
	}

	const chunkSize = 2000
	values := make([]string, 0, chunkSize)
	args := make([]interface{}, 0, chunkSize*8)

	flush := func() error {
		if len(values) == 0 {
			return nil
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (event_id, symbol, ts, price, abs_variation, rel_variation, volume, amount) VALUES %s",
			a.table, strings.Join(values, ","))
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("archive insert: %w", err)
		}
		values = values[:0]
		args = args[:0]
		return nil
	}

	for _, m := range snap.Data {
		for _, rec := range m.History {
			t, ok := rec.Time()
			if !ok {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				fmt.Sprintf("%s-%d", m.Symbol, t.Unix()),
				m.Symbol,
				t,
				rec.Price,
				rec.AbsoluteVariation,
				rec.RelativeVariation,
				rec.Volume,
				rec.EffectiveAmount,
			)
			if len(values) >= chunkSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

// rangeQuery selects a half-open window [from, to); callers pass the day
// after an inclusive calendar bound.
func rangeQuery(table string) string {
	return fmt.Sprintf(
		"SELECT ts, price, abs_variation, rel_variation, volume, amount FROM %s WHERE symbol = ? AND ts >= ? AND ts < ? ORDER BY ts ASC LIMIT ?",
		table)
}

func (a *ClickHouseArchive) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryRecord, error) {
	rows, err := a.db.QueryContext(ctx, rangeQuery(a.table), symbol, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var rec models.HistoryRecord
		var ts time.Time
		if err := rows.Scan(&ts, &rec.Price, &rec.AbsoluteVariation, &rec.RelativeVariation, &rec.Volume, &rec.EffectiveAmount); err != nil {
			return nil, fmt.Errorf("archive scan: %w", err)
		}
		rec.Timestamp = ts.Format(time.RFC3339)
		rec.MarketTime = ts.Format(util.DayLabelFormat)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (a *ClickHouseArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseArchive) Close() error {
	return nil // Managed by pkg
}
