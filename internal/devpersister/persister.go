// Package devpersister is a reference drain target for the cache: it is
// not the production archival path spec.md excludes, but a minimal
// sqlite-backed sink used in development and tests to keep the datapoints
// that PopMetric drains out of the cache. Grounded on
// internal/repository's sqlx + Masterminds/squirrel + sqlhooks + go-sqlite3
// + golang-migrate stack (dbConnection.go, hooks.go, migration.go,
// query.go).
package devpersister

import (
	"database/sql"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/carbond/carbond/internal/schema"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/qustavo/sqlhooks/v2"
)

var registerOnce sync.Once

// Persister drains datapoints popped from the cache into a sqlite table,
// one row per point.
type Persister struct {
	db *sqlx.DB
}

// Connect opens (creating if necessary) a sqlite3 database at dsn and
// migrates it to the current schema.
func Connect(dsn string) (*Persister, error) {
	registerOnce.Do(func() {
		sql.Register("sqlite3WithHooks", sqlhooks.Wrap(&sqlite3.SQLiteDriver{}, &Hooks{}))
	})

	db, err := sqlx.Open("sqlite3WithHooks", fmt.Sprintf("%s?_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("devpersister: opening %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("devpersister: migrating %s: %w", dsn, err)
	}

	return &Persister{db: db}, nil
}

// Close releases the underlying database handle.
func (p *Persister) Close() error {
	return p.db.Close()
}

// Record is one (metric, timestamp, value) row to persist.
type Record struct {
	Metric    string
	Timestamp int64
	Value     float64
}

// Insert writes a batch of records in a single statement.
func (p *Persister) Insert(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	builder := sq.Insert("datapoint").Columns("metric", "timestamp", "value")
	for _, r := range records {
		builder = builder.Values(r.Metric, r.Timestamp, r.Value)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("devpersister: building insert: %w", err)
	}
	if _, err := p.db.Exec(query, args...); err != nil {
		return fmt.Errorf("devpersister: executing insert: %w", err)
	}
	carbondlog.ComponentDebug("devpersister", "persisted ", len(records), " records")
	return nil
}

// Source is the subset of internal/cache.Cache the drain loop pops from.
type Source interface {
	PopMetric() (metric string, points []schema.Datapoint, ok bool)
}

// DrainAll pops every metric currently held by source and persists its
// points, stopping once the source reports no more metrics.
func (p *Persister) DrainAll(source Source) (int, error) {
	total := 0
	for {
		metric, points, ok := source.PopMetric()
		if !ok {
			return total, nil
		}
		records := make([]Record, len(points))
		for i, dp := range points {
			records[i] = Record{Metric: metric, Timestamp: dp.Timestamp, Value: float64(dp.Value)}
		}
		if err := p.Insert(records); err != nil {
			return total, err
		}
		total += len(records)
	}
}
